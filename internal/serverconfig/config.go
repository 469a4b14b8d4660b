package serverconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// ErrNotFound reports that the configuration file does not exist.
var ErrNotFound = errors.New("server config file not found")

// File is the subset of shelley.json that the server reads. Unknown
// fields are ignored, as they are by the server.
type File struct {
	// LLMGateway is the base URL of an LLM gateway; when set, the server
	// routes all model traffic through it.
	LLMGateway string `json:"llm_gateway"`

	// TerminalURL is the URL template used for "open terminal" links.
	TerminalURL string `json:"terminal_url"`

	// DefaultModel is the model preselected in the web UI.
	DefaultModel string `json:"default_model"`

	// Links are extra navigation links shown by the UI. Their shape is
	// owned by the server, so they are kept raw.
	Links []json.RawMessage `json:"links"`
}

// Loaded is the result of reading a configuration file.
type Loaded struct {
	// Path is the file that was read.
	Path string

	// File is the parsed content.
	File File

	// Strict is true when the raw bytes are plain JSON that the server's
	// parser accepts. It is false when parsing only succeeded after
	// stripping comments and trailing commas.
	Strict bool
}

// Load reads and parses the configuration file at path.
//
// It returns ErrNotFound (wrapped) if the file does not exist, and a parse
// error if the content is not valid even as JSONC.
func Load(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	loaded := &Loaded{Path: path}

	// Try the server's own strict parser first.
	if err := json.Unmarshal(data, &loaded.File); err == nil {
		loaded.Strict = true
		return loaded, nil
	}

	// Fall back to JSONC so the content can still be inspected.
	loaded.File = File{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &loaded.File); err != nil {
		return nil, fmt.Errorf("failed to parse server config at %s: %w", path, err)
	}
	return loaded, nil
}

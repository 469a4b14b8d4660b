package serverconfig

import (
	"errors"
	"fmt"
	"net/url"
)

// Issue describes one problem found in the server configuration.
type Issue struct {
	// Field is the JSON key concerned, or empty for file-level problems.
	Field string

	// Message describes what is wrong.
	Message string
}

// String renders the issue for display.
func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// Check loads the file at path and returns every problem that would make
// the server ignore or misread it. An empty result means the file is fine.
//
// Checks performed:
//   - the file exists and is readable
//   - it parses at all (JSONC tolerated)
//   - it parses with the server's strict JSON parser
//   - llm_gateway and terminal_url, when set, are absolute http(s) URLs
func Check(path string) []Issue {
	loaded, err := Load(path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Issue{{Message: fmt.Sprintf("%s does not exist; the server will start with built-in defaults", path)}}
		}
		return []Issue{{Message: fmt.Sprintf("%v; the server will ignore this file", err)}}
	}
	return Validate(loaded)
}

// Validate checks an already loaded configuration.
func Validate(loaded *Loaded) []Issue {
	var issues []Issue

	if !loaded.Strict {
		issues = append(issues, Issue{
			Message: fmt.Sprintf("%s contains comments or trailing commas; the server's JSON parser will reject it and ignore the whole file", loaded.Path),
		})
	}

	if msg := checkURL(loaded.File.LLMGateway); msg != "" {
		issues = append(issues, Issue{Field: "llm_gateway", Message: msg})
	}
	if msg := checkURL(loaded.File.TerminalURL); msg != "" {
		issues = append(issues, Issue{Field: "terminal_url", Message: msg})
	}

	return issues
}

// checkURL returns a problem description for a non-empty value that is not
// an absolute http or https URL, or "" when the value is acceptable.
func checkURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Sprintf("URL %q has no host", raw)
	}
	return ""
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shinji-kodama/shelley-demo/internal/model"
	"github.com/shinji-kodama/shelley-demo/internal/port"
)

// Fixed values used by Default.
const (
	// DefaultServerConfigPath is the Shelley configuration file handed to
	// the server via --config.
	DefaultServerConfigPath = "/exe.dev/shelley.json"

	// DefaultHostname is the externally reachable host, used only to print
	// the demo URL.
	DefaultHostname = "phil-dev.exe.xyz"

	// dbRelPath is the database location relative to the user's home.
	dbRelPath = ".config/shelley/shelley.db"

	// binaryRelPath is where `make build` leaves the server binary.
	binaryRelPath = "bin/shelley"

	DefaultHealthTimeout        = 5 * time.Second
	DefaultHealthRequestTimeout = 1 * time.Second
	DefaultHealthInterval       = 150 * time.Millisecond

	// The settle values bound how long start waits for a killed session to
	// disappear before creating its replacement.
	DefaultSettleTimeout  = 2 * time.Second
	DefaultSettleInterval = 50 * time.Millisecond
)

// Config is the complete set of inputs for one CLI invocation.
type Config struct {
	// Dir is the absolute, symlink-resolved project directory. It is
	// hashed to obtain the port and is the working directory of the build.
	Dir string `json:"dir" yaml:"dir"`

	// ServerConfigPath is passed to the server as --config.
	ServerConfigPath string `json:"serverConfigPath" yaml:"serverConfigPath"`

	// DBPath is passed to the server as --db.
	DBPath string `json:"dbPath" yaml:"dbPath"`

	// Hostname is shown in the printed URL.
	Hostname string `json:"hostname" yaml:"hostname"`

	// Binary is the server executable produced by the build.
	Binary string `json:"binary" yaml:"binary"`

	// BuildCommand is run in Dir before every start.
	BuildCommand []string `json:"buildCommand" yaml:"buildCommand"`

	// TmuxCommand is the terminal multiplexer executable.
	TmuxCommand string `json:"tmuxCommand" yaml:"tmuxCommand"`

	HealthTimeout        time.Duration `json:"healthTimeout" yaml:"healthTimeout"`
	HealthRequestTimeout time.Duration `json:"healthRequestTimeout" yaml:"healthRequestTimeout"`
	HealthInterval       time.Duration `json:"healthInterval" yaml:"healthInterval"`
	SettleTimeout        time.Duration `json:"settleTimeout" yaml:"settleTimeout"`
	SettleInterval       time.Duration `json:"settleInterval" yaml:"settleInterval"`
}

// Default builds the Config for the project directory dir.
//
// dir is made absolute and has symlinks resolved so that the derived port
// does not depend on how the directory was reached. The database path is
// placed under the current user's home directory.
func Default(dir string) (*Config, error) {
	absDir, err := ResolveDir(dir)
	if err != nil {
		return nil, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine home directory: %w", err)
	}

	return &Config{
		Dir:                  absDir,
		ServerConfigPath:     DefaultServerConfigPath,
		DBPath:               filepath.Join(home, dbRelPath),
		Hostname:             DefaultHostname,
		Binary:               filepath.Join(absDir, binaryRelPath),
		BuildCommand:         []string{"make", "build"},
		TmuxCommand:          "tmux",
		HealthTimeout:        DefaultHealthTimeout,
		HealthRequestTimeout: DefaultHealthRequestTimeout,
		HealthInterval:       DefaultHealthInterval,
		SettleTimeout:        DefaultSettleTimeout,
		SettleInterval:       DefaultSettleInterval,
	}, nil
}

// ProjectMarker is the file that identifies the project root when no
// directory is given: the build runs `make build` there.
const ProjectMarker = "Makefile"

// ResolveDir returns the absolute, symlink-free form of dir.
//
// An empty dir means the project containing the working directory: the
// nearest ancestor (or the directory itself) holding a Makefile. Running
// the CLI from ~/shelley/ui therefore resolves to ~/shelley and reports the
// same port as running it from ~/shelley. When no ancestor has a Makefile
// the working directory itself is used.
func ResolveDir(dir string) (string, error) {
	walkUp := dir == ""
	if walkUp {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", dir, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", abs, err)
	}

	if walkUp {
		if root, ok := findUp(resolved, ProjectMarker); ok {
			return root, nil
		}
	}
	return resolved, nil
}

// findUp returns the first directory, starting at start and moving towards
// the filesystem root, that contains a regular file called name.
func findUp(start, name string) (string, bool) {
	for dir := start; ; {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && info.Mode().IsRegular() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Port returns the demo server port derived from Dir.
func (c *Config) Port() int {
	return port.Resolve(c.Dir)
}

// SessionName returns the tmux session name for this directory's port.
func (c *Config) SessionName() string {
	return model.SessionName(c.Port())
}

// URL returns the externally reachable address printed for the user.
func (c *Config) URL() string {
	return fmt.Sprintf("https://%s:%d/", c.Hostname, c.Port())
}

// ServerCommand returns the shell command line run inside the tmux session.
// tmux hands a single command argument to the user's shell, so the result
// is one string.
func (c *Config) ServerCommand() string {
	return fmt.Sprintf("%s --config %s --db %s serve --port %d",
		c.Binary, c.ServerConfigPath, c.DBPath, c.Port())
}

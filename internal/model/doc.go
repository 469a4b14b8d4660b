// Package model defines the domain types and value objects for the
// shelley-demo CLI.
//
// This package contains pure data structures with no external dependencies.
// Nothing here is persisted: the port and the tmux session name are
// recomputed from the project directory on every invocation, and session
// liveness is always asked of tmux itself.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model

// Package model defines the domain types for the shelley-demo CLI.
//
// Key design decision: there is no state file. The port is a pure function
// of the project directory, the session name is a pure function of the
// port, and the process itself belongs to tmux. These types are transient
// values rebuilt on every invocation.
package model

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// SessionPrefix is the fixed prefix of every demo tmux session name.
const SessionPrefix = "shelley-demo"

// SessionName returns the tmux session name for a demo server port.
//
// The mapping is injective over the port range: two different ports never
// share a session name, so the name alone identifies the instance.
func SessionName(port int) string {
	return fmt.Sprintf("%s-%d", SessionPrefix, port)
}

// Action is one of the subcommands understood by the CLI.
// It replaces a name-to-closure lookup table with a closed set of values,
// each handled by its own function.
type Action string

const (
	// ActionStart builds the server and (re)starts it in tmux.
	// It is the default when no action is given.
	ActionStart Action = "start"

	// ActionStop kills the tmux session if present.
	ActionStop Action = "stop"

	// ActionStatus reports whether the session is running.
	ActionStatus Action = "status"

	// ActionPort prints the resolved port.
	ActionPort Action = "port"

	// ActionLogs attaches the terminal to the running session.
	ActionLogs Action = "logs"
)

// Actions lists every valid Action in usage order.
var Actions = []Action{ActionStart, ActionStop, ActionStatus, ActionPort, ActionLogs}

// String returns the string representation of Action.
func (a Action) String() string {
	return string(a)
}

// IsValid checks whether the Action value is one of the predefined actions.
func (a Action) IsValid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAction converts a command-line token to an Action.
// An empty token selects ActionStart. Matching is case sensitive, like the
// subcommand names themselves.
func ParseAction(s string) (Action, error) {
	if s == "" {
		return ActionStart, nil
	}
	action := Action(s)
	if !action.IsValid() {
		return "", fmt.Errorf("unknown action: %q (valid: %s)", s, ActionList())
	}
	return action, nil
}

// ActionList renders the valid actions as "start|stop|status|port|logs".
func ActionList() string {
	names := make([]string, 0, len(Actions))
	for _, a := range Actions {
		names = append(names, a.String())
	}
	return strings.Join(names, "|")
}

// SessionState represents whether the demo tmux session exists.
type SessionState string

const (
	// StateRunning indicates tmux reports a session with the demo name.
	StateRunning SessionState = "running"

	// StateStopped indicates no such session exists.
	StateStopped SessionState = "stopped"
)

// String returns the string representation of SessionState.
func (s SessionState) String() string {
	return string(s)
}

// StateFor converts a session existence check into a SessionState.
func StateFor(exists bool) SessionState {
	if exists {
		return StateRunning
	}
	return StateStopped
}

// ExitCode defines the CLI exit codes.
// These codes allow scripts to determine the outcome of a command.
// Failures of the build tool or tmux propagate that process's own status
// instead of one of these constants (see ExitCodeOf).
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully, including
	// a start whose health probe timed out.
	ExitSuccess ExitCode = 0

	// ExitGeneralError covers unknown actions, logs against a stopped
	// session, and failures without a more specific status.
	ExitGeneralError ExitCode = 1
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// ExitCodeOf returns the exit status to propagate for err.
//
// If err wraps an *exec.ExitError with a positive status, that status is
// returned so the caller exits the way the failed child process did.
// Anything else (launch failures, signals, plain errors) maps to
// ExitGeneralError. A nil error maps to ExitSuccess.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return ExitCode(exitErr.ExitCode())
	}
	return ExitGeneralError
}

package tmux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sys/unix"

	"github.com/shinji-kodama/shelley-demo/internal/model"
)

// errSessionPresent is returned by the WaitGone poll while the session
// still exists.
var errSessionPresent = errors.New("session still present")

// waitDelay bounds how long run waits for output after its context ends.
const waitDelay = 100 * time.Millisecond

// Manager runs tmux commands for a single tmux server.
//
// The zero value is not usable; create one with NewManager.
type Manager struct {
	// binary is the tmux executable name or path.
	binary string

	// socket, when non-empty, selects a private tmux server with -L.
	// Tests use this to stay away from the user's own sessions.
	socket string

	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithSocket makes every command address the tmux server with the given
// socket name (tmux -L).
func WithSocket(name string) Option {
	return func(m *Manager) {
		m.socket = name
	}
}

// NewManager creates a Manager that invokes binary (usually "tmux").
func NewManager(binary string, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{binary: binary, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Exists reports whether tmux has a session named exactly name.
//
// tmux exits 1 from has-session when the session (or the whole tmux server)
// is missing. Any failure, including tmux not being installed, is read as
// "does not exist".
func (m *Manager) Exists(ctx context.Context, name string) bool {
	_, err := m.run(ctx, "has-session", "-t", exactTarget(name))
	if err != nil {
		m.logger.Debug("tmux session not found", "session", name, "error", err)
		return false
	}
	return true
}

// Kill terminates the session. It is best effort: killing a session that
// does not exist, or failing to reach tmux at all, is not an error.
func (m *Manager) Kill(ctx context.Context, name string) {
	if _, err := m.run(ctx, "kill-session", "-t", exactTarget(name)); err != nil {
		m.logger.Debug("tmux kill-session failed", "session", name, "error", err)
	}
}

// NewSession creates a detached session named name running command.
//
// command is a single shell command line; tmux runs it through the user's
// default shell. A failure to create the session is fatal for the caller
// and is returned as a CLIError carrying tmux's exit status.
func (m *Manager) NewSession(ctx context.Context, name, command string) error {
	if _, err := m.run(ctx, "new-session", "-d", "-s", name, command); err != nil {
		return model.WrapCLIError(model.ExitCodeOf(err),
			fmt.Sprintf("failed to create tmux session %q", name), err)
	}
	return nil
}

// WaitGone polls until the session no longer exists or timeout elapses.
// It returns true once tmux stops reporting the session.
//
// kill-session returns before the session's processes have necessarily
// exited; polling for absence replaces a fixed sleep with a bounded,
// observable wait. Each has-session call runs under the same deadline, so a
// tmux that hangs cannot stretch the wait past timeout.
func (m *Manager) WaitGone(ctx context.Context, name string, timeout, interval time.Duration) bool {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b := backoff.WithContext(backoff.NewConstantBackOff(interval), waitCtx)
	err := backoff.Retry(func() error {
		if m.Exists(waitCtx, name) {
			return errSessionPresent
		}
		return nil
	}, b)
	if err != nil {
		m.logger.Debug("tmux session still present after wait", "session", name, "timeout", timeout)
		return false
	}
	return true
}

// Attach replaces the current process with `tmux attach -t name`.
//
// On success it never returns: the terminal belongs to tmux from then on,
// and detaching ends the process with tmux's exit status. It returns an
// error only if tmux cannot be found or exec itself fails.
func (m *Manager) Attach(name string) error {
	path, err := exec.LookPath(m.binary)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("cannot attach to tmux session %q", name), err)
	}

	argv := append([]string{m.binary}, m.args("attach", "-t", exactTarget(name))...)
	m.logger.Debug("exec tmux", "path", path, "args", argv[1:])

	if err := unix.Exec(path, argv, os.Environ()); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("cannot attach to tmux session %q", name), err)
	}
	return nil
}

// AttachHint returns the command a user would type to watch the session.
func AttachHint(name string) string {
	return fmt.Sprintf("tmux attach -t %s", name)
}

// args prefixes tmux arguments with the socket selection, if any.
func (m *Manager) args(args ...string) []string {
	if m.socket == "" {
		return args
	}
	return append([]string{"-L", m.socket}, args...)
}

// run executes a tmux subcommand and returns its stdout.
//
// Both stdout and stderr are captured; on failure stderr is folded into the
// returned error so that messages like "duplicate session" reach the user.
func (m *Manager) run(ctx context.Context, args ...string) (string, error) {
	fullArgs := m.args(args...)
	cmd := exec.CommandContext(ctx, m.binary, fullArgs...)
	// Grandchildren can hold the output pipes open after the context kills
	// tmux; stop waiting for them shortly after.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	m.logger.Debug("running tmux", "args", fullArgs)
	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", fmt.Errorf("tmux %s: %s: %w", args[0], stderrStr, err)
		}
		return "", fmt.Errorf("tmux %s: %w", args[0], err)
	}
	return stdout.String(), nil
}

// exactTarget turns a session name into a target that tmux will only match
// exactly.
func exactTarget(name string) string {
	return "=" + name
}

package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/shinji-kodama/shelley-demo/internal/model"
)

// Runner runs a fixed build command, e.g. `make build`.
type Runner struct {
	// command is the argv of the build tool; command[0] is looked up in PATH.
	command []string

	// stdout and stderr receive the build tool's output unmodified.
	stdout io.Writer
	stderr io.Writer

	logger *slog.Logger
}

// NewRunner creates a Runner for command, streaming its output to stdout
// and stderr.
func NewRunner(command []string, stdout, stderr io.Writer, logger *slog.Logger) *Runner {
	return &Runner{
		command: command,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger,
	}
}

// Build runs the build command in dir and waits for it to finish.
//
// A non-zero exit is returned as a CLIError whose Code is the build tool's
// own exit status, so the CLI exits the same way the build did. A build
// tool that cannot be started at all maps to ExitGeneralError.
func (r *Runner) Build(ctx context.Context, dir string) error {
	if len(r.command) == 0 {
		return model.NewCLIError(model.ExitGeneralError, "no build command configured")
	}

	display := strings.Join(r.command, " ")
	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...)
	cmd.Dir = dir
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	r.logger.Debug("running build", "command", display, "dir", dir)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return model.WrapCLIError(model.ExitCodeOf(err),
				fmt.Sprintf("%s failed in %s", display, dir), err)
		}
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("could not run %s", display), err)
	}
	return nil
}

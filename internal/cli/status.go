// Package cli — status.go implements the "shelley-demo status" command.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/shelley-demo/internal/demo"
	"github.com/shinji-kodama/shelley-demo/internal/model"
)

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the demo server is running, and its URL",
		Long: `Report whether this directory's demo session is running.

When running, the public URL and the command for attaching to the session
are printed, along with whether the server answered a single HTTP probe.
The command always exits 0.

Examples:
  shelley-demo status
  shelley-demo status --yaml`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}

	return cmd
}

// runStatus is the main logic function for the status command.
// Like stop it always exits 0; a stopped server is a normal answer.
func runStatus(cmd *cobra.Command) error {
	svc, err := serviceFactory(cmd)
	if err != nil {
		return err
	}

	return printStatusResult(cmd.OutOrStdout(), svc.Status(cmd.Context()))
}

// printStatusResult outputs the status command result in text, JSON or YAML.
//
// For a running session the text shows the public URL and the attach
// command, plus a warning when the single probe got no answer. For a
// stopped one it shows the port and, if some other process holds it, a
// warning, since a later start would fail to bind.
func printStatusResult(w io.Writer, result *demo.StatusResult) error {
	if done, err := printStructured(w, result); done {
		return err
	}

	p := newTextPrinter(w)
	if result.State != model.StateRunning {
		p.line("Not running (port %d)", result.Port)
		if result.PortInUse {
			p.warn("port %d is in use by another process", result.Port)
		}
		return nil
	}

	p.ok("Running (tmux session '%s') on port %d", result.Session, result.Port)
	p.line("URL: %s", result.URL)
	p.line("Logs: %s", result.AttachHint)
	if !result.Healthy {
		p.warn("port %d is not responding", result.Port)
	}
	return nil
}

// Package cli — stop.go implements the "shelley-demo stop" command.
//
// Stopping kills the directory's tmux session, which takes the server
// process down with it. Stopping a server that is not running is not an
// error.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/shelley-demo/internal/demo"
)

// NewStopCommand creates the "stop" cobra command.
func NewStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Kill the demo server's tmux session",
		Long: `Kill the tmux session running this directory's demo server.

Reports "Not running" and exits 0 when there is no such session.

Examples:
  shelley-demo stop
  shelley-demo stop --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd)
		},
	}

	return cmd
}

// runStop is the main logic function for the stop command.
// It never fails once the service is built: stopping a server that is not
// running reports so and exits 0.
func runStop(cmd *cobra.Command) error {
	svc, err := serviceFactory(cmd)
	if err != nil {
		return err
	}

	return printStopResult(cmd.OutOrStdout(), svc.Stop(cmd.Context()))
}

// printStopResult outputs the stop command result in text, JSON or YAML.
//
// Both outcomes are successes; the text only tells whether there was a
// session to kill.
func printStopResult(w io.Writer, result *demo.StopResult) error {
	if done, err := printStructured(w, result); done {
		return err
	}

	p := newTextPrinter(w)
	if result.Stopped {
		p.line("Stopped (killed tmux session '%s').", result.Session)
	} else {
		p.line("Not running (no tmux session '%s').", result.Session)
	}
	return nil
}

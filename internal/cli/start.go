// Package cli — start.go implements the "shelley-demo start" command,
// which is also what the bare root command runs.
//
// The command builds the server, replaces any running demo session, starts
// a new detached tmux session on the directory's port and waits briefly for
// the server to answer. A server that has not answered yet is a warning:
// the session keeps running and the command still exits 0.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/shelley-demo/internal/demo"
)

// NewStartCommand creates the "start" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Build and (re)start the demo server (default)",
		Long: `Build Shelley with 'make build' and (re)start it in a detached tmux session.

If a session for this directory is already running it is killed first.
After starting, the server is polled for up to 5 seconds; if it has not
answered by then a warning is printed and the session is left running.

Examples:
  shelley-demo
  shelley-demo start --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd)
		},
	}

	return cmd
}

// runStart is the main logic function for the start command. It is shared
// by the "start" subcommand and the bare root command.
//
// A failed build or a failed tmux new-session is returned as the service's
// CLIError, so the process exits with that tool's status.
func runStart(cmd *cobra.Command) error {
	svc, err := serviceFactory(cmd)
	if err != nil {
		return err
	}

	result, err := svc.Start(cmd.Context())
	if err != nil {
		return err
	}

	return printStartResult(cmd.OutOrStdout(), result)
}

// printStartResult outputs the start command result in text, JSON or YAML.
//
// Text mode prints warnings first, then the "running" line only when the
// server answered the health probe, and always the URL: the session is
// left running either way and the user may simply need to wait.
func printStartResult(w io.Writer, result *demo.StartResult) error {
	if done, err := printStructured(w, result); done {
		return err
	}

	p := newTextPrinter(w)
	for _, warning := range result.Warnings {
		p.warn("%s", warning)
	}
	if result.Healthy {
		p.ok("Demo server running on port %d", result.Port)
	}
	p.line("URL: %s", result.URL)
	return nil
}

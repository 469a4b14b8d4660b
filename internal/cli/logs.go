// Package cli — logs.go implements the "shelley-demo logs" command.
//
// logs does not read a log file: the server writes to its tmux pane, so
// "viewing the logs" means attaching to the session. On success the CLI
// process is replaced by tmux and never returns; detaching (ctrl-b d)
// ends it.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/shelley-demo/internal/demo"
	"github.com/shinji-kodama/shelley-demo/internal/model"
)

// NewLogsCommand creates the "logs" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewLogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Attach to the demo server's tmux session (ctrl-b d to detach)",
		Long: `Attach the terminal to this directory's demo session.

The shelley-demo process is replaced by 'tmux attach'. If the session is
not running, "Not running (...)" is printed and the command exits 1.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(cmd)
		},
	}

	return cmd
}

// runLogs is the main logic function for the logs command.
//
// A stopped session is an expected outcome rather than a failure of the
// tool, so in text mode its message is printed on stdout as a plain
// result line, and the returned error only carries the exit code. With
// --json or --yaml the error goes through handleError like any other, so
// stdout never holds a partial document.
func runLogs(cmd *cobra.Command) error {
	svc, err := serviceFactory(cmd)
	if err != nil {
		return err
	}

	err = svc.Logs(cmd.Context())

	var cliErr *model.CLIError
	if errors.Is(err, demo.ErrNotRunning) && errors.As(err, &cliErr) && !structuredOutput() {
		fmt.Fprintln(cmd.OutOrStdout(), cliErr.Message)
		return model.WrapCLIError(cliErr.Code, cliErr.Message, errReported)
	}
	return err
}

// Package cli — port.go implements the "shelley-demo port" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPortCommand creates the "port" cobra command. It prints only the
// resolved port, which makes it convenient in scripts:
//
//	curl "http://localhost:$(shelley-demo port)/"
//
// The port is computed from the project directory alone; tmux is not
// consulted, so the command answers the same whether or not the server is
// running. With --json it prints {"port": N}.
func NewPortCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "port",
		Short: "Print the port derived from the project directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceFactory(cmd)
			if err != nil {
				return err
			}

			port := svc.Port()
			if done, err := printStructured(cmd.OutOrStdout(), map[string]int{"port": port}); done {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), port)
			return err
		},
	}
}

// Package cli implements the cobra-based CLI commands for shelley-demo.
//
// Each action (start, stop, status, port, logs) is defined in its own file
// within this package. This file defines the root command, which runs
// start when invoked without an action, and handles global flags, service
// wiring and exit codes.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/shelley-demo/internal/build"
	"github.com/shinji-kodama/shelley-demo/internal/config"
	"github.com/shinji-kodama/shelley-demo/internal/demo"
	"github.com/shinji-kodama/shelley-demo/internal/health"
	"github.com/shinji-kodama/shelley-demo/internal/logging"
	"github.com/shinji-kodama/shelley-demo/internal/model"
	"github.com/shinji-kodama/shelley-demo/internal/port"
	"github.com/shinji-kodama/shelley-demo/internal/serverconfig"
	"github.com/shinji-kodama/shelley-demo/internal/tmux"
)

// Persistent flags of the root command. Every action reads them, so they
// live at package level rather than on a per-command options struct.
var (
	// jsonOutput switches command results to indented JSON.
	jsonOutput bool

	// yamlOutput switches command results to YAML.
	yamlOutput bool

	// verbose lowers the log level to debug, showing every tmux and build
	// invocation on stderr.
	verbose bool

	// projectDir is the directory whose path determines the port and in
	// which the build runs. Empty means the nearest directory, from the
	// working directory upwards, that holds a Makefile.
	projectDir string
)

// Build information shown by --version. main copies its ldflags-injected
// values here before calling NewRootCommand.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// errUnknownAction marks the error returned for an unrecognized action so
// Execute can print the usage line after it.
var errUnknownAction = errors.New("unknown action")

// errReported marks an error whose message the command has already printed
// as its result. handleError only turns it into an exit code.
var errReported = errors.New("already reported")

// serviceFactory builds the demo service for a command invocation.
// Tests replace it to run commands against fakes.
var serviceFactory = newService

// NewRootCommand creates and configures the root cobra command.
//
// Running the root command without an action is the same as running
// "start". Any positional argument that is not one of the subcommands is
// rejected with the usage line and exit code 1.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shelley-demo",
		Short: "Build and (re)start a Shelley demo server in tmux",
		Long: `shelley-demo builds Shelley and runs it in a detached tmux session.

The port is deterministic: it is derived from a hash of the project
directory (3000-3999), and the tmux session is named 'shelley-demo-<port>'.
Running the command again rebuilds and replaces the running server.

Usage:
  shelley-demo              # build + (re)start
  shelley-demo stop         # kill the tmux session
  shelley-demo status       # show whether it's running + URL
  shelley-demo port         # just print the port
  shelley-demo logs         # attach to the tmux session (ctrl-b d to detach)`,

		// Known actions have already been routed to their subcommands by
		// cobra; whatever reaches the root is checked by model.ParseAction.
		Args: func(cmd *cobra.Command, args []string) error {
			return checkRootArgs(args)
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd)
		},

		// Errors and the usage line are printed by handleError, so cobra
		// must stay quiet.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	// The five actions are the whole interface; a generated completion
	// subcommand would read as a sixth.
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "Output in YAML format")
	rootCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&projectDir, "dir", "", "Project directory (default: nearest enclosing directory with a Makefile)")

	rootCmd.AddCommand(NewStartCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewPortCommand())
	rootCmd.AddCommand(NewLogsCommand())

	return rootCmd
}

// checkRootArgs accepts no arguments or a single empty one, both of which
// mean start. Anything else is an unknown action.
//
// A valid action name never gets here because cobra dispatches it to its
// subcommand, so the only way ParseAction succeeds is the empty token.
func checkRootArgs(args []string) error {
	for i, arg := range args {
		action, err := model.ParseAction(arg)
		if err == nil && (i > 0 || action != model.ActionStart) {
			err = fmt.Errorf("%q must be given as the first argument", arg)
		}
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("%q", arg), fmt.Errorf("%w: %w", errUnknownAction, err))
		}
	}
	return nil
}

// Execute runs rootCmd with a context cancelled on SIGINT/SIGTERM and exits
// the process.
//
// CLIError types carry their own exit codes (including statuses
// propagated from a failed build); other errors exit with code 1.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	os.Exit(int(handleError(err, os.Stderr)))
}

// handleError prints err (if any) to w and returns the process exit code.
//
// Mapping:
//   - nil: ExitSuccess, nothing printed
//   - CLIError wrapping errReported: its code, nothing printed (the command
//     already printed its result line)
//   - CLIError wrapping errUnknownAction: its code, the error and the usage
//     line
//   - any other CLIError: its code, which may be a build or tmux exit
//     status
//   - anything else (cobra flag errors and the like): ExitGeneralError
//
// It is separate from Execute so tests can check output and exit codes
// without exiting the test binary.
func handleError(err error, w io.Writer) model.ExitCode {
	if err == nil {
		return model.ExitSuccess
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		if errors.Is(cliErr, errReported) {
			return cliErr.Code
		}
		if errors.Is(cliErr, errUnknownAction) {
			printError(w, "unknown action "+cliErr.Message, nil)
			fmt.Fprintln(w, usageLine())
			return cliErr.Code
		}
		printError(w, cliErr.Message, cliErr.Err)
		return cliErr.Code
	}

	// Anything else, such as a flag parsing error, exits 1.
	printError(w, err.Error(), nil)
	return model.ExitGeneralError
}

// usageLine is the one-line synopsis printed for an unknown action.
func usageLine() string {
	return fmt.Sprintf("Usage: shelley-demo [%s]", model.ActionList())
}

// printError writes "Error: ..." or, with --json, an {"error": {...}}
// object. Errors go to stderr in both modes.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// newService wires the concrete tmux, build, health and port components
// into a demo.Service for the directory selected by --dir.
//
// It runs once per invocation, after cobra has parsed the flags, because
// the logger level (--verbose), the project directory (--dir) and the
// build output destination (--json/--yaml) all depend on them. The
// returned error is a CLIError when the project directory cannot be
// resolved.
func newService(cmd *cobra.Command) (*demo.Service, error) {
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), logging.LevelFor(verbose))

	cfg, err := config.Default(projectDir)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid project directory", err)
	}
	logger.Debug("resolved project", "dir", cfg.Dir, "port", cfg.Port(), "session", cfg.SessionName())

	// Build output belongs to the user, but stdout is reserved for results
	// in JSON/YAML mode.
	buildOut := cmd.OutOrStdout()
	if structuredOutput() {
		buildOut = cmd.ErrOrStderr()
	}

	return demo.NewService(cfg,
		tmux.NewManager(cfg.TmuxCommand, logger),
		build.NewRunner(cfg.BuildCommand, buildOut, cmd.ErrOrStderr(), logger),
		health.NewProber(logger,
			health.WithRequestTimeout(cfg.HealthRequestTimeout),
			health.WithInterval(cfg.HealthInterval),
		),
		port.NewScanner(),
		serverconfig.Check,
		logger,
	), nil
}

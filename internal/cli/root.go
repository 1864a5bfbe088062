/*
PURPOSE:
  Defines the root Cobra command for collect-snapshot.
  The launcher has a single action, so the root command is the command.

REQUIREMENTS:
  User-specified:
  - collect-snapshot <identifier> [--snapshot-dir DIR]
  - Exit with the collector's exit code.

  Implementation-discovered:
  - Needs to expose an Execute() that returns the exit code for main.go.
  - Commands are built by newRootCmd so tests get fresh flag state and
    their own stdout/stderr.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/collect-snapshot/main.go
  - Calls: runLaunch (run.go)

ERROR HANDLING:
  - RunE returns *ExitError; Execute turns it into an exit code.
  - Cobra's own errors (bad flags) are printed here and exit with 2.

IMPLEMENTATION RULES:
  - Errors are reported once: the engine prints its failures, cobra is silenced.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new flags, add them to options and newRootCmd().

RELATED FILES:
  - cmd/collect-snapshot/main.go
  - internal/cli/run.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/daryltucker/collect-snapshot/internal/engine"
	"github.com/spf13/cobra"
)

// Version is set via -ldflags.
var Version = "dev"

// options holds the parsed flags of one invocation.
type options struct {
	cfgFile     string
	snapshotDir string
	baseDir     string
	verbose     bool
	dryRun      bool
	jsonOut     bool
}

// streams lets tests capture what the launcher prints.
type streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func newRootCmd(s streams) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "collect-snapshot <identifier>",
		Short: "Run the snapshot collector for one player",
		Long: `Runs the snapshot collector for the given identifier (usually a SteamID).

The packaged collector next to this launcher is used when present. Otherwise the
fallback script is run through the interpreter, inside the project's virtual
environment when one exists. The collector's exit code becomes the launcher's.`,
		Example: `  # Collect into the default snapshot directory
  collect-snapshot 76561198000000000

  # Collect into a specific directory
  collect-snapshot 76561198000000000 --snapshot-dir ./snapshots

  # Show what would be run
  collect-snapshot 76561198000000000 --dry-run`,
		Args:          cobra.MaximumNArgs(1),
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd.Context(), opts, args, s)
		},
	}

	cmd.SetIn(s.In)
	cmd.SetOut(s.Out)
	cmd.SetErr(s.Err)

	cmd.Flags().StringVarP(&opts.snapshotDir, "snapshot-dir", "o", "", "Directory the collector writes the snapshot to")
	cmd.Flags().StringVar(&opts.cfgFile, "config", "", "config file (default is collect-snapshot.yaml next to the launcher)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "resolve and print the collector command without running it")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print a JSON outcome record on stdout after the run")
	cmd.Flags().StringVar(&opts.baseDir, "base-dir", "", "directory to look for the collector in (default is the launcher's directory)")
	_ = cmd.Flags().MarkHidden("base-dir")

	return cmd
}

// Execute runs the launcher and returns the process exit code.
func Execute() int {
	return execute(context.Background(), os.Args[1:], streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
}

func execute(ctx context.Context, args []string, s streams) int {
	cmd := newRootCmd(s)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return engine.ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.Reported && exitErr.Err != nil {
			fmt.Fprintf(s.Err, "Error: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}

	fmt.Fprintf(s.Err, "Error: %v\n", err)
	fmt.Fprintf(s.Err, "Run '%s --help' for usage.\n", cmd.CommandPath())
	return engine.ExitMissingArgument
}

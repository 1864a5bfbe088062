/*
PURPOSE:
  High-level runner that dispatches one snapshot collection.
  Resolve target -> build argv -> spawn -> wait -> report.

REQUIREMENTS:
  User-specified:
  - Forward the identifier and optional --snapshot-dir to the collector.
  - Inherit stdin/stdout/stderr, block until the collector exits.
  - Propagate the collector's exit code; no retries.

  Implementation-discovered:
  - Ctrl-C reaches the collector through the terminal's process group; the
    launcher must survive it to report the collector's own exit code.
  - Dry-run needs the same resolution path without the spawn.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/engine/resolve.go, internal/output

ERROR HANDLING:
  - Every failure is terminal and returned as a typed error; ExitCodeFor maps it.
  - Failure lines are printed here so the CLI layer stays silent.

IMPLEMENTATION RULES:
  - Never mutate the launcher's own environment; pass cmd.Env explicitly.

USAGE:
  l := engine.New(cfg, baseDir)
  outcome, err := l.Run(ctx, req)

SELF-HEALING INSTRUCTIONS:
  - If exit codes look wrong, check ChildExitError mapping in errors.go.

RELATED FILES:
  - internal/engine/errors.go

MAINTENANCE:
  - Update if the collector ever needs a timeout.
*/

package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/daryltucker/collect-snapshot/internal/config"
	"github.com/daryltucker/collect-snapshot/internal/model"
	"github.com/daryltucker/collect-snapshot/internal/output"
	"github.com/spf13/afero"
)

// Launcher runs a single dispatch.
type Launcher struct {
	Resolver *Resolver
	Logger   *slog.Logger
	Status   *output.Status

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// DryRun resolves and prints the command without spawning it.
	DryRun bool
}

// New creates a Launcher on the real filesystem with the process's own
// environment and standard streams.
func New(cfg *config.Config, baseDir string) *Launcher {
	return &Launcher{
		Resolver: NewResolver(afero.NewOsFs(), cfg, baseDir, os.Environ()),
		Logger:   output.Logger,
		Status:   &output.Status{Out: os.Stdout, Err: os.Stderr},
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Run executes the full dispatch. The returned Outcome is always filled in,
// including on error.
func (l *Launcher) Run(ctx context.Context, req model.InvocationRequest) (model.Outcome, error) {
	outcome := model.Outcome{Request: req, Timestamp: time.Now(), DryRun: l.DryRun}

	err := l.run(ctx, req, &outcome)
	outcome.Duration = time.Since(outcome.Timestamp)
	outcome.ExitCode = ExitCodeFor(err)
	if err != nil {
		outcome.Error = err.Error()
	}
	return outcome, err
}

func (l *Launcher) run(ctx context.Context, req model.InvocationRequest, outcome *model.Outcome) error {
	if strings.TrimSpace(req.Identifier) == "" {
		l.Status.Failure("%v", ErrMissingArgument)
		return ErrMissingArgument
	}

	target, err := l.Resolver.Resolve(ctx)
	if err != nil {
		l.Status.Failure("%v", err)
		return err
	}
	outcome.Target = &target

	program, args := target.Command(req)
	l.Logger.Info("Dispatching snapshot collector",
		"kind", target.Kind,
		"program", program,
		"identifier", req.Identifier,
	)

	if l.DryRun {
		l.Status.Plan(program, args)
		return nil
	}

	cmd := exec.Command(program, args...)
	cmd.Env = ApplyOverlay(l.Resolver.Environ, target.Overlay)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	if err := l.wait(cmd); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			childErr := &ChildExitError{Code: exitErr.ExitCode(), State: exitErr.ProcessState.String()}
			if childErr.Code < 0 {
				childErr.Signaled = true
			}
			l.Status.Failure("Snapshot collection failed for %s (%s)", req.Identifier, describeExit(childErr))
			return childErr
		}
		spawnErr := &SpawnError{Program: program, Err: err}
		l.Status.Failure("%v", spawnErr)
		return spawnErr
	}

	l.Status.Success("Snapshot collection finished for %s", req.Identifier)
	return nil
}

// wait runs cmd while keeping interrupts from killing the launcher.
// The collector receives the terminal's signal itself.
func (l *Launcher) wait(cmd *exec.Cmd) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	return cmd.Run()
}

func describeExit(e *ChildExitError) string {
	if e.Signaled {
		return e.State
	}
	return "exit code " + strconv.Itoa(e.Code)
}

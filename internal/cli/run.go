/*
PURPOSE:
  The launcher action behind the root command.
  Load config -> apply flag overrides -> build request -> engine.Run.

REQUIREMENTS:
  User-specified:
  - Identifier is required; missing => non-zero exit, nothing spawned.
  - Optional snapshot directory is forwarded as --snapshot-dir.

  Implementation-discovered:
  - The launcher's own directory comes from os.Executable with symlinks resolved.
  - --json and --dry-run need the Outcome, not just the error.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli/root.go
  - Uses: internal/config, internal/engine, internal/output

ERROR HANDLING:
  - Config errors => ExitError{Code: 2}, printed by Execute.
  - Engine errors => ExitError with the mapped code, already printed by the engine.

IMPLEMENTATION RULES:
  - Logic: Load Config -> Override -> Engine.Run.

USAGE:
  collect-snapshot 76561198000000000 -o ./snapshots

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daryltucker/collect-snapshot/internal/config"
	"github.com/daryltucker/collect-snapshot/internal/engine"
	"github.com/daryltucker/collect-snapshot/internal/model"
	"github.com/daryltucker/collect-snapshot/internal/output"
)

func runLaunch(ctx context.Context, opts *options, args []string, s streams) error {
	logger := output.NewLogger(s.Err, opts.verbose)
	output.SetLogger(logger)

	// 1. Locate ourselves
	baseDir := opts.baseDir
	if baseDir == "" {
		dir, err := launcherDir()
		if err != nil {
			return &ExitError{Code: engine.ExitMissingCollaborator, Err: err}
		}
		baseDir = dir
	}

	// 2. Load Config
	cfg, err := config.Load(opts.cfgFile, baseDir)
	if err != nil {
		return &ExitError{Code: engine.ExitMissingArgument, Err: err}
	}
	if cfg.Source != "" {
		logger.Debug("Loaded config", "path", cfg.Source)
	}

	// 3. Overrides
	if cfg.BaseDir != "" && opts.baseDir == "" {
		baseDir = cfg.BaseDir
	}

	req := model.InvocationRequest{SnapshotDir: opts.snapshotDir}
	if len(args) > 0 {
		req.Identifier = args[0]
	}

	// 4. Execution
	l := engine.New(cfg, baseDir)
	l.Logger = logger
	l.Resolver.Logger = logger
	l.Status = &output.Status{Out: s.Out, Err: s.Err}
	l.Stdin, l.Stdout, l.Stderr = s.In, s.Out, s.Err
	l.DryRun = opts.dryRun

	logger.Debug("Resolving collector", "base_dir", baseDir)
	outcome, runErr := l.Run(ctx, req)

	if opts.jsonOut {
		if err := output.NewJSONWriter(s.Out).Write(outcome); err != nil {
			logger.Error("Failed to write JSON outcome", "error", err)
		}
	}

	if runErr != nil {
		return &ExitError{Code: outcome.ExitCode, Err: runErr, Reported: true}
	}
	return nil
}

// launcherDir is the directory holding the running binary.
func launcherDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate launcher: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

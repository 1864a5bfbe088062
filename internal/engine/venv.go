/*
PURPOSE:
  Applies an optional project-local virtual environment before the fallback
  script runs, without touching the launcher's own environment.

REQUIREMENTS:
  User-specified:
  - If an activation marker exists under the launcher directory, apply it.
  - Absence is not an error.

  Implementation-discovered:
  - The marker is a POSIX shell script (bin/activate, or Scripts/activate on
    Windows venvs). Sourcing it in-process with mvdan/sh yields exactly the
    variables the real shell would export.
  - External commands are refused while sourcing; activate scripts only use
    them for cosmetic hash/cygpath calls.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/resolve.go
  - Produces: model.EnvOverlay

ERROR HANDLING:
  - Returns (nil, nil) when no marker exists.
  - Returns an error if the marker cannot be read, parsed or run. The caller
    logs it and continues without an overlay.

IMPLEMENTATION RULES:
  - Never call os.Setenv. The overlay is handed to the spawn step explicitly.

USAGE:
  a := &engine.Activator{FS: afero.NewOsFs()}
  overlay, err := a.Activate(ctx, venvDir, os.Environ())

SELF-HEALING INSTRUCTIONS:
  - If a newer venv exports extra variables, add them to activationVars.

RELATED FILES:
  - internal/engine/env.go

MAINTENANCE:
  - None.
*/

package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/daryltucker/collect-snapshot/internal/model"
	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// captureCommand is a pseudo-command intercepted by the exec handler to read
// the environment the activation script left behind.
const captureCommand = "__collect_snapshot_capture_env"

// activationVars are the variables a venv activation script may change.
var activationVars = []string{
	"VIRTUAL_ENV",
	"VIRTUAL_ENV_PROMPT",
	"PATH",
	"PYTHONHOME",
}

// Activator sources virtual environment activation scripts.
type Activator struct {
	FS afero.Fs
}

// ActivationScript returns the activation marker inside venvDir, if any.
func ActivationScript(fsys afero.Fs, venvDir string) (string, bool) {
	for _, sub := range []string{"bin", "Scripts"} {
		path := filepath.Join(venvDir, sub, "activate")
		if ok, _ := afero.Exists(fsys, path); ok {
			return path, true
		}
	}
	return "", false
}

// Activate sources the activation script of venvDir on top of base and
// returns the resulting environment changes.
func (a *Activator) Activate(ctx context.Context, venvDir string, base []string) (*model.EnvOverlay, error) {
	script, ok := ActivationScript(a.FS, venvDir)
	if !ok {
		return nil, nil
	}

	src, err := afero.ReadFile(a.FS, script)
	if err != nil {
		return nil, fmt.Errorf("failed to read activation script %s: %w", script, err)
	}

	parser := syntax.NewParser()
	prog, err := parser.Parse(bytes.NewReader(src), script)
	if err != nil {
		return nil, fmt.Errorf("failed to parse activation script %s: %w", script, err)
	}
	capture, err := parser.Parse(strings.NewReader(captureCommand+"\n"), "capture")
	if err != nil {
		return nil, err
	}

	after := make(map[string]*string, len(activationVars))
	captured := false

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(base...)),
		interp.StdIO(nil, io.Discard, io.Discard),
		interp.ExecHandlers(func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
			return func(ctx context.Context, args []string) error {
				if len(args) == 0 || args[0] != captureCommand {
					return interp.NewExitStatus(127)
				}
				hc := interp.HandlerCtx(ctx)
				for _, name := range activationVars {
					// hc.Env also holds shell-local variables; only exported ones reach a child.
					v := hc.Env.Get(name)
					if v.Set && v.Exported {
						val := v.Str
						after[name] = &val
					}
				}
				captured = true
				return nil
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}

	// A non-zero status from the last statement of the script is harmless.
	if err := runner.Run(ctx, prog); err != nil && !isExitStatus(err) {
		return nil, fmt.Errorf("activation script %s failed: %w", script, err)
	}
	if runner.Exited() {
		return nil, fmt.Errorf("activation script %s called exit", script)
	}
	if err := runner.Run(ctx, capture); err != nil {
		return nil, fmt.Errorf("failed to capture activated environment: %w", err)
	}
	if !captured {
		return nil, errors.New("failed to capture activated environment")
	}

	return diffOverlay(base, after), nil
}

func isExitStatus(err error) bool {
	var status interp.ExitStatus
	return errors.As(err, &status)
}

// diffOverlay compares the activation variables before and after sourcing.
func diffOverlay(base []string, after map[string]*string) *model.EnvOverlay {
	overlay := &model.EnvOverlay{Set: map[string]string{}}
	for _, name := range activationVars {
		before, had := LookupEnv(base, name)
		now := after[name]
		switch {
		case now == nil && had:
			overlay.Unset = append(overlay.Unset, name)
		case now != nil && (!had || *now != before):
			overlay.Set[name] = *now
		}
	}
	return overlay
}

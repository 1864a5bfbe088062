/*
PURPOSE:
  Decides which collector to run: the packaged executable when it sits next to
  the launcher, otherwise the interpreted fallback script.

REQUIREMENTS:
  User-specified:
  - Packaged executable present => always chosen.
  - Otherwise activate the optional venv and use the fallback script.
  - Neither present => MissingCollaborator, nothing is spawned.

  Implementation-discovered:
  - Resolution is pure filesystem probing, so it runs over afero.Fs and is
    tested on an in-memory filesystem.
  - The venv's own python is preferred once the venv was activated.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go, internal/cli (dry-run)
  - Uses: internal/config, internal/engine/venv.go

ERROR HANDLING:
  - Returns *MissingCollaboratorError when no target exists.
  - Activation errors are logged as warnings and ignored.

IMPLEMENTATION RULES:
  - Resolve exactly once per run; the result is a value.

USAGE:
  r := engine.NewResolver(fs, cfg, baseDir, os.Environ())
  target, err := r.Resolve(ctx)

SELF-HEALING INSTRUCTIONS:
  - If targets are not found, log BaseDir at debug level (-v) and compare.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update when a third target kind is introduced.
*/

package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/daryltucker/collect-snapshot/internal/config"
	"github.com/daryltucker/collect-snapshot/internal/model"
	"github.com/daryltucker/collect-snapshot/internal/output"
	"github.com/spf13/afero"
)

// Resolver turns the filesystem layout around the launcher into a DispatchTarget.
type Resolver struct {
	FS        afero.Fs
	Config    *config.Config
	BaseDir   string
	Environ   []string
	Activator *Activator
	Logger    *slog.Logger
}

// NewResolver creates a Resolver with an Activator over the same filesystem.
func NewResolver(fsys afero.Fs, cfg *config.Config, baseDir string, environ []string) *Resolver {
	return &Resolver{
		FS:        fsys,
		Config:    cfg,
		BaseDir:   baseDir,
		Environ:   environ,
		Activator: &Activator{FS: fsys},
		Logger:    output.Logger,
	}
}

// PackagedPath is the candidate packaged executable.
func (r *Resolver) PackagedPath() string {
	return r.join(r.Config.PackagedName())
}

// ScriptPath is the candidate fallback script.
func (r *Resolver) ScriptPath() string {
	return r.join(r.Config.FallbackScript)
}

// VenvDir is the virtual environment directory.
func (r *Resolver) VenvDir() string {
	return r.join(r.Config.VenvDir)
}

func (r *Resolver) join(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.BaseDir, name)
}

// Resolve picks the dispatch target.
func (r *Resolver) Resolve(ctx context.Context) (model.DispatchTarget, error) {
	packaged := r.PackagedPath()
	if ok, _ := afero.Exists(r.FS, packaged); ok {
		r.Logger.Debug("Packaged collector found", "path", packaged)
		return model.Packaged(packaged), nil
	}
	r.Logger.Debug("Packaged collector not found, using script", "path", packaged)

	overlay := r.activate(ctx)

	script := r.ScriptPath()
	if ok, _ := afero.Exists(r.FS, script); !ok {
		return model.DispatchTarget{}, &MissingCollaboratorError{Packaged: packaged, Script: script}
	}

	return model.Script(r.interpreter(overlay), script, overlay), nil
}

// activate applies the venv when present. Failures only warn.
func (r *Resolver) activate(ctx context.Context) *model.EnvOverlay {
	if r.Config.VenvDir == "" || r.Activator == nil {
		return nil
	}
	venv := r.VenvDir()
	overlay, err := r.Activator.Activate(ctx, venv, r.Environ)
	if err != nil {
		r.Logger.Warn("Virtual environment activation failed, continuing without it", "venv", venv, "error", err)
		return nil
	}
	if overlay.Empty() {
		return nil
	}
	r.Logger.Debug("Virtual environment activated", "venv", venv)
	return overlay
}

// interpreter picks the venv's python, then the configured name on the
// overlaid PATH, then the bare configured name.
func (r *Resolver) interpreter(overlay *model.EnvOverlay) string {
	name := r.Config.Interpreter
	if overlay != nil {
		bin := "bin"
		if runtime.GOOS == "windows" {
			bin = "Scripts"
		}
		dir := filepath.Join(r.VenvDir(), bin)
		for _, candidate := range []string{filepath.Base(name), "python"} {
			for _, exe := range executableNames(candidate) {
				path := filepath.Join(dir, exe)
				if isExecutable(r.FS, path) {
					return path
				}
			}
		}
	}
	if path, ok := lookPath(r.FS, name, ApplyOverlay(r.Environ, overlay)); ok {
		return path
	}
	return name
}

/*
PURPOSE:
  Defines the core data structures used throughout collect-snapshot.
  These models describe one launcher invocation and the target it dispatches to.

REQUIREMENTS:
  User-specified:
  - Forward a required identifier and an optional snapshot directory.
  - Prefer a packaged executable, fall back to an interpreted script.

  Implementation-discovered:
  - The dispatch choice must be inspectable without spawning (dry-run, tests).
  - Need JSON tags for the --json outcome record.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/output, internal/cli
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - InvocationRequest and DispatchTarget are values; never mutate after creation.
  - DispatchTarget is a two-variant tagged choice, switch on Kind.

USAGE:
  req := model.InvocationRequest{Identifier: "76561198000000000"}
  argv := req.Args()

SELF-HEALING INSTRUCTIONS:
  - If the collaborator grows new flags, extend Args() and its tests together.

RELATED FILES:
  - internal/engine/resolve.go
  - internal/output/json.go

MAINTENANCE:
  - Update when the collaborator contract changes.
*/

package model

import (
	"time"
)

// SnapshotDirFlag is the collaborator flag that carries the output directory.
const SnapshotDirFlag = "--snapshot-dir"

// InvocationRequest is the launcher input after CLI parsing.
type InvocationRequest struct {
	Identifier  string `json:"identifier"`
	SnapshotDir string `json:"snapshot_dir,omitempty"` // empty means not supplied
}

// Args returns the collaborator argument list: the identifier, then the
// snapshot directory flag when a directory was supplied.
func (r InvocationRequest) Args() []string {
	args := []string{r.Identifier}
	if r.SnapshotDir != "" {
		args = append(args, SnapshotDirFlag, r.SnapshotDir)
	}
	return args
}

// TargetKind discriminates DispatchTarget.
type TargetKind int

const (
	// PackagedExecutable is a self-contained binary shipped next to the launcher.
	PackagedExecutable TargetKind = iota + 1
	// FallbackScript is an interpreted script run through a separate runtime.
	FallbackScript
)

// String implements fmt.Stringer.
func (k TargetKind) String() string {
	switch k {
	case PackagedExecutable:
		return "packaged"
	case FallbackScript:
		return "script"
	default:
		return "unknown"
	}
}

// MarshalText lets the kind appear by name in JSON output.
func (k TargetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// DispatchTarget is the resolved thing to run.
// Path is set for PackagedExecutable; Interpreter and Script for FallbackScript.
type DispatchTarget struct {
	Kind        TargetKind `json:"kind"`
	Path        string     `json:"path,omitempty"`
	Interpreter string     `json:"interpreter,omitempty"`
	Script      string     `json:"script,omitempty"`

	// Overlay holds the environment changes produced by virtual environment
	// activation. Nil when nothing was activated.
	Overlay *EnvOverlay `json:"overlay,omitempty"`
}

// Packaged builds a PackagedExecutable target.
func Packaged(path string) DispatchTarget {
	return DispatchTarget{Kind: PackagedExecutable, Path: path}
}

// Script builds a FallbackScript target.
func Script(interpreter, script string, overlay *EnvOverlay) DispatchTarget {
	return DispatchTarget{Kind: FallbackScript, Interpreter: interpreter, Script: script, Overlay: overlay}
}

// Command returns the program to execute and the full argv that follows it.
func (t DispatchTarget) Command(req InvocationRequest) (string, []string) {
	switch t.Kind {
	case FallbackScript:
		return t.Interpreter, append([]string{t.Script}, req.Args()...)
	default:
		return t.Path, req.Args()
	}
}

// EnvOverlay is a set of environment changes applied on top of the
// launcher's own environment before spawning.
type EnvOverlay struct {
	Set   map[string]string `json:"set,omitempty"`
	Unset []string          `json:"unset,omitempty"`
}

// Empty reports whether the overlay changes nothing.
func (o *EnvOverlay) Empty() bool {
	return o == nil || (len(o.Set) == 0 && len(o.Unset) == 0)
}

// Outcome is the record of one launcher run.
type Outcome struct {
	Request   InvocationRequest `json:"request"`
	Target    *DispatchTarget   `json:"target,omitempty"` // nil when resolution failed
	Timestamp time.Time         `json:"timestamp"`
	Duration  time.Duration     `json:"duration"`
	ExitCode  int               `json:"exit_code"`
	DryRun    bool              `json:"dry_run,omitempty"`
	Error     string            `json:"error,omitempty"`
}

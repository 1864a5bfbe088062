package engine

import (
	"errors"
	"fmt"
)

// Launcher exit codes. A child's own non-zero code is propagated verbatim and
// is not listed here.
const (
	ExitSuccess             = 0
	ExitMissingCollaborator = 1
	ExitSignaled            = 1
	ExitMissingArgument     = 2
	ExitSpawnFailure        = 127
)

var (
	// ErrMissingArgument is returned when the identifier is absent or blank.
	ErrMissingArgument = errors.New("missing required identifier")
	// ErrMissingCollaborator is returned when neither the packaged executable
	// nor the fallback script exists.
	ErrMissingCollaborator = errors.New("no snapshot collector found")
	// ErrChildProcessFailure is returned when the collaborator exits non-zero.
	ErrChildProcessFailure = errors.New("snapshot collector failed")
	// ErrSpawnFailure is returned when the collaborator could not be started.
	ErrSpawnFailure = errors.New("could not start snapshot collector")
)

// MissingCollaboratorError lists the paths that were probed.
type MissingCollaboratorError struct {
	Packaged string
	Script   string
}

func (e *MissingCollaboratorError) Error() string {
	return fmt.Sprintf("%v: neither %s nor %s exists", ErrMissingCollaborator, e.Packaged, e.Script)
}

func (e *MissingCollaboratorError) Unwrap() error { return ErrMissingCollaborator }

// ChildExitError carries the collaborator's exit code.
type ChildExitError struct {
	Code int
	// Signaled is set when the child was killed and has no exit code.
	Signaled bool
	State    string
}

func (e *ChildExitError) Error() string {
	if e.Signaled {
		return fmt.Sprintf("%v: %s", ErrChildProcessFailure, e.State)
	}
	return fmt.Sprintf("%v with exit code %d", ErrChildProcessFailure, e.Code)
}

func (e *ChildExitError) Unwrap() error { return ErrChildProcessFailure }

// SpawnError wraps the operating system error from starting the child.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%v %s: %v", ErrSpawnFailure, e.Program, e.Err)
}

// Unwrap exposes both the sentinel and the OS error.
func (e *SpawnError) Unwrap() []error { return []error{ErrSpawnFailure, e.Err} }

// ExitCodeFor maps a launcher error to the process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var childErr *ChildExitError
	switch {
	case errors.As(err, &childErr):
		if childErr.Signaled || childErr.Code <= 0 {
			return ExitSignaled
		}
		return childErr.Code
	case errors.Is(err, ErrMissingArgument):
		return ExitMissingArgument
	case errors.Is(err, ErrMissingCollaborator):
		return ExitMissingCollaborator
	case errors.Is(err, ErrSpawnFailure):
		return ExitSpawnFailure
	default:
		return 1
	}
}

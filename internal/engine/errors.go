package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Registry construction errors.
var (
	ErrEmptyName       = errors.New("module name is empty")
	ErrDuplicateModule = errors.New("duplicate module")
	ErrUnknownImport   = errors.New("unknown import")
)

// Handle misuse errors.
var (
	// ErrInvalidHandle is returned when a phase is called in a result state
	// that does not allow it (e.g. Run after a Cycle).
	ErrInvalidHandle = errors.New("handle not valid for this operation")

	// ErrHandleUnusable is returned by every phase once finalization has
	// failed. A partially torn-down dependency chain cannot be resumed.
	ErrHandleUnusable = errors.New("handle unusable after failed finalization")

	// ErrHandleInUse is returned by Sort on a handle that still holds a table.
	ErrHandleInUse = errors.New("handle still holds a table")
)

// CycleError reports an import cycle found by Sort.
//
// Path is the recorded cycle path: Path[0] is the module that was reached
// while still Initializing, followed by the modules on the traversal stack
// from the innermost frame outwards. Each entry is imported by the entry
// after it, and the last entry imports Path[0].
type CycleError struct {
	Path []string
}

// Chain renders the cycle as a closed import chain starting and ending at
// Path[0], e.g. [a b c a] for "a imports b imports c imports a".
func (e *CycleError) Chain() []string {
	if len(e.Path) == 0 {
		return nil
	}
	chain := make([]string, 0, len(e.Path)+1)
	chain = append(chain, e.Path[0])
	for i := len(e.Path) - 1; i >= 1; i-- {
		chain = append(chain, e.Path[i])
	}
	return append(chain, e.Path[0])
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("import cycle detected: %s", strings.Join(e.Chain(), " -> "))
}

// HookError reports an init or fini hook that failed.
type HookError struct {
	Stage  Stage
	Module string
	Index  int // table index of the module
	Err    error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook of module %q (table index %d) failed: %v", e.Stage, e.Module, e.Index, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// AllocationError reports a registry too large for the table limit.
type AllocationError struct {
	Size  int
	Limit int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("cannot allocate module table: %d modules exceeds limit %d", e.Size, e.Limit)
}

// IsCycle reports whether err is or wraps a *CycleError.
func IsCycle(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}

// IsHookFailure reports whether err is or wraps a *HookError.
func IsHookFailure(err error) bool {
	var he *HookError
	return errors.As(err, &he)
}

package hookchain

import (
	"errors"
	"fmt"
)

// Errors reported by the hooking API. Argument problems with the
// invocation primitives surface as the runtime package's errors
// (runtime.ErrIllegalArgument and friends); these cover the hooking
// surface itself.
var (
	// ErrNotHookable indicates the target cannot be hooked: nil,
	// abstract, framework-internal, or a reflective entry point.
	ErrNotHookable = errors.New("hookchain: target not hookable")

	// ErrInvalidHooker indicates the hooker is nil. A non-nil hooker
	// implementing neither callback interface is installable; it just
	// never observes calls.
	ErrInvalidHooker = errors.New("hookchain: invalid hooker")

	// ErrNoInitializer indicates the class declares no initializer.
	ErrNoInitializer = errors.New("hookchain: class has no initializer")
)

// HookFailedError reports that a valid hook request failed inside the
// redirection layer. It is distinct from the argument errors above:
// the target and hooker were acceptable, the installation was not.
type HookFailedError struct {
	Target string
	Err    error
}

// Error implements error.
func (e *HookFailedError) Error() string {
	return fmt.Sprintf("hookchain: hook failed for %s: %v", e.Target, e.Err)
}

// Unwrap returns the underlying installation error.
func (e *HookFailedError) Unwrap() error { return e.Err }

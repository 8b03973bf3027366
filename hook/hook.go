// Package hook defines the hooker contract for method interception.
//
// A hooker observes one target (a method or constructor) through two
// optional phases. Before runs ahead of the original body and may modify
// arguments or skip the body entirely; After runs once the outcome is
// known and may overwrite it. Hookers at higher priority run earlier in
// the before phase and later in the after phase, so each hooker wraps
// all lower-priority ones.
package hook

// Standard hook priorities.
//
// Ties are broken by installation order: of two hookers at the same
// priority, the earlier-installed one runs first in the before phase.
const (
	// PriorityDefault is the priority used by most hookers.
	PriorityDefault = 50

	// PriorityLowest runs the before callback last.
	PriorityLowest = -10000

	// PriorityHighest runs the before callback first.
	PriorityHighest = 10000
)

// Hooker is the base interface for all hookers.
//
// A hooker should also implement BeforeHooker, AfterHooker, or both;
// a hooker with neither phase is installable but never observes calls.
// Priority must not change after the hooker is installed, otherwise
// the dispatch order is undefined.
type Hooker interface {
	// Priority returns the hook priority.
	// Higher values run first for before, last for after.
	Priority() int
}

// BeforeHooker is implemented by hookers that observe the call before
// the original body runs.
type BeforeHooker interface {
	Hooker

	// Before is called ahead of the original body. It may modify the
	// arguments through ctx, or skip the body with ReturnAndSkip or
	// ThrowAndSkip. A non-nil error is treated as ThrowAndSkip with
	// that error.
	Before(ctx BeforeContext) error
}

// AfterHooker is implemented by hookers that observe the call outcome.
type AfterHooker interface {
	Hooker

	// After is called once the outcome is known. It may overwrite the
	// result or error seen by lower-priority after callbacks and
	// ultimately by the real caller. A non-nil error replaces the
	// call's error outcome.
	After(ctx AfterContext) error
}

// BeforeContext is the view of an in-flight invocation exposed to a
// before callback. It is valid only for the duration of the callback
// that received it; retaining it past the call is undefined.
type BeforeContext interface {
	// Target returns the name of the method or constructor being hooked.
	Target() string

	// This returns the receiver, or nil for static calls and
	// not-yet-constructed instances.
	This() any

	// Args returns the live argument vector. Mutations are visible to
	// later before callbacks and to the original body.
	Args() []any

	// SetArg replaces argument i.
	SetArg(i int, v any)

	// ReturnAndSkip supplies the call's return value and skips the
	// original body. For constructors the value is ignored but the
	// body is still skipped. Remaining before callbacks do not run;
	// after callbacks for hookers that already ran still do.
	ReturnAndSkip(result any)

	// ThrowAndSkip supplies the call's error and skips the original
	// body, with the same phase semantics as ReturnAndSkip.
	ThrowAndSkip(err error)
}

// AfterContext is the view of a completed (or skipped) invocation
// exposed to an after callback. It is valid only for the duration of
// the callback that received it.
type AfterContext interface {
	// Target returns the name of the method or constructor being hooked.
	Target() string

	// This returns the receiver, or nil for static calls.
	This() any

	// Args returns the argument vector the body saw.
	Args() []any

	// Result returns the current return value. It is nil when the call
	// errored or the target is a constructor.
	Result() any

	// Throwable returns the current error outcome, or nil if the call
	// succeeded.
	Throwable() error

	// IsSkipped reports whether a before callback skipped the body.
	IsSkipped() bool

	// SetResult overwrites the return value and clears the error.
	SetResult(result any)

	// SetThrowable overwrites the error outcome.
	SetThrowable(err error)
}

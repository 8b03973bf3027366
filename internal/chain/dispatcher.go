package chain

import (
	"fmt"
	"runtime"
	"time"

	"github.com/dshills/hookchain/hook"
	"github.com/dshills/hookchain/internal/registry"
)

// Call describes one invocation of a hooked target.
type Call struct {
	// Target is the qualified target name, for contexts and metrics.
	Target string

	// Ctor marks constructor targets, which have no return value.
	Ctor bool

	// This is the receiver, or nil for static calls.
	This any

	// Args is the argument vector. Before callbacks mutate it in place.
	Args []any

	// Body invokes the original implementation.
	Body func(this any, args []any) (any, error)
}

// Dispatcher runs the interception protocol. The zero-value-free
// constructor exists so metrics can be attached once and shared by
// every target.
type Dispatcher struct {
	metrics *Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics attaches a metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// New creates a dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Metrics returns the attached metrics collector (may be nil).
func (d *Dispatcher) Metrics() *Metrics { return d.metrics }

// Dispatch executes one invocation of call against the given registry
// snapshot and priority scope, and returns the final outcome exactly
// as the real caller should observe it.
//
// A before callback that returns an error or panics is treated as if
// it had called ThrowAndSkip with that error: the remaining before
// callbacks and the body do not run, and the after phase still unwinds
// through every hooker whose before phase ran, including the failing
// one. An error or panic from an after callback replaces the frame's
// error outcome and the unwind continues.
func (d *Dispatcher) Dispatch(call Call, snap []*registry.Registration, scope Scope) (any, error) {
	start := time.Now()

	f := &frame{
		target: call.Target,
		ctor:   call.Ctor,
		this:   call.This,
		args:   call.Args,
	}

	// Before phase. ran records the traversal actually executed so the
	// after phase unwinds in exact reverse; hookers whose before never
	// ran get no after call.
	var panics uint64
	ran := make([]*registry.Registration, 0, len(snap))
	for _, reg := range snap {
		if !scope.includes(reg.Priority()) {
			continue
		}
		ran = append(ran, reg)

		bh, ok := reg.Hooker().(hook.BeforeHooker)
		if !ok {
			continue
		}
		err, panicked := d.runBefore(bh, f)
		if panicked {
			panics++
		}
		if err != nil {
			f.skipWithError(err)
		}
		if f.skipped {
			break
		}
	}

	// Original body, unless skipped.
	if !f.skipped {
		res, err := call.Body(f.this, f.args)
		if err != nil {
			f.throwable = err
		} else if !f.ctor {
			f.result = res
		}
	}

	// After phase, innermost first.
	for i := len(ran) - 1; i >= 0; i-- {
		ah, ok := ran[i].Hooker().(hook.AfterHooker)
		if !ok {
			continue
		}
		err, panicked := d.runAfter(ah, f)
		if panicked {
			panics++
		}
		if err != nil {
			f.result = nil
			f.throwable = err
		}
	}

	if d.metrics != nil {
		d.metrics.Record(call.Target, time.Since(start), outcomeOf(f), panics)
	}

	if f.throwable != nil {
		return nil, f.throwable
	}
	return f.result, nil
}

// runBefore invokes one before callback with panic recovery. The
// context is released when the callback returns; a retained context
// becomes inert rather than corrupting a later frame.
func (d *Dispatcher) runBefore(bh hook.BeforeHooker, f *frame) (err error, panicked bool) {
	ctx := &beforeCtx{f: f}
	defer func() {
		ctx.released = true
		if r := recover(); r != nil {
			err = panicError(f.target, "before", r)
			panicked = true
		}
	}()
	err = bh.Before(ctx)
	return err, false
}

// runAfter invokes one after callback with panic recovery.
func (d *Dispatcher) runAfter(ah hook.AfterHooker, f *frame) (err error, panicked bool) {
	ctx := &afterCtx{f: f}
	defer func() {
		ctx.released = true
		if r := recover(); r != nil {
			err = panicError(f.target, "after", r)
			panicked = true
		}
	}()
	err = ah.After(ctx)
	return err, false
}

// panicError converts a recovered callback panic into the frame's
// error outcome, preserving a short stack for diagnostics.
func panicError(target, phase string, recovered any) error {
	stack := make([]byte, 4096)
	n := runtime.Stack(stack, false)
	return fmt.Errorf("chain: %s hooker panic for %s: %v\n%s", phase, target, recovered, stack[:n])
}

func outcomeOf(f *frame) Outcome {
	switch {
	case f.skipped:
		return OutcomeSkipped
	case f.throwable != nil:
		return OutcomeThrew
	default:
		return OutcomeReturned
	}
}

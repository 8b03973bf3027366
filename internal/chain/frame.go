package chain

// frame is the ephemeral state of one invocation. It lives for exactly
// one Dispatch call and is never shared across goroutines.
type frame struct {
	target string
	ctor   bool

	this any
	args []any

	skipped   bool
	result    any
	throwable error
}

// skipWithResult records a before-phase skip with a substitute return
// value. Constructors have no return value, so the value is dropped
// but the skip still happens.
func (f *frame) skipWithResult(result any) {
	f.skipped = true
	f.throwable = nil
	if !f.ctor {
		f.result = result
	}
}

// skipWithError records a before-phase skip with a substitute error.
func (f *frame) skipWithError(err error) {
	f.skipped = true
	f.result = nil
	f.throwable = err
}

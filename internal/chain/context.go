package chain

// beforeCtx is the before-phase view over one frame. Each callback
// receives its own context; the dispatcher releases it when the
// callback returns, after which every method is a no-op. Retaining a
// context past the callback is a contract violation, so the guard only
// keeps a stale context from corrupting a later frame.
type beforeCtx struct {
	f        *frame
	released bool
}

// Target implements hook.BeforeContext.
func (c *beforeCtx) Target() string {
	if c.released {
		return ""
	}
	return c.f.target
}

// This implements hook.BeforeContext.
func (c *beforeCtx) This() any {
	if c.released {
		return nil
	}
	return c.f.this
}

// Args implements hook.BeforeContext.
func (c *beforeCtx) Args() []any {
	if c.released {
		return nil
	}
	return c.f.args
}

// SetArg implements hook.BeforeContext.
func (c *beforeCtx) SetArg(i int, v any) {
	if c.released || i < 0 || i >= len(c.f.args) {
		return
	}
	c.f.args[i] = v
}

// ReturnAndSkip implements hook.BeforeContext.
func (c *beforeCtx) ReturnAndSkip(result any) {
	if c.released {
		return
	}
	c.f.skipWithResult(result)
}

// ThrowAndSkip implements hook.BeforeContext.
func (c *beforeCtx) ThrowAndSkip(err error) {
	if c.released {
		return
	}
	c.f.skipWithError(err)
}

// afterCtx is the after-phase view over one frame, with the same
// release semantics as beforeCtx.
type afterCtx struct {
	f        *frame
	released bool
}

// Target implements hook.AfterContext.
func (c *afterCtx) Target() string {
	if c.released {
		return ""
	}
	return c.f.target
}

// This implements hook.AfterContext.
func (c *afterCtx) This() any {
	if c.released {
		return nil
	}
	return c.f.this
}

// Args implements hook.AfterContext.
func (c *afterCtx) Args() []any {
	if c.released {
		return nil
	}
	return c.f.args
}

// Result implements hook.AfterContext.
func (c *afterCtx) Result() any {
	if c.released {
		return nil
	}
	return c.f.result
}

// Throwable implements hook.AfterContext.
func (c *afterCtx) Throwable() error {
	if c.released {
		return nil
	}
	return c.f.throwable
}

// IsSkipped implements hook.AfterContext.
func (c *afterCtx) IsSkipped() bool {
	if c.released {
		return false
	}
	return c.f.skipped
}

// SetResult implements hook.AfterContext.
func (c *afterCtx) SetResult(result any) {
	if c.released {
		return
	}
	if !c.f.ctor {
		c.f.result = result
	}
	c.f.throwable = nil
}

// SetThrowable implements hook.AfterContext.
func (c *afterCtx) SetThrowable(err error) {
	if c.released {
		return
	}
	c.f.result = nil
	c.f.throwable = err
}

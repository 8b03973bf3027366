package hook

// BeforeFunc adapts a function to a BeforeHooker.
type BeforeFunc struct {
	priority int
	fn       func(ctx BeforeContext) error
}

// NewBeforeFunc creates a before-only hooker from a function.
func NewBeforeFunc(priority int, fn func(ctx BeforeContext) error) *BeforeFunc {
	return &BeforeFunc{priority: priority, fn: fn}
}

// Priority implements Hooker.
func (f *BeforeFunc) Priority() int { return f.priority }

// Before implements BeforeHooker.
func (f *BeforeFunc) Before(ctx BeforeContext) error {
	if f.fn == nil {
		return nil
	}
	return f.fn(ctx)
}

// AfterFunc adapts a function to an AfterHooker.
type AfterFunc struct {
	priority int
	fn       func(ctx AfterContext) error
}

// NewAfterFunc creates an after-only hooker from a function.
func NewAfterFunc(priority int, fn func(ctx AfterContext) error) *AfterFunc {
	return &AfterFunc{priority: priority, fn: fn}
}

// Priority implements Hooker.
func (f *AfterFunc) Priority() int { return f.priority }

// After implements AfterHooker.
func (f *AfterFunc) After(ctx AfterContext) error {
	if f.fn == nil {
		return nil
	}
	return f.fn(ctx)
}

// Funcs is a hooker built from optional before and after functions.
type Funcs struct {
	priority int
	before   func(ctx BeforeContext) error
	after    func(ctx AfterContext) error
}

// New creates a hooker from optional before and after functions.
// Either function may be nil.
func New(priority int, before func(ctx BeforeContext) error, after func(ctx AfterContext) error) *Funcs {
	return &Funcs{priority: priority, before: before, after: after}
}

// Priority implements Hooker.
func (f *Funcs) Priority() int { return f.priority }

// Before implements BeforeHooker.
func (f *Funcs) Before(ctx BeforeContext) error {
	if f.before == nil {
		return nil
	}
	return f.before(ctx)
}

// After implements AfterHooker.
func (f *Funcs) After(ctx AfterContext) error {
	if f.after == nil {
		return nil
	}
	return f.after(ctx)
}

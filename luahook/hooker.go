package luahook

import (
	"errors"
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hookchain/hook"
)

// Hooker is a hook.Hooker whose callbacks are Lua functions. It always
// implements both phases; a missing script function is a no-op.
//
// gopher-lua states are not goroutine-safe, so the hooker serializes
// its callbacks with a mutex. Reentrant dispatch from inside a Lua
// callback back into the same hooker would deadlock; scripts must not
// call targets they themselves hook.
type Hooker struct {
	name     string
	priority int

	mu     sync.Mutex
	L      *lua.LState
	before lua.LValue
	after  lua.LValue
	closed bool
}

// Option configures a Hooker.
type Option func(*config)

type config struct {
	priority *int
}

// WithPriority overrides the script's priority global.
func WithPriority(p int) Option {
	return func(c *config) {
		c.priority = &p
	}
}

// NewFromString compiles a hooker from Lua source. The script runs
// once at construction to define its callbacks. Priority comes from
// the script's priority global, overridable with WithPriority, and
// defaults to hook.PriorityDefault.
func NewFromString(name, code string, opts ...Option) (*Hooker, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	if err := doWithRecovery(func() error { return L.DoString(code) }); err != nil {
		L.Close()
		return nil, fmt.Errorf("luahook: script %s: %w", name, err)
	}

	h := &Hooker{
		name:     name,
		priority: hook.PriorityDefault,
		L:        L,
		before:   L.GetGlobal("before"),
		after:    L.GetGlobal("after"),
	}

	if h.before.Type() != lua.LTFunction {
		h.before = lua.LNil
	}
	if h.after.Type() != lua.LTFunction {
		h.after = lua.LNil
	}
	if h.before == lua.LNil && h.after == lua.LNil {
		L.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoCallbacks, name)
	}

	if p := L.GetGlobal("priority"); p.Type() == lua.LTNumber {
		h.priority = int(p.(lua.LNumber))
	}
	if cfg.priority != nil {
		h.priority = *cfg.priority
	}

	return h, nil
}

// NewFromFile compiles a hooker from a Lua source file.
func NewFromFile(name, path string, opts ...Option) (*Hooker, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("luahook: script %s: %w", name, err)
	}
	return NewFromString(name, string(code), opts...)
}

// Name returns the hooker's name.
func (h *Hooker) Name() string { return h.name }

// Priority implements hook.Hooker.
func (h *Hooker) Priority() int { return h.priority }

// Before implements hook.BeforeHooker.
func (h *Hooker) Before(ctx hook.BeforeContext) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	if h.before == lua.LNil {
		return nil
	}
	return h.call(h.before, h.beforeTable(ctx))
}

// After implements hook.AfterHooker.
func (h *Hooker) After(ctx hook.AfterContext) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	if h.after == lua.LNil {
		return nil
	}
	return h.call(h.after, h.afterTable(ctx))
}

// Close releases the Lua state. Callbacks after Close return ErrClosed.
func (h *Hooker) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.L.Close()
	h.closed = true
	return nil
}

// call runs one Lua callback with panic recovery.
func (h *Hooker) call(fn lua.LValue, arg lua.LValue) error {
	return doWithRecovery(func() error {
		h.L.Push(fn)
		h.L.Push(arg)
		return h.L.PCall(1, 0, nil)
	})
}

// beforeTable builds the call table passed to a before function.
// Argument indices are 1-based on the Lua side.
func (h *Hooker) beforeTable(ctx hook.BeforeContext) *lua.LTable {
	L := h.L
	t := L.NewTable()

	t.RawSetString("target", lua.LString(ctx.Target()))
	t.RawSetString("this", L.NewFunction(func(L *lua.LState) int {
		L.Push(toLua(L, ctx.This()))
		return 1
	}))
	t.RawSetString("arg", L.NewFunction(func(L *lua.LState) int {
		i := L.CheckInt(1)
		args := ctx.Args()
		if i < 1 || i > len(args) {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(toLua(L, args[i-1]))
		return 1
	}))
	t.RawSetString("nargs", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(len(ctx.Args())))
		return 1
	}))
	t.RawSetString("set_arg", L.NewFunction(func(L *lua.LState) int {
		i := L.CheckInt(1)
		ctx.SetArg(i-1, toGo(L.Get(2)))
		return 0
	}))
	t.RawSetString("return_and_skip", L.NewFunction(func(L *lua.LState) int {
		ctx.ReturnAndSkip(toGo(L.Get(1)))
		return 0
	}))
	t.RawSetString("throw_and_skip", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		ctx.ThrowAndSkip(&ScriptError{Hooker: h.name, Msg: msg})
		return 0
	}))

	return t
}

// afterTable builds the call table passed to an after function.
func (h *Hooker) afterTable(ctx hook.AfterContext) *lua.LTable {
	L := h.L
	t := L.NewTable()

	t.RawSetString("target", lua.LString(ctx.Target()))
	t.RawSetString("this", L.NewFunction(func(L *lua.LState) int {
		L.Push(toLua(L, ctx.This()))
		return 1
	}))
	t.RawSetString("arg", L.NewFunction(func(L *lua.LState) int {
		i := L.CheckInt(1)
		args := ctx.Args()
		if i < 1 || i > len(args) {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(toLua(L, args[i-1]))
		return 1
	}))
	t.RawSetString("result", L.NewFunction(func(L *lua.LState) int {
		L.Push(toLua(L, ctx.Result()))
		return 1
	}))
	t.RawSetString("set_result", L.NewFunction(func(L *lua.LState) int {
		ctx.SetResult(toGo(L.Get(1)))
		return 0
	}))
	t.RawSetString("throwable", L.NewFunction(func(L *lua.LState) int {
		if err := ctx.Throwable(); err != nil {
			L.Push(lua.LString(err.Error()))
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}))
	t.RawSetString("set_throwable", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		ctx.SetThrowable(&ScriptError{Hooker: h.name, Msg: msg})
		return 0
	}))
	t.RawSetString("skipped", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(ctx.IsSkipped()))
		return 1
	}))

	return t
}

// ScriptError is an error raised by a hooker script through
// throw_and_skip or set_throwable.
type ScriptError struct {
	Hooker string
	Msg    string
}

// Error implements error.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("luahook: %s: %s", e.Hooker, e.Msg)
}

// openSafeLibraries opens only the safe Lua standard libraries and
// removes the chunk loaders base brings in.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// io, os, debug, and package stay closed; these would let scripts
	// reach outside the sandbox.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// doWithRecovery executes fn, converting a gopher-lua panic into an
// error.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// AsScriptError reports whether err originated from a hooker script
// and returns it if so.
func AsScriptError(err error) (*ScriptError, bool) {
	var se *ScriptError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

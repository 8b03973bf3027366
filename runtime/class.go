package runtime

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// InitializerName is the reserved name of a class initializer.
const InitializerName = "<clinit>"

// Class is a named type with single inheritance, declared methods,
// an optional constructor, and an optional run-once initializer.
//
// Class definition (DefineMethod, DefineConstructor, DefineInitializer)
// is expected to finish before instances are created or methods hooked;
// definition is not synchronized against invocation.
type Class struct {
	name  string
	super *Class

	methods     map[string]*Method
	ctor        *Constructor
	initializer *Method

	initMu      sync.Mutex
	initialized atomic.Bool
}

// NewClass creates a class. super may be nil for a root class.
func NewClass(name string, super *Class) *Class {
	return &Class{
		name:    name,
		super:   super,
		methods: make(map[string]*Method),
	}
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Super returns the superclass, or nil.
func (c *Class) Super() *Class { return c.super }

// IsSubclassOf reports whether c is other or a subclass of other.
func (c *Class) IsSubclassOf(other *Class) bool {
	for k := c; k != nil; k = k.super {
		if k == other {
			return true
		}
	}
	return false
}

// DefineMethod declares a method on the class. Abstract methods take a
// nil body; all others require one.
func (c *Class) DefineMethod(name string, arity int, flags Flags, body Body) (*Method, error) {
	if name == "" || name == InitializerName {
		return nil, fmt.Errorf("%w: invalid method name %q", ErrIllegalArgument, name)
	}
	if _, exists := c.methods[name]; exists {
		return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateMethod, c.name, name)
	}
	if flags&FlagAbstract == 0 && body == nil {
		return nil, fmt.Errorf("%w: %s.%s has no body", ErrIllegalArgument, c.name, name)
	}
	m := &Method{class: c, name: name, arity: arity, flags: flags, body: body}
	c.methods[name] = m
	return m, nil
}

// MustDefineMethod is DefineMethod that panics on error. It is meant
// for static class setup where a failure is a programming error.
func (c *Class) MustDefineMethod(name string, arity int, flags Flags, body Body) *Method {
	m, err := c.DefineMethod(name, arity, flags, body)
	if err != nil {
		panic(err)
	}
	return m
}

// DefineConstructor declares the class constructor.
func (c *Class) DefineConstructor(arity int, flags Flags, body CtorBody) (*Constructor, error) {
	if c.ctor != nil {
		return nil, fmt.Errorf("%w: %s already has a constructor", ErrDuplicateMethod, c.name)
	}
	if body == nil {
		return nil, fmt.Errorf("%w: %s constructor has no body", ErrIllegalArgument, c.name)
	}
	ct := &Constructor{class: c, arity: arity, flags: flags, body: body}
	c.ctor = ct
	return ct, nil
}

// MustDefineConstructor is DefineConstructor that panics on error.
func (c *Class) MustDefineConstructor(arity int, flags Flags, body CtorBody) *Constructor {
	ct, err := c.DefineConstructor(arity, flags, body)
	if err != nil {
		panic(err)
	}
	return ct
}

// DefineInitializer declares the class initializer. It runs at most
// once, before the first instance is created or CallStatic is used
// with initialization.
func (c *Class) DefineInitializer(body Body) (*Method, error) {
	if c.initializer != nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateMethod, c.name, InitializerName)
	}
	if body == nil {
		return nil, fmt.Errorf("%w: %s initializer has no body", ErrIllegalArgument, c.name)
	}
	m := &Method{class: c, name: InitializerName, arity: 0, flags: FlagStatic, body: body}
	c.initializer = m
	return m, nil
}

// Method returns a method declared directly on this class.
func (c *Class) Method(name string) (*Method, bool) {
	m, ok := c.methods[name]
	return m, ok
}

// Resolve finds a method by name, walking up the superclass chain.
// The most-derived declaration wins.
func (c *Class) Resolve(name string) (*Method, bool) {
	for k := c; k != nil; k = k.super {
		if m, ok := k.methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// Constructor returns the class constructor, or nil.
func (c *Class) Constructor() *Constructor { return c.ctor }

// Initializer returns the class initializer, or nil.
func (c *Class) Initializer() *Method { return c.initializer }

// Initialized reports whether the class initializer has run.
func (c *Class) Initialized() bool { return c.initialized.Load() }

// EnsureInitialized runs the initializer chain (superclasses first)
// exactly once per class. The initializer is invoked through its
// interception entry, so class-initializer hooks observe it.
func (c *Class) EnsureInitialized() error {
	if c.initialized.Load() {
		return nil
	}
	if c.super != nil {
		if err := c.super.EnsureInitialized(); err != nil {
			return err
		}
	}
	c.initMu.Lock()
	defer c.initMu.Unlock()
	if c.initialized.Load() {
		return nil
	}
	if c.initializer != nil {
		if _, err := c.initializer.Invoke(nil, nil); err != nil {
			return err
		}
	}
	c.initialized.Store(true)
	return nil
}

// New creates and initializes an instance. The constructor is invoked
// through its interception entry, so constructor hooks observe it.
// A class without a constructor accepts only zero arguments.
func (c *Class) New(args ...any) (*Object, error) {
	if err := c.EnsureInitialized(); err != nil {
		return nil, err
	}
	obj := newObject(c)
	if c.ctor == nil {
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: %s has no constructor", ErrNoConstructor, c.name)
		}
		return obj, nil
	}
	if err := c.ctor.Invoke(obj, args); err != nil {
		return nil, err
	}
	return obj, nil
}

// Alloc creates an uninitialized instance without running any
// constructor. It backs special instantiation, where a parent
// constructor initializes a subclass instance.
func (c *Class) Alloc() *Object {
	return newObject(c)
}

// CallStatic invokes a static method resolved from this class.
func (c *Class) CallStatic(name string, args ...any) (any, error) {
	m, ok := c.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchMethod, c.name, name)
	}
	if !m.IsStatic() {
		return nil, fmt.Errorf("%w: %s is not static", ErrIllegalArgument, m.QualifiedName())
	}
	if err := c.EnsureInitialized(); err != nil {
		return nil, err
	}
	return m.Invoke(nil, args)
}

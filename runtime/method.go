package runtime

import (
	"fmt"
	"sync/atomic"
)

// Flags describe properties of a method or constructor.
type Flags uint8

const (
	// FlagStatic marks a method that takes no receiver.
	FlagStatic Flags = 1 << iota

	// FlagAbstract marks a method with no body. Abstract methods
	// cannot be invoked or hooked.
	FlagAbstract

	// FlagInternal marks a framework-internal method that must not
	// be hooked.
	FlagInternal

	// FlagReflective marks a reflective invocation entry point
	// (the model's analogue of Method.invoke). Hooking one would
	// intercept the interceptor, so it is rejected.
	FlagReflective

	// FlagUnpatchable marks a method the redirection layer cannot
	// instrument. Hook installation on it fails with a framework
	// error rather than an argument error.
	FlagUnpatchable
)

// VariadicArity disables arity checking for a method or constructor.
const VariadicArity = -1

// Body is the original implementation of a method. For static methods
// this is nil.
type Body func(this *Object, args []any) (any, error)

// Entry is an interception entry installed by the redirection layer.
// When installed, it receives every invocation in place of the body.
type Entry func(this *Object, args []any) (any, error)

// Method is one method of a class. Identity is pointer identity.
type Method struct {
	class *Class
	name  string
	arity int
	flags Flags
	body  Body

	entry atomic.Pointer[Entry]
}

// Name returns the method's declared name.
func (m *Method) Name() string { return m.name }

// QualifiedName returns "Class.method" for diagnostics.
func (m *Method) QualifiedName() string {
	return m.class.name + "." + m.name
}

// Class returns the declaring class.
func (m *Method) Class() *Class { return m.class }

// Arity returns the declared argument count, or VariadicArity.
func (m *Method) Arity() int { return m.arity }

// Flags returns the method flags.
func (m *Method) Flags() Flags { return m.flags }

// IsStatic reports whether the method takes no receiver.
func (m *Method) IsStatic() bool { return m.flags&FlagStatic != 0 }

// IsAbstract reports whether the method has no body.
func (m *Method) IsAbstract() bool { return m.flags&FlagAbstract != 0 }

// checkCall validates receiver and arity before any invocation.
func (m *Method) checkCall(this *Object, args []any) error {
	if m.IsAbstract() {
		return fmt.Errorf("%w: %s", ErrAbstract, m.QualifiedName())
	}
	if m.IsStatic() {
		if this != nil {
			return fmt.Errorf("%w: static %s called with receiver", ErrIllegalArgument, m.QualifiedName())
		}
	} else {
		if this == nil {
			return fmt.Errorf("%w: %s called without receiver", ErrIllegalArgument, m.QualifiedName())
		}
		if !this.class.IsSubclassOf(m.class) {
			return fmt.Errorf("%w: %s called on %s", ErrIllegalArgument, m.QualifiedName(), this.class.name)
		}
	}
	if m.arity != VariadicArity && len(args) != m.arity {
		return fmt.Errorf("%w: %s wants %d args, got %d", ErrIllegalArgument, m.QualifiedName(), m.arity, len(args))
	}
	return nil
}

// Invoke calls the method on the given receiver. If an interception
// entry is installed, the call enters it; otherwise the original body
// runs directly. No virtual resolution is performed; use Virtual first
// to honor overrides.
func (m *Method) Invoke(this *Object, args []any) (any, error) {
	if err := m.checkCall(this, args); err != nil {
		return nil, err
	}
	if e := m.entry.Load(); e != nil {
		return (*e)(this, args)
	}
	return m.body(this, args)
}

// CallBody invokes the original body, bypassing any interception
// entry. This is the primitive behind origin and special invocation.
func (m *Method) CallBody(this *Object, args []any) (any, error) {
	if err := m.checkCall(this, args); err != nil {
		return nil, err
	}
	return m.body(this, args)
}

// Virtual resolves the method against the receiver's dynamic class,
// returning the most-derived override. Static methods and nil
// receivers resolve to the method itself.
func (m *Method) Virtual(this *Object) (*Method, error) {
	if m.IsStatic() || this == nil {
		return m, nil
	}
	if !this.class.IsSubclassOf(m.class) {
		return nil, fmt.Errorf("%w: %s is not a %s", ErrIllegalArgument, this.class.name, m.class.name)
	}
	if r, ok := this.class.Resolve(m.name); ok {
		return r, nil
	}
	return m, nil
}

// SetEntry installs an interception entry, replacing any previous one.
func (m *Method) SetEntry(e Entry) error {
	if m.flags&FlagUnpatchable != 0 {
		return fmt.Errorf("%w: %s", ErrUnpatchable, m.QualifiedName())
	}
	m.entry.Store(&e)
	return nil
}

// ClearEntry removes the interception entry.
func (m *Method) ClearEntry() {
	m.entry.Store(nil)
}

// HasEntry reports whether an interception entry is installed.
func (m *Method) HasEntry() bool {
	return m.entry.Load() != nil
}

// CtorBody is the original implementation of a constructor. It
// initializes the receiver in place and has no return value.
type CtorBody func(this *Object, args []any) error

// Constructor initializes new instances of a class. Identity is
// pointer identity.
type Constructor struct {
	class *Class
	arity int
	flags Flags
	body  CtorBody

	entry atomic.Pointer[Entry]
}

// Class returns the declaring class.
func (c *Constructor) Class() *Class { return c.class }

// Arity returns the declared argument count, or VariadicArity.
func (c *Constructor) Arity() int { return c.arity }

// Flags returns the constructor flags.
func (c *Constructor) Flags() Flags { return c.flags }

// QualifiedName returns "Class.<init>" for diagnostics.
func (c *Constructor) QualifiedName() string {
	return c.class.name + ".<init>"
}

func (c *Constructor) checkCall(this *Object, args []any) error {
	if this == nil {
		return fmt.Errorf("%w: %s called without instance", ErrIllegalArgument, c.QualifiedName())
	}
	if c.arity != VariadicArity && len(args) != c.arity {
		return fmt.Errorf("%w: %s wants %d args, got %d", ErrIllegalArgument, c.QualifiedName(), c.arity, len(args))
	}
	return nil
}

// Invoke runs the constructor on an already-allocated instance,
// entering the interception entry if one is installed.
func (c *Constructor) Invoke(this *Object, args []any) error {
	if err := c.checkCall(this, args); err != nil {
		return err
	}
	if e := c.entry.Load(); e != nil {
		_, err := (*e)(this, args)
		return err
	}
	return c.body(this, args)
}

// CallBody runs the original constructor body, bypassing any
// interception entry.
func (c *Constructor) CallBody(this *Object, args []any) error {
	if err := c.checkCall(this, args); err != nil {
		return err
	}
	return c.body(this, args)
}

// SetEntry installs an interception entry, replacing any previous one.
func (c *Constructor) SetEntry(e Entry) error {
	if c.flags&FlagUnpatchable != 0 {
		return fmt.Errorf("%w: %s", ErrUnpatchable, c.QualifiedName())
	}
	c.entry.Store(&e)
	return nil
}

// ClearEntry removes the interception entry.
func (c *Constructor) ClearEntry() {
	c.entry.Store(nil)
}

// HasEntry reports whether an interception entry is installed.
func (c *Constructor) HasEntry() bool {
	return c.entry.Load() != nil
}

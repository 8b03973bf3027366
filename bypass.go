package hookchain

import (
	"fmt"

	"github.com/dshills/hookchain/runtime"
)

// Framework-level bypass invocation. These primitives never enter any
// interception chain; argument problems surface as the runtime
// package's errors.

// checkBypassMethod rejects methods the bypass primitives must not
// run: nil, framework-internal, and reflective entry points. Abstract
// methods and arity mismatches are rejected downstream by the runtime.
func checkBypassMethod(m *runtime.Method) error {
	switch {
	case m == nil:
		return fmt.Errorf("%w: nil method", runtime.ErrIllegalArgument)
	case m.Flags()&runtime.FlagInternal != 0:
		return fmt.Errorf("%w: %s is framework internal", runtime.ErrIllegalArgument, m.QualifiedName())
	case m.Flags()&runtime.FlagReflective != 0:
		return fmt.Errorf("%w: %s is a reflective entry point", runtime.ErrIllegalArgument, m.QualifiedName())
	}
	return nil
}

// checkBypassCtor is checkBypassMethod for constructors.
func checkBypassCtor(c *runtime.Constructor) error {
	switch {
	case c == nil:
		return fmt.Errorf("%w: nil constructor", runtime.ErrIllegalArgument)
	case c.Flags()&runtime.FlagInternal != 0:
		return fmt.Errorf("%w: %s is framework internal", runtime.ErrIllegalArgument, c.QualifiedName())
	case c.Flags()&runtime.FlagReflective != 0:
		return fmt.Errorf("%w: %s is a reflective entry point", runtime.ErrIllegalArgument, c.QualifiedName())
	}
	return nil
}

// InvokeOrigin invokes a method's original implementation with full
// virtual resolution, bypassing every hooker.
func (fw *Framework) InvokeOrigin(m *runtime.Method, this *runtime.Object, args ...any) (any, error) {
	if err := checkBypassMethod(m); err != nil {
		return nil, err
	}
	vm, err := m.Virtual(this)
	if err != nil {
		return nil, err
	}
	return vm.CallBody(this, args)
}

// InvokeConstructorOrigin runs a constructor's original body on an
// existing instance, bypassing every hooker.
func (fw *Framework) InvokeConstructorOrigin(c *runtime.Constructor, this *runtime.Object, args ...any) error {
	if err := checkBypassCtor(c); err != nil {
		return err
	}
	return c.CallBody(this, args)
}

// NewInstanceOrigin allocates and constructs an instance of the
// constructor's class, bypassing every hooker.
func (fw *Framework) NewInstanceOrigin(c *runtime.Constructor, args ...any) (*runtime.Object, error) {
	if err := checkBypassCtor(c); err != nil {
		return nil, err
	}
	cls := c.Class()
	if err := cls.EnsureInitialized(); err != nil {
		return nil, err
	}
	obj := cls.Alloc()
	if err := c.CallBody(obj, args); err != nil {
		return nil, err
	}
	return obj, nil
}

// InvokeSpecial invokes exactly the given method on the receiver with
// no virtual resolution, the way a subclass body calls its super
// method. Interception entries are bypassed; abstract methods are
// rejected.
func (fw *Framework) InvokeSpecial(m *runtime.Method, this *runtime.Object, args ...any) (any, error) {
	if err := checkBypassMethod(m); err != nil {
		return nil, err
	}
	return m.CallBody(this, args)
}

// InvokeConstructorSpecial runs the given constructor, typically a
// superclass constructor, on an already-allocated instance with no
// interception.
func (fw *Framework) InvokeConstructorSpecial(c *runtime.Constructor, this *runtime.Object, args ...any) error {
	if err := checkBypassCtor(c); err != nil {
		return err
	}
	return c.CallBody(this, args)
}

// NewInstanceSpecial allocates an instance of sub and initializes it
// with a constructor declared on one of its superclasses, bypassing
// sub's own constructor and every hooker.
func (fw *Framework) NewInstanceSpecial(c *runtime.Constructor, sub *runtime.Class, args ...any) (*runtime.Object, error) {
	if err := checkBypassCtor(c); err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: nil class", runtime.ErrIllegalArgument)
	}
	if !sub.IsSubclassOf(c.Class()) {
		return nil, fmt.Errorf("%w: %s is not a %s", runtime.ErrIllegalArgument, sub.Name(), c.Class().Name())
	}
	if err := sub.EnsureInitialized(); err != nil {
		return nil, err
	}
	obj := sub.Alloc()
	if err := c.CallBody(obj, args); err != nil {
		return nil, err
	}
	return obj, nil
}

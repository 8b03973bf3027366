package runtime

import "errors"

// Runtime errors.
var (
	// ErrIllegalArgument indicates a receiver or argument mismatch.
	ErrIllegalArgument = errors.New("runtime: illegal argument")

	// ErrAbstract indicates an attempt to invoke an abstract body.
	ErrAbstract = errors.New("runtime: method is abstract")

	// ErrNoSuchMethod indicates the method is not defined on the class
	// or any of its superclasses.
	ErrNoSuchMethod = errors.New("runtime: no such method")

	// ErrNoConstructor indicates the class has no constructor for the
	// given arguments.
	ErrNoConstructor = errors.New("runtime: no such constructor")

	// ErrDuplicateMethod indicates the method name is already declared
	// on the class.
	ErrDuplicateMethod = errors.New("runtime: duplicate method")

	// ErrDuplicateClass indicates the class name is already defined.
	ErrDuplicateClass = errors.New("runtime: duplicate class")

	// ErrUnpatchable indicates the method cannot accept an
	// interception entry.
	ErrUnpatchable = errors.New("runtime: method is not patchable")
)

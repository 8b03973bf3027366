package runtime

import (
	"fmt"
	"sync"
)

// Object is an instance of a Class. Field access is synchronized;
// everything else about an object is immutable after construction.
type Object struct {
	class *Class

	mu     sync.RWMutex
	fields map[string]any
}

func newObject(c *Class) *Object {
	return &Object{class: c, fields: make(map[string]any)}
}

// Class returns the object's dynamic class.
func (o *Object) Class() *Class { return o.class }

// Get returns a field value.
func (o *Object) Get(name string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.fields[name]
	return v, ok
}

// Set stores a field value.
func (o *Object) Set(name string, v any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fields[name] = v
}

// Call invokes a method by name with virtual resolution from the
// object's dynamic class. This is the normal call path of the host
// program; hooked methods are intercepted here.
func (o *Object) Call(name string, args ...any) (any, error) {
	m, ok := o.class.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchMethod, o.class.name, name)
	}
	if m.IsStatic() {
		return m.Invoke(nil, args)
	}
	return m.Invoke(o, args)
}

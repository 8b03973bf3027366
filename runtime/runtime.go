package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// Runtime is a named class registry. It exists so loaders (module
// manifests, the command-line harness) can resolve classes by name.
type Runtime struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

// New creates an empty runtime.
func New() *Runtime {
	return &Runtime{classes: make(map[string]*Class)}
}

// Define registers a class by name.
func (r *Runtime) Define(c *Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[c.name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateClass, c.name)
	}
	r.classes[c.name] = c
	return nil
}

// Lookup finds a class by name.
func (r *Runtime) Lookup(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[name]
	return c, ok
}

// Classes returns all defined class names, sorted.
func (r *Runtime) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

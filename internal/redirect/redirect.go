// Package redirect is the boundary to the mechanism that reroutes a
// target's execution into the dispatch chain.
//
// In a native deployment this layer would patch compiled entry points;
// here it installs interception entries on runtime methods and
// constructors. Installation can fail independently of argument
// validation, which is the "installation failure" error kind of the
// hooking API. The layer also accepts best-effort deoptimization
// requests that widen which call sites reach the dispatcher; the
// dispatch protocol itself never depends on them.
package redirect

import (
	"sync"

	"github.com/dshills/hookchain/runtime"
)

// Layer routes hooked targets into dispatch entries and tracks
// deoptimization advisories.
type Layer struct {
	mu    sync.Mutex
	deopt map[any]bool
}

// New creates a redirection layer.
func New() *Layer {
	return &Layer{deopt: make(map[any]bool)}
}

// InstallMethod routes every invocation of m into entry. Replaces any
// previous routing for the same method.
func (l *Layer) InstallMethod(m *runtime.Method, entry runtime.Entry) error {
	return m.SetEntry(entry)
}

// ReleaseMethod restores m's original execution path.
func (l *Layer) ReleaseMethod(m *runtime.Method) {
	m.ClearEntry()
}

// InstallCtor routes every invocation of c into entry.
func (l *Layer) InstallCtor(c *runtime.Constructor, entry runtime.Entry) error {
	return c.SetEntry(entry)
}

// ReleaseCtor restores c's original execution path.
func (l *Layer) ReleaseCtor(c *runtime.Constructor) {
	c.ClearEntry()
}

// Deoptimize asks the layer to defeat inlining of the target so
// intercepted call sites actually reach the dispatcher. The request is
// advisory: the return value reports whether it was accepted, not
// whether inlining was defeated everywhere. Requests for targets the
// layer cannot instrument are rejected.
func (l *Layer) Deoptimize(target any) bool {
	switch t := target.(type) {
	case *runtime.Method:
		if t == nil || t.IsAbstract() || t.Flags()&runtime.FlagUnpatchable != 0 {
			return false
		}
	case *runtime.Constructor:
		if t == nil || t.Flags()&runtime.FlagUnpatchable != 0 {
			return false
		}
	default:
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.deopt[target] = true
	return true
}

// Deoptimized reports whether a deoptimization request was accepted
// for the target.
func (l *Layer) Deoptimized(target any) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deopt[target]
}

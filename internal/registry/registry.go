// Package registry maintains the ordered set of installed hookers for
// one target.
//
// The registry is built for many concurrent readers and rare writers:
// writers serialize on a mutex and publish a freshly built, immutable
// slice through an atomic pointer; readers load that pointer without
// locking. A dispatch that has taken a snapshot keeps it for the whole
// call, so concurrent installs and revocations never change which
// hookers an in-flight invocation sees.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/dshills/hookchain/hook"
)

// global registration id source. Monotonic across all registries.
var nextID atomic.Uint64

// Registration associates one hooker with one target at a stable
// insertion order. It doubles as the revocation token: Remove is
// idempotent through the registration's revoked flag.
type Registration struct {
	id       uint64
	seq      uint64
	priority int
	hooker   hook.Hooker

	revoked atomic.Bool
}

// ID returns the unique registration id.
func (r *Registration) ID() uint64 { return r.id }

// Priority returns the hooker's priority, captured at install time.
func (r *Registration) Priority() int { return r.priority }

// Hooker returns the installed hooker.
func (r *Registration) Hooker() hook.Hooker { return r.hooker }

// Revoked reports whether the registration has been removed.
func (r *Registration) Revoked() bool { return r.revoked.Load() }

// Registry is the per-target ordered set of active registrations.
type Registry struct {
	mu      sync.Mutex // serializes writers
	nextSeq uint64

	snap atomic.Pointer[[]*Registration]
}

// New creates an empty registry.
func New() *Registry {
	r := &Registry{}
	empty := make([]*Registration, 0)
	r.snap.Store(&empty)
	return r
}

// Add installs a hooker and returns its registration. The priority is
// captured once at install time; the order is priority descending with
// ties broken by insertion sequence ascending, which makes dispatch a
// strict LIFO nesting.
func (r *Registry) Add(h hook.Hooker) *Registration {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSeq++
	reg := &Registration{
		id:       nextID.Add(1),
		seq:      r.nextSeq,
		priority: h.Priority(),
		hooker:   h,
	}

	old := *r.snap.Load()
	next := make([]*Registration, 0, len(old)+1)

	// Insert keeping (priority desc, seq asc). Equal-priority entries
	// installed earlier stay ahead.
	inserted := false
	for _, e := range old {
		if !inserted && reg.priority > e.priority {
			next = append(next, reg)
			inserted = true
		}
		next = append(next, e)
	}
	if !inserted {
		next = append(next, reg)
	}

	r.snap.Store(&next)
	return reg
}

// Remove revokes a registration. The first call removes it and returns
// true; later calls are no-ops returning false. After Remove returns,
// no new snapshot contains the registration; dispatches that
// snapshotted earlier still finish with it.
func (r *Registry) Remove(reg *Registration) bool {
	if reg == nil || reg.revoked.Swap(true) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.snap.Load()
	next := make([]*Registration, 0, len(old))
	for _, e := range old {
		if e != reg {
			next = append(next, e)
		}
	}
	r.snap.Store(&next)
	return true
}

// Snapshot returns the current ordered registration list. The returned
// slice is immutable; callers must not modify it.
func (r *Registry) Snapshot() []*Registration {
	return *r.snap.Load()
}

// Len returns the number of active registrations.
func (r *Registry) Len() int {
	return len(*r.snap.Load())
}

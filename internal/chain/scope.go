package chain

// scopeKind selects which hookers a dispatch traverses.
type scopeKind int

const (
	scopeAll scopeKind = iota
	scopeBelow
	scopeNone
)

// Scope is the priority cursor of one dispatch. The full chain runs
// under All; Below(p) runs only hookers with priority strictly below p
// (handle-scoped origin invocation); None runs the body alone.
type Scope struct {
	kind  scopeKind
	limit int
}

// All traverses every hooker in the snapshot.
func All() Scope { return Scope{kind: scopeAll} }

// Below traverses only hookers with priority strictly below limit.
// Hookers at the limit priority, including the one that initiated the
// scoped call, never rerun.
func Below(limit int) Scope { return Scope{kind: scopeBelow, limit: limit} }

// None traverses no hookers; the dispatch degenerates to the body.
func None() Scope { return Scope{kind: scopeNone} }

// includes reports whether a hooker at the given priority is part of
// this dispatch.
func (s Scope) includes(priority int) bool {
	switch s.kind {
	case scopeBelow:
		return priority < s.limit
	case scopeNone:
		return false
	default:
		return true
	}
}

// Package chain executes the two-phase interception protocol for one
// invocation of a hooked target.
//
// A dispatch walks a registry snapshot in before-order (priority
// descending, ties by insertion order), runs the original body unless
// a before callback skipped it, then walks the hookers whose before
// phase actually ran in exact reverse order for the after phase. The
// chain is a stack, not a queue: the highest-priority hooker wraps all
// lower-priority ones.
//
// Every call gets its own frame on the calling goroutine's stack, so
// dispatch is reentrant; a callback may trigger further hooked calls,
// including recursively on the same target.
package chain

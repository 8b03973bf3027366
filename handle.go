package hookchain

import (
	"github.com/dshills/hookchain/internal/chain"
	"github.com/dshills/hookchain/internal/registry"
	"github.com/dshills/hookchain/runtime"
	"github.com/dshills/hookchain/xlog"
)

// Handle is the common surface of method and constructor hook handles.
type Handle interface {
	// Unhook revokes the registration. Idempotent; concurrent
	// dispatches that already snapshotted the chain finish with the
	// hooker included.
	Unhook()
}

// MethodHandle represents one hooker installed on one method. It is
// the revocation token and the anchor for handle-scoped origin
// invocation.
type MethodHandle struct {
	fw     *Framework
	method *runtime.Method
	reg    *registry.Registry
	r      *registry.Registration
}

// Target returns the hooked method.
func (h *MethodHandle) Target() *runtime.Method { return h.method }

// Unhook revokes this registration. The first call removes the hooker;
// later calls are no-ops. When the last registration on the method is
// revoked, the method's execution path is restored.
func (h *MethodHandle) Unhook() {
	if !h.reg.Remove(h.r) {
		return
	}
	h.fw.releaseMethod(h.method, h.reg)
	h.fw.sink.Log(xlog.LevelDebug, FrameworkName, "unhooked "+h.method.QualifiedName(), nil)
}

// InvokeOrigin invokes the hooked method from inside this hooker's
// callbacks, running only the part of the chain below this hooker's
// priority. Hookers at or above this priority, including this one, do
// not rerun. The chain membership is re-snapshotted at call time.
func (h *MethodHandle) InvokeOrigin(this *runtime.Object, args ...any) (any, error) {
	return h.fw.dispatchMethod(h.method, h.reg.Snapshot(), chain.Below(h.r.Priority()), this, args)
}

// CtorHandle represents one hooker installed on one constructor.
type CtorHandle struct {
	fw   *Framework
	ctor *runtime.Constructor
	reg  *registry.Registry
	r    *registry.Registration
}

// Target returns the hooked constructor.
func (h *CtorHandle) Target() *runtime.Constructor { return h.ctor }

// Unhook revokes this registration. Idempotent.
func (h *CtorHandle) Unhook() {
	if !h.reg.Remove(h.r) {
		return
	}
	h.fw.releaseCtor(h.ctor, h.reg)
	h.fw.sink.Log(xlog.LevelDebug, FrameworkName, "unhooked "+h.ctor.QualifiedName(), nil)
}

// InvokeOrigin runs the hooked constructor on an existing instance,
// traversing only the chain below this hooker's priority.
func (h *CtorHandle) InvokeOrigin(this *runtime.Object, args ...any) error {
	return h.fw.dispatchCtor(h.ctor, h.reg.Snapshot(), chain.Below(h.r.Priority()), this, args)
}

// NewInstanceOrigin allocates and constructs a new instance of the
// hooked constructor's class, traversing only the chain below this
// hooker's priority.
func (h *CtorHandle) NewInstanceOrigin(args ...any) (*runtime.Object, error) {
	cls := h.ctor.Class()
	if err := cls.EnsureInitialized(); err != nil {
		return nil, err
	}
	obj := cls.Alloc()
	if err := h.InvokeOrigin(obj, args...); err != nil {
		return nil, err
	}
	return obj, nil
}

// Package hookchain is a method interception framework. Hookers
// register against methods, constructors, and class initializers of a
// runtime class model; every invocation of a hooked target is routed
// through a priority-ordered chain of before and after callbacks that
// can inspect and replace arguments, results, and errors, or bypass
// the original implementation entirely.
//
// The framework facade ties the pieces together: the per-target hooker
// registries, the dispatch chain, the redirection layer that reroutes
// target execution, and the collaborator services (logging, remote
// preferences, remote files, descriptor parsing) exposed to hooker
// modules.
package hookchain

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dshills/hookchain/binparse"
	"github.com/dshills/hookchain/hook"
	"github.com/dshills/hookchain/internal/chain"
	"github.com/dshills/hookchain/internal/redirect"
	"github.com/dshills/hookchain/internal/registry"
	"github.com/dshills/hookchain/remote"
	"github.com/dshills/hookchain/runtime"
	"github.com/dshills/hookchain/xlog"
)

// Framework identity reported to hooker modules.
const (
	FrameworkName        = "hookchain"
	FrameworkVersion     = "1.2.0"
	FrameworkVersionCode = 120

	// APIVersion is the hooker-facing API revision.
	APIVersion = 100
)

// Capability is a bit set of optional framework features.
type Capability uint64

const (
	// CapDynamicAPI means classes and methods may be defined at
	// runtime. Always set for the in-process runtime model.
	CapDynamicAPI Capability = 1 << iota

	// CapRemote means the remote preference or file collaborators
	// are configured.
	CapRemote

	// CapSystem means the host granted system scope to modules.
	CapSystem
)

// Framework is the hooking facade. It is safe for concurrent use.
type Framework struct {
	mu         sync.Mutex
	methodRegs map[*runtime.Method]*registry.Registry
	ctorRegs   map[*runtime.Constructor]*registry.Registry

	redirect   *redirect.Layer
	dispatcher *chain.Dispatcher
	metrics    *chain.Metrics

	sink   xlog.Sink
	prefs  remote.PrefStore
	files  remote.Files
	parser binparse.Parser
	caps   Capability
}

// Option configures a Framework.
type Option func(*Framework)

// WithLogSink routes framework and module logging to s.
func WithLogSink(s xlog.Sink) Option {
	return func(fw *Framework) { fw.sink = s }
}

// WithPrefStore configures the remote preference collaborator.
func WithPrefStore(ps remote.PrefStore) Option {
	return func(fw *Framework) { fw.prefs = ps }
}

// WithPrefsDir configures directory-backed remote preferences.
func WithPrefsDir(dir string) Option {
	return WithPrefStore(remote.NewDirPrefStore(dir))
}

// WithFiles configures the remote file collaborator.
func WithFiles(f remote.Files) Option {
	return func(fw *Framework) { fw.files = f }
}

// WithFilesDir configures directory-backed remote files.
func WithFilesDir(dir string) Option {
	return WithFiles(remote.NewDirFiles(dir))
}

// WithParser replaces the default JSON descriptor parser.
func WithParser(p binparse.Parser) Option {
	return func(fw *Framework) { fw.parser = p }
}

// WithoutMetrics disables the dispatch metrics collector.
func WithoutMetrics() Option {
	return func(fw *Framework) { fw.metrics = nil }
}

// WithCapabilities grants additional capability bits, such as
// CapSystem when the host runs modules with system scope.
func WithCapabilities(c Capability) Option {
	return func(fw *Framework) { fw.caps |= c }
}

// New creates a framework.
func New(opts ...Option) *Framework {
	fw := &Framework{
		methodRegs: make(map[*runtime.Method]*registry.Registry),
		ctorRegs:   make(map[*runtime.Constructor]*registry.Registry),
		redirect:   redirect.New(),
		metrics:    chain.NewMetrics(),
		sink:       xlog.NewSlogSink(nil),
		parser:     binparse.NewJSONParser(),
		caps:       CapDynamicAPI,
	}
	for _, opt := range opts {
		opt(fw)
	}
	if fw.prefs != nil || fw.files != nil {
		fw.caps |= CapRemote
	}

	var dopts []chain.Option
	if fw.metrics != nil {
		dopts = append(dopts, chain.WithMetrics(fw.metrics))
	}
	fw.dispatcher = chain.New(dopts...)
	return fw
}

// Name returns the framework name.
func (fw *Framework) Name() string { return FrameworkName }

// Version returns the framework version string.
func (fw *Framework) Version() string { return FrameworkVersion }

// VersionCode returns the numeric framework version.
func (fw *Framework) VersionCode() int { return FrameworkVersionCode }

// Capabilities returns the capability bits of this framework.
func (fw *Framework) Capabilities() Capability { return fw.caps }

// HasCapability reports whether every bit of c is granted.
func (fw *Framework) HasCapability(c Capability) bool {
	return fw.caps&c == c
}

// Hook installs a hooker on a method. The first hooker on a method
// routes the method's execution into the dispatch chain; an
// installation failure there is reported as a *HookFailedError.
// Invalid targets and hookers are rejected up front with
// ErrNotHookable and ErrInvalidHooker.
func (fw *Framework) Hook(m *runtime.Method, h hook.Hooker) (*MethodHandle, error) {
	if h == nil {
		return nil, ErrInvalidHooker
	}
	if err := checkMethodTarget(m); err != nil {
		return nil, err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	reg := fw.methodRegs[m]
	if reg == nil {
		reg = registry.New()
		if err := fw.redirect.InstallMethod(m, fw.methodEntry(m, reg)); err != nil {
			return nil, &HookFailedError{Target: m.QualifiedName(), Err: err}
		}
		fw.methodRegs[m] = reg
	}
	r := reg.Add(h)

	fw.sink.Log(xlog.LevelDebug, FrameworkName, "hooked "+m.QualifiedName(), nil)
	return &MethodHandle{fw: fw, method: m, reg: reg, r: r}, nil
}

// HookConstructor installs a hooker on a class constructor.
func (fw *Framework) HookConstructor(c *runtime.Constructor, h hook.Hooker) (*CtorHandle, error) {
	if h == nil {
		return nil, ErrInvalidHooker
	}
	if err := checkCtorTarget(c); err != nil {
		return nil, err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	reg := fw.ctorRegs[c]
	if reg == nil {
		reg = registry.New()
		if err := fw.redirect.InstallCtor(c, fw.ctorEntry(c, reg)); err != nil {
			return nil, &HookFailedError{Target: c.QualifiedName(), Err: err}
		}
		fw.ctorRegs[c] = reg
	}
	r := reg.Add(h)

	fw.sink.Log(xlog.LevelDebug, FrameworkName, "hooked "+c.QualifiedName(), nil)
	return &CtorHandle{fw: fw, ctor: c, reg: reg, r: r}, nil
}

// HookClassInitializer installs a hooker on the class initializer.
// Initializers run at most once; a hook installed after the class has
// initialized never fires.
func (fw *Framework) HookClassInitializer(cls *runtime.Class, h hook.Hooker) (*MethodHandle, error) {
	if cls == nil {
		return nil, ErrNotHookable
	}
	init := cls.Initializer()
	if init == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoInitializer, cls.Name())
	}
	if cls.Initialized() {
		fw.sink.Log(xlog.LevelWarn, FrameworkName,
			cls.Name()+" already initialized, initializer hook will not fire", nil)
	}
	return fw.Hook(init, h)
}

// checkMethodTarget rejects targets the chain must never intercept.
func checkMethodTarget(m *runtime.Method) error {
	switch {
	case m == nil:
		return ErrNotHookable
	case m.IsAbstract():
		return fmt.Errorf("%w: %s is abstract", ErrNotHookable, m.QualifiedName())
	case m.Flags()&runtime.FlagInternal != 0:
		return fmt.Errorf("%w: %s is framework internal", ErrNotHookable, m.QualifiedName())
	case m.Flags()&runtime.FlagReflective != 0:
		return fmt.Errorf("%w: %s is a reflective entry point", ErrNotHookable, m.QualifiedName())
	}
	return nil
}

// checkCtorTarget is checkMethodTarget for constructors.
func checkCtorTarget(c *runtime.Constructor) error {
	switch {
	case c == nil:
		return ErrNotHookable
	case c.Flags()&runtime.FlagInternal != 0:
		return fmt.Errorf("%w: %s is framework internal", ErrNotHookable, c.QualifiedName())
	case c.Flags()&runtime.FlagReflective != 0:
		return fmt.Errorf("%w: %s is a reflective entry point", ErrNotHookable, c.QualifiedName())
	}
	return nil
}

// methodEntry builds the interception entry for one method. The entry
// snapshots the registry at call time; the snapshot is held for the
// whole dispatch.
func (fw *Framework) methodEntry(m *runtime.Method, reg *registry.Registry) runtime.Entry {
	return func(this *runtime.Object, args []any) (any, error) {
		return fw.dispatchMethod(m, reg.Snapshot(), chain.All(), this, args)
	}
}

// ctorEntry builds the interception entry for one constructor.
func (fw *Framework) ctorEntry(c *runtime.Constructor, reg *registry.Registry) runtime.Entry {
	return func(this *runtime.Object, args []any) (any, error) {
		return nil, fw.dispatchCtor(c, reg.Snapshot(), chain.All(), this, args)
	}
}

func (fw *Framework) dispatchMethod(m *runtime.Method, snap []*registry.Registration, scope chain.Scope, this *runtime.Object, args []any) (any, error) {
	call := chain.Call{
		Target: m.QualifiedName(),
		This:   objAny(this),
		Args:   args,
		Body: func(this any, args []any) (any, error) {
			return m.CallBody(asObject(this), args)
		},
	}
	return fw.dispatcher.Dispatch(call, snap, scope)
}

func (fw *Framework) dispatchCtor(c *runtime.Constructor, snap []*registry.Registration, scope chain.Scope, this *runtime.Object, args []any) error {
	call := chain.Call{
		Target: c.QualifiedName(),
		Ctor:   true,
		This:   objAny(this),
		Args:   args,
		Body: func(this any, args []any) (any, error) {
			return nil, c.CallBody(asObject(this), args)
		},
	}
	_, err := fw.dispatcher.Dispatch(call, snap, scope)
	return err
}

// releaseMethod drops a method's registry and interception entry once
// its last registration is revoked. In-flight dispatches finish on
// their snapshots.
func (fw *Framework) releaseMethod(m *runtime.Method, reg *registry.Registry) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.methodRegs[m] == reg && reg.Len() == 0 {
		fw.redirect.ReleaseMethod(m)
		delete(fw.methodRegs, m)
	}
}

// releaseCtor is releaseMethod for constructors.
func (fw *Framework) releaseCtor(c *runtime.Constructor, reg *registry.Registry) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.ctorRegs[c] == reg && reg.Len() == 0 {
		fw.redirect.ReleaseCtor(c)
		delete(fw.ctorRegs, c)
	}
}

// Deoptimize asks the redirection layer to widen which call sites of
// the target reach the dispatcher. Advisory; the dispatch protocol is
// correct without it. target must be a *runtime.Method or
// *runtime.Constructor the layer can instrument.
func (fw *Framework) Deoptimize(target any) bool {
	return fw.redirect.Deoptimize(target)
}

// Deoptimized reports whether a deoptimization request for the target
// was accepted.
func (fw *Framework) Deoptimized(target any) bool {
	return fw.redirect.Deoptimized(target)
}

// Log writes to the framework log sink on behalf of a module.
func (fw *Framework) Log(level xlog.Level, tag, msg string, err error) {
	fw.sink.Log(level, tag, msg, err)
}

// RemotePreferences opens a read-only remote preference group.
// Returns remote.ErrUnsupported when no preference collaborator is
// configured.
func (fw *Framework) RemotePreferences(group string) (remote.Prefs, error) {
	if fw.prefs == nil {
		return nil, remote.ErrUnsupported
	}
	return fw.prefs.Group(group)
}

// ListRemoteFiles lists the files shared with modules. Returns
// remote.ErrUnsupported when no file collaborator is configured.
func (fw *Framework) ListRemoteFiles() ([]string, error) {
	if fw.files == nil {
		return nil, remote.ErrUnsupported
	}
	return fw.files.List()
}

// OpenRemoteFile opens a shared file for reading.
func (fw *Framework) OpenRemoteFile(name string) (io.ReadCloser, error) {
	if fw.files == nil {
		return nil, remote.ErrUnsupported
	}
	return fw.files.Open(name)
}

// ParseDescriptor parses a class descriptor document. includeMeta
// retains per-class metadata, which costs memory on large documents.
func (fw *Framework) ParseDescriptor(data []byte, includeMeta bool) (*binparse.Descriptor, error) {
	return fw.parser.Parse(data, includeMeta)
}

// Stats is a point-in-time summary of dispatch activity.
type Stats struct {
	Dispatches      uint64
	Throws          uint64
	Skips           uint64
	Panics          uint64
	Targets         int
	AverageDuration time.Duration
}

// Stats summarizes dispatch activity. Zero when metrics are disabled.
func (fw *Framework) Stats() Stats {
	if fw.metrics == nil {
		return Stats{}
	}
	s := fw.metrics.Snapshot()
	return Stats{
		Dispatches:      s.TotalDispatches,
		Throws:          s.TotalThrows,
		Skips:           s.TotalSkips,
		Panics:          s.TotalPanics,
		Targets:         s.TargetCount,
		AverageDuration: s.AverageDuration,
	}
}

// objAny boxes a receiver for the chain, keeping nil receivers as
// untyped nil so static calls present a nil This to hookers.
func objAny(o *runtime.Object) any {
	if o == nil {
		return nil
	}
	return o
}

// asObject unboxes a chain receiver.
func asObject(v any) *runtime.Object {
	if v == nil {
		return nil
	}
	o, _ := v.(*runtime.Object)
	return o
}

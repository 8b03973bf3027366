package hookchain

import (
	"fmt"

	"github.com/dshills/hookchain/internal/module"
	"github.com/dshills/hookchain/luahook"
	"github.com/dshills/hookchain/remote"
	"github.com/dshills/hookchain/runtime"
	"github.com/dshills/hookchain/xlog"
)

// LoadedModule is one hooker module loaded from disk: its manifest,
// the compiled Lua hookers, and the handles of every installed hook.
type LoadedModule struct {
	fw       *Framework
	manifest *module.Manifest
	handles  []Handle
	hookers  []*luahook.Hooker
}

// Name returns the module name.
func (lm *LoadedModule) Name() string { return lm.manifest.Name }

// Version returns the module version.
func (lm *LoadedModule) Version() string { return lm.manifest.Version }

// Group returns the module's remote preference group.
func (lm *LoadedModule) Group() string { return lm.manifest.Group() }

// Handles returns the installed hook handles, in manifest order.
func (lm *LoadedModule) Handles() []Handle { return lm.handles }

// Effective renders the module manifest with defaults applied.
func (lm *LoadedModule) Effective() ([]byte, error) {
	return lm.manifest.Effective()
}

// Prefs opens the module's remote preference group.
func (lm *LoadedModule) Prefs() (remote.Prefs, error) {
	return lm.fw.RemotePreferences(lm.manifest.Group())
}

// Unload revokes every hook the module installed and releases its
// script states. Idempotent.
func (lm *LoadedModule) Unload() {
	for _, h := range lm.handles {
		h.Unhook()
	}
	for _, h := range lm.hookers {
		_ = h.Close()
	}
	lm.fw.sink.Log(xlog.LevelInfo, lm.manifest.Name, "module unloaded", nil)
}

// LoadModule loads a hooker module from a directory: it reads and
// validates the manifest, compiles each bound Lua script into a
// hooker, and installs it on the named target resolved against rt.
// On any failure the hooks already installed are revoked and the
// error is returned.
func (fw *Framework) LoadModule(rt *runtime.Runtime, dir string) (*LoadedModule, error) {
	man, err := module.Load(dir)
	if err != nil {
		return nil, err
	}

	lm := &LoadedModule{fw: fw, manifest: man}
	for i, b := range man.Hooks {
		if err := fw.loadBinding(rt, man, lm, b); err != nil {
			lm.Unload()
			return nil, fmt.Errorf("module %s hook %d: %w", man.Name, i, err)
		}
	}

	fw.sink.Log(xlog.LevelInfo, man.Name, "module loaded, "+man.Version, nil)
	return lm, nil
}

// loadBinding compiles and installs one manifest hook binding.
func (fw *Framework) loadBinding(rt *runtime.Runtime, man *module.Manifest, lm *LoadedModule, b module.HookBinding) error {
	cls, ok := rt.Lookup(b.Class)
	if !ok {
		return fmt.Errorf("%w: unknown class %s", ErrNotHookable, b.Class)
	}

	var opts []luahook.Option
	if b.Priority != 0 {
		opts = append(opts, luahook.WithPriority(b.Priority))
	}
	hooker, err := luahook.NewFromFile(man.Name+"/"+b.Script, man.ScriptPath(b), opts...)
	if err != nil {
		return err
	}
	lm.hookers = append(lm.hookers, hooker)

	var handle Handle
	switch b.Method {
	case "":
		ctor := cls.Constructor()
		if ctor == nil {
			return fmt.Errorf("%w: %s has no constructor", ErrNotHookable, cls.Name())
		}
		handle, err = fw.HookConstructor(ctor, hooker)
	case runtime.InitializerName:
		handle, err = fw.HookClassInitializer(cls, hooker)
	default:
		m, ok := cls.Resolve(b.Method)
		if !ok {
			return fmt.Errorf("%w: no method %s.%s", ErrNotHookable, cls.Name(), b.Method)
		}
		handle, err = fw.Hook(m, hooker)
	}
	if err != nil {
		return err
	}
	lm.handles = append(lm.handles, handle)
	return nil
}

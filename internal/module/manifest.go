// Package module loads hooker module manifests.
//
// A module is a directory with a manifest.json describing the module
// and binding Lua hooker scripts to runtime targets:
//
//	{
//	  "name": "tracer",
//	  "version": "1.0.0",
//	  "description": "Traces Account calls",
//	  "hooks": [
//	    {"class": "Account", "method": "deposit",
//	     "script": "deposit.lua", "priority": 100}
//	  ]
//	}
package module

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/sjson"
)

// ManifestName is the manifest file name inside a module directory.
const ManifestName = "manifest.json"

// Manifest errors.
var (
	// ErrNoManifest indicates the module directory has no manifest.
	ErrNoManifest = errors.New("module: manifest not found")

	// ErrInvalidManifest indicates the manifest failed validation.
	ErrInvalidManifest = errors.New("module: invalid manifest")
)

// namePattern constrains module names to lowercase words separated by
// single hyphens.
var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// HookBinding binds one Lua script to one target.
type HookBinding struct {
	// Class is the runtime class name.
	Class string `json:"class"`

	// Method is the method name. Empty means the class constructor;
	// "<clinit>" means the class initializer.
	Method string `json:"method"`

	// Script is the Lua file path, relative to the module directory.
	Script string `json:"script"`

	// Priority overrides the script's own priority when non-zero.
	Priority int `json:"priority"`
}

// Manifest describes one hooker module.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Author      string `json:"author"`

	// PrefGroup is the remote preference group the module reads.
	// Defaults to the module name.
	PrefGroup string `json:"prefGroup"`

	Hooks []HookBinding `json:"hooks"`

	// path is the module directory the manifest was loaded from.
	path string
}

// Load reads and validates the manifest in a module directory.
func Load(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoManifest, dir)
		}
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	m.path = dir

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest for structural problems.
func (m *Manifest) Validate() error {
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("%w: bad name %q", ErrInvalidManifest, m.Name)
	}
	if m.Version == "" {
		return fmt.Errorf("%w: %s has no version", ErrInvalidManifest, m.Name)
	}
	if len(m.Hooks) == 0 {
		return fmt.Errorf("%w: %s declares no hooks", ErrInvalidManifest, m.Name)
	}
	for i, h := range m.Hooks {
		if h.Class == "" {
			return fmt.Errorf("%w: %s hook %d has no class", ErrInvalidManifest, m.Name, i)
		}
		if h.Script == "" {
			return fmt.Errorf("%w: %s hook %d has no script", ErrInvalidManifest, m.Name, i)
		}
		if !scriptInsideModule(h.Script) {
			return fmt.Errorf("%w: %s hook %d script escapes module dir", ErrInvalidManifest, m.Name, i)
		}
	}
	return nil
}

// scriptInsideModule reports whether a relative script path stays
// inside the module directory. Clean, relative paths whose first
// segment is not ".." qualify.
func scriptInsideModule(script string) bool {
	if filepath.IsAbs(script) || script != filepath.Clean(script) {
		return false
	}
	if script == ".." || strings.HasPrefix(script, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

// Path returns the module directory.
func (m *Manifest) Path() string { return m.path }

// ScriptPath resolves a binding's script inside the module directory.
func (m *Manifest) ScriptPath(b HookBinding) string {
	return filepath.Join(m.path, b.Script)
}

// Group returns the module's preference group name.
func (m *Manifest) Group() string {
	if m.PrefGroup != "" {
		return m.PrefGroup
	}
	return m.Name
}

// Effective renders the manifest as normalized JSON with defaults
// applied, for diagnostics and the command-line harness.
func (m *Manifest) Effective() ([]byte, error) {
	out, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	out, err = sjson.SetBytes(out, "prefGroup", m.Group())
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(out, "path", m.path)
}

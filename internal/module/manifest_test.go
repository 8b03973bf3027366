package module

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
)

func writeManifest(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

const validManifest = `{
  "name": "tracer",
  "version": "1.0.0",
  "description": "Traces Account calls",
  "hooks": [
    {"class": "Account", "method": "deposit", "script": "deposit.lua", "priority": 100},
    {"class": "Account", "script": "ctor.lua"}
  ]
}`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, validManifest)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "tracer" || m.Version != "1.0.0" {
		t.Fatalf("manifest = %+v", m)
	}
	if len(m.Hooks) != 2 {
		t.Fatalf("hooks = %d, want 2", len(m.Hooks))
	}
	if m.Hooks[0].Priority != 100 {
		t.Fatalf("priority = %d", m.Hooks[0].Priority)
	}
	if m.Path() != dir {
		t.Fatalf("Path = %q", m.Path())
	}
	if got := m.ScriptPath(m.Hooks[0]); got != filepath.Join(dir, "deposit.lua") {
		t.Fatalf("ScriptPath = %q", got)
	}
	if m.Group() != "tracer" {
		t.Fatalf("Group = %q", m.Group())
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); !errors.Is(err, ErrNoManifest) {
		t.Fatalf("err = %v, want ErrNoManifest", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{nope`},
		{"bad name", `{"name": "Has Spaces", "version": "1", "hooks": [{"class": "A", "script": "s.lua"}]}`},
		{"no version", `{"name": "mod", "hooks": [{"class": "A", "script": "s.lua"}]}`},
		{"no hooks", `{"name": "mod", "version": "1", "hooks": []}`},
		{"hook without class", `{"name": "mod", "version": "1", "hooks": [{"script": "s.lua"}]}`},
		{"hook without script", `{"name": "mod", "version": "1", "hooks": [{"class": "A"}]}`},
		{"absolute script", `{"name": "mod", "version": "1", "hooks": [{"class": "A", "script": "/etc/passwd"}]}`},
		{"escaping script", `{"name": "mod", "version": "1", "hooks": [{"class": "A", "script": "../s.lua"}]}`},
		{"dotdot script", `{"name": "mod", "version": "1", "hooks": [{"class": "A", "script": ".."}]}`},
		{"nested traversal", `{"name": "mod", "version": "1", "hooks": [{"class": "A", "script": "sub/../../s.lua"}]}`},
		{"unclean script", `{"name": "mod", "version": "1", "hooks": [{"class": "A", "script": "./s.lua"}]}`},
	}
	for _, tc := range cases {
		dir := t.TempDir()
		writeManifest(t, dir, tc.body)
		if _, err := Load(dir); !errors.Is(err, ErrInvalidManifest) {
			t.Errorf("%s: err = %v, want ErrInvalidManifest", tc.name, err)
		}
	}
}

func TestScriptInSubdirectoryAccepted(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{
  "name": "mod",
  "version": "1",
  "hooks": [{"class": "A", "script": "scripts/s.lua"}]
}`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := m.ScriptPath(m.Hooks[0]); got != filepath.Join(dir, "scripts", "s.lua") {
		t.Fatalf("ScriptPath = %q", got)
	}

	// A filename merely starting with dots is not a traversal.
	m2 := &Manifest{Name: "mod", Version: "1", Hooks: []HookBinding{{Class: "A", Script: "..s.lua"}}}
	if err := m2.Validate(); err != nil {
		t.Fatalf("Validate(..s.lua): %v", err)
	}
}

func TestGroupDefaultsToName(t *testing.T) {
	m := &Manifest{Name: "mod", PrefGroup: ""}
	if m.Group() != "mod" {
		t.Fatalf("Group = %q", m.Group())
	}
	m.PrefGroup = "shared"
	if m.Group() != "shared" {
		t.Fatalf("Group = %q", m.Group())
	}
}

func TestEffective(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, validManifest)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	out, err := m.Effective()
	if err != nil {
		t.Fatalf("Effective: %v", err)
	}
	if got := gjson.GetBytes(out, "prefGroup").String(); got != "tracer" {
		t.Fatalf("prefGroup = %q", got)
	}
	if got := gjson.GetBytes(out, "path").String(); got != dir {
		t.Fatalf("path = %q", got)
	}
	if got := gjson.GetBytes(out, "hooks.#").Int(); got != 2 {
		t.Fatalf("hooks = %d", got)
	}
}

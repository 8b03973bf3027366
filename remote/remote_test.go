package remote

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/sjson"
)

func writeGroup(t *testing.T, dir, name string) {
	t.Helper()

	doc, err := sjson.Set("", "enabled", true)
	if err != nil {
		t.Fatal(err)
	}
	doc, _ = sjson.Set(doc, "retries", 3)
	doc, _ = sjson.Set(doc, "ratio", 0.5)
	doc, _ = sjson.Set(doc, "ui.theme", "dark")

	if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirPrefStore(t *testing.T) {
	dir := t.TempDir()
	writeGroup(t, dir, "tracer")

	store := NewDirPrefStore(dir)
	p, err := store.Group("tracer")
	if err != nil {
		t.Fatalf("Group: %v", err)
	}

	if !p.Has("enabled") {
		t.Fatal("Has(enabled) = false")
	}
	if got := p.GetBool("enabled", false); !got {
		t.Fatal("GetBool(enabled) = false")
	}
	if got := p.GetInt("retries", -1); got != 3 {
		t.Fatalf("GetInt(retries) = %d", got)
	}
	if got := p.GetFloat("ratio", 0); got != 0.5 {
		t.Fatalf("GetFloat(ratio) = %v", got)
	}
	if got := p.GetString("ui.theme", ""); got != "dark" {
		t.Fatalf("GetString(ui.theme) = %q", got)
	}
	if got := p.GetString("missing", "fallback"); got != "fallback" {
		t.Fatalf("GetString(missing) = %q", got)
	}

	keys := p.Keys()
	if len(keys) != 4 {
		t.Fatalf("Keys = %v", keys)
	}
}

func TestDirPrefStoreMissingGroup(t *testing.T) {
	store := NewDirPrefStore(t.TempDir())
	if _, err := store.Group("absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDirPrefStoreRejectsPathNames(t *testing.T) {
	store := NewDirPrefStore(t.TempDir())
	for _, name := range []string{"", "a/b", "../escape"} {
		if _, err := store.Group(name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Group(%q) err = %v, want ErrNotFound", name, err)
		}
	}
}

func TestDirPrefStoreInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewDirPrefStore(dir)
	if _, err := store.Group("bad"); err == nil {
		t.Fatal("Group accepted invalid JSON")
	}
}

func TestDirFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("beta"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	files := NewDirFiles(dir)
	names, err := files.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 || names[0] != "a.txt" || names[1] != "b.txt" {
		t.Fatalf("List = %v", names)
	}

	rc, err := files.Open("a.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "alpha" {
		t.Fatalf("content = %q", data)
	}
}

func TestDirFilesOpenErrors(t *testing.T) {
	files := NewDirFiles(t.TempDir())

	if _, err := files.Open("missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		if _, err := files.Open(name); !errors.Is(err, ErrBadName) {
			t.Fatalf("Open(%q) err = %v, want ErrBadName", name, err)
		}
	}
}

package remote

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Files serves a module's shared data directory, read-only.
type Files interface {
	// List returns the names of all regular files in the directory.
	List() ([]string, error)

	// Open opens a file read-only. Names containing path separators or
	// dot segments are rejected with ErrBadName.
	Open(name string) (io.ReadCloser, error)
}

// DirFiles serves files from a local directory.
type DirFiles struct {
	dir string
}

// NewDirFiles creates a file service over the given directory.
func NewDirFiles(dir string) *DirFiles {
	return &DirFiles{dir: dir}
}

// List implements Files.
func (f *DirFiles) List() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, f.dir)
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Open implements Files.
func (f *DirFiles) Open(name string) (io.ReadCloser, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(f.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return file, nil
}

// checkName rejects names that could escape the shared directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}

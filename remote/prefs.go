package remote

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
)

// Prefs is one read-only preference group. Keys are gjson paths, so
// nested values are reachable with dotted keys ("ui.theme.dark").
type Prefs interface {
	// Has reports whether the key exists in the group.
	Has(key string) bool

	// GetString returns a string value, or def if absent.
	GetString(key, def string) string

	// GetInt returns an integer value, or def if absent.
	GetInt(key string, def int64) int64

	// GetFloat returns a float value, or def if absent.
	GetFloat(key string, def float64) float64

	// GetBool returns a boolean value, or def if absent.
	GetBool(key string, def bool) bool

	// Keys returns the group's top-level keys.
	Keys() []string
}

// PrefStore resolves preference groups by name.
type PrefStore interface {
	// Group returns the named preference group, ErrNotFound if it does
	// not exist, or ErrUnsupported when the store is unavailable.
	Group(name string) (Prefs, error)
}

// DirPrefStore serves preference groups from a directory of JSON
// files, one <group>.json per group. Files are read once and cached;
// the store is read-only by contract so no invalidation exists.
type DirPrefStore struct {
	dir string

	mu     sync.Mutex
	groups map[string]*jsonPrefs
}

// NewDirPrefStore creates a store over the given directory.
func NewDirPrefStore(dir string) *DirPrefStore {
	return &DirPrefStore{dir: dir, groups: make(map[string]*jsonPrefs)}
}

// Group implements PrefStore.
func (s *DirPrefStore) Group(name string) (Prefs, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: group %q", ErrNotFound, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.groups[name]; ok {
		return p, nil
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: group %q", ErrNotFound, name)
		}
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("remote: group %q is not valid JSON", name)
	}

	p := &jsonPrefs{data: data}
	s.groups[name] = p
	return p, nil
}

// jsonPrefs reads values out of one JSON document.
type jsonPrefs struct {
	data []byte
}

// Has implements Prefs.
func (p *jsonPrefs) Has(key string) bool {
	return gjson.GetBytes(p.data, key).Exists()
}

// GetString implements Prefs.
func (p *jsonPrefs) GetString(key, def string) string {
	if v := gjson.GetBytes(p.data, key); v.Exists() {
		return v.String()
	}
	return def
}

// GetInt implements Prefs.
func (p *jsonPrefs) GetInt(key string, def int64) int64 {
	if v := gjson.GetBytes(p.data, key); v.Exists() {
		return v.Int()
	}
	return def
}

// GetFloat implements Prefs.
func (p *jsonPrefs) GetFloat(key string, def float64) float64 {
	if v := gjson.GetBytes(p.data, key); v.Exists() {
		return v.Float()
	}
	return def
}

// GetBool implements Prefs.
func (p *jsonPrefs) GetBool(key string, def bool) bool {
	if v := gjson.GetBytes(p.data, key); v.Exists() {
		return v.Bool()
	}
	return def
}

// Keys implements Prefs.
func (p *jsonPrefs) Keys() []string {
	var keys []string
	gjson.ParseBytes(p.data).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	return keys
}

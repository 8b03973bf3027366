// Package binparse turns raw class-descriptor bytes into a structured
// descriptor hooker modules can search for hookable targets.
//
// The wire format is a JSON document: {"classes": [{"name": ...,
// "super": ..., "methods": [{"name": ..., "arity": ..., "static":
// ...}]}]}, with an optional "meta" object per class that is dropped
// unless requested.
package binparse

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformed indicates the descriptor bytes are not a valid
// descriptor document.
var ErrMalformed = errors.New("binparse: malformed descriptor")

// MethodDesc describes one method of a described class.
type MethodDesc struct {
	Name   string
	Arity  int
	Static bool
}

// ClassDesc describes one class.
type ClassDesc struct {
	Name    string
	Super   string
	Methods []MethodDesc
	Meta    map[string]string
}

// Descriptor is the structured form of one descriptor document.
type Descriptor struct {
	Classes []ClassDesc
}

// FindClass returns the named class descriptor.
func (d *Descriptor) FindClass(name string) (*ClassDesc, bool) {
	for i := range d.Classes {
		if d.Classes[i].Name == name {
			return &d.Classes[i], true
		}
	}
	return nil, false
}

// Parser parses raw descriptor bytes.
type Parser interface {
	// Parse builds a Descriptor from data. Per-class metadata is only
	// populated when includeMeta is set.
	Parse(data []byte, includeMeta bool) (*Descriptor, error)
}

// JSONParser parses the JSON descriptor format.
type JSONParser struct{}

// NewJSONParser creates a descriptor parser.
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// Parse implements Parser.
func (p *JSONParser) Parse(data []byte, includeMeta bool) (*Descriptor, error) {
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return nil, ErrMalformed
	}

	classes := gjson.GetBytes(data, "classes")
	if !classes.IsArray() {
		return nil, fmt.Errorf("%w: missing classes array", ErrMalformed)
	}

	desc := &Descriptor{}
	var parseErr error

	classes.ForEach(func(_, cls gjson.Result) bool {
		name := cls.Get("name").String()
		if name == "" {
			parseErr = fmt.Errorf("%w: class without name", ErrMalformed)
			return false
		}

		cd := ClassDesc{
			Name:  name,
			Super: cls.Get("super").String(),
		}

		cls.Get("methods").ForEach(func(_, m gjson.Result) bool {
			mname := m.Get("name").String()
			if mname == "" {
				parseErr = fmt.Errorf("%w: method without name in %s", ErrMalformed, name)
				return false
			}
			cd.Methods = append(cd.Methods, MethodDesc{
				Name:   mname,
				Arity:  int(m.Get("arity").Int()),
				Static: m.Get("static").Bool(),
			})
			return true
		})
		if parseErr != nil {
			return false
		}

		if includeMeta {
			if meta := cls.Get("meta"); meta.IsObject() {
				cd.Meta = make(map[string]string)
				meta.ForEach(func(k, v gjson.Result) bool {
					cd.Meta[k.String()] = v.String()
					return true
				})
			}
		}

		desc.Classes = append(desc.Classes, cd)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return desc, nil
}

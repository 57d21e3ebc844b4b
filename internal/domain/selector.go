package domain

import (
	"path/filepath"
	"strings"
)

// Selector names one field of one game file: "data/Actors.json#1.name".
// A selector without a '#' names the whole file.
type Selector string

// NewSelector builds a selector from a game-relative file and a field path.
func NewSelector(rel string, field Path) Selector {
	rel = filepath.ToSlash(rel)
	if len(field) == 0 {
		return Selector(rel)
	}
	return Selector(rel + "#" + field.String())
}

// File returns the file part of the selector.
func (s Selector) File() string {
	f, _, _ := strings.Cut(string(s), "#")
	return f
}

// Field returns the field part of the selector, empty for whole-file selectors.
func (s Selector) Field() string {
	_, f, _ := strings.Cut(string(s), "#")
	return f
}

// Overrides is the set of selectors the translator asked to leave untouched.
type Overrides struct {
	files  map[string]struct{}
	fields map[string]struct{}
}

// NewOverrides indexes a list of selectors.
func NewOverrides(list []string) *Overrides {
	o := &Overrides{
		files:  make(map[string]struct{}),
		fields: make(map[string]struct{}),
	}
	for _, raw := range list {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		s := Selector(filepath.ToSlash(raw))
		if s.Field() == "" {
			o.files[s.File()] = struct{}{}
			continue
		}
		o.fields[string(s)] = struct{}{}
	}
	return o
}

// FileExempt reports whether the whole file is exempt.
func (o *Overrides) FileExempt(rel string) bool {
	if o == nil {
		return false
	}
	_, ok := o.files[filepath.ToSlash(rel)]
	return ok
}

// Exempt reports whether the selector, or its file, is exempt.
func (o *Overrides) Exempt(s Selector) bool {
	if o == nil {
		return false
	}
	if _, ok := o.files[s.File()]; ok {
		return true
	}
	_, ok := o.fields[string(s)]
	return ok
}

// Len returns the number of indexed selectors.
func (o *Overrides) Len() int {
	if o == nil {
		return 0
	}
	return len(o.files) + len(o.fields)
}

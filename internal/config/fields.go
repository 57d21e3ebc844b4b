package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Schema is a compiled FieldSchema.
type Schema struct {
	kinds []*Kind
}

// Kind is a compiled FileKind.
type Kind struct {
	Name   string
	Fields []Field
	Events [][]string

	match *regexp.Regexp
}

// Field is a compiled FieldRule.
type Field struct {
	Pattern []string
	Wrap    bool
}

// Compile checks a field schema and compiles its file matchers.
func Compile(fs FieldSchema) (*Schema, error) {
	s := &Schema{}
	for i, fk := range fs.Kinds {
		if fk.Match == "" {
			return nil, fmt.Errorf("field schema: kind %d (%s) has no match", i, fk.Name)
		}
		re, err := regexp.Compile(fk.Match)
		if err != nil {
			return nil, fmt.Errorf("field schema: kind %s: %w", fk.Name, err)
		}

		k := &Kind{Name: fk.Name, match: re}
		for _, f := range fk.Fields {
			if strings.TrimSpace(f.Path) == "" {
				return nil, fmt.Errorf("field schema: kind %s has an empty field path", fk.Name)
			}
			k.Fields = append(k.Fields, Field{Pattern: strings.Split(f.Path, "."), Wrap: f.Wrap})
		}
		for _, e := range fk.Events {
			k.Events = append(k.Events, strings.Split(e, "."))
		}
		s.kinds = append(s.kinds, k)
	}
	return s, nil
}

// KindFor returns the kind whose matcher accepts the base name of file.
func (s *Schema) KindFor(file string) (*Kind, bool) {
	if s == nil {
		return nil, false
	}
	base := filepath.Base(file)
	for _, k := range s.kinds {
		if k.match.MatchString(base) {
			return k, true
		}
	}
	return nil, false
}

// Names returns the kind names in schema order.
func (s *Schema) Names() []string {
	out := make([]string, 0, len(s.kinds))
	for _, k := range s.kinds {
		out = append(out, k.Name)
	}
	return out
}

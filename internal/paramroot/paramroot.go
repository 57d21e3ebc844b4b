// Package paramroot resolves parameter paths under a plugin command's
// parameter root and writes values back without disturbing the rest of it.
package paramroot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/jsondoc"
)

// DefaultDelimiter separates fields of a delimited root.
const DefaultDelimiter = " "

// Handle points at one resolved leaf.
type Handle struct {
	Path  domain.Path
	Value any
}

// Root is a parameter block that paths can be resolved against.
type Root interface {
	// Resolve finds the leaf at path.
	Resolve(path domain.Path) (Handle, error)
	// Write stores v at the leaf h points to.
	Write(h Handle, v any) error
	// Rewrite calls fn for every string leaf and stores the replacements.
	Rewrite(fn func(path domain.Path, s string) (string, bool)) int
	// Value returns the root with all writes applied.
	Value() any
}

// New builds the Root variant selected by rootType.
func New(rootType string, value any, delimiter string) (Root, error) {
	switch strings.ToLower(rootType) {
	case domain.RootObject, domain.RootArray, domain.RootStructured, "":
		return NewStructured(value), nil
	case domain.RootString, domain.RootDelimited:
		s, ok := value.(string)
		if !ok {
			return nil, domain.Errorf(domain.KindInvalidConfig, "paramroot: new", "",
				"delimited root needs a string, got %T", value)
		}
		return NewDelimited(s, delimiter), nil
	}
	return nil, domain.Errorf(domain.KindInvalidConfig, "paramroot: new", "",
		"unknown rootType %q", rootType)
}

// Delimited is a root whose fields are packed into one string.
type Delimited struct {
	fields []string
	delim  string
}

// NewDelimited splits s on delim. An empty delim keeps s as a single field.
func NewDelimited(s, delim string) *Delimited {
	if delim == "" {
		return &Delimited{fields: []string{s}}
	}
	return &Delimited{fields: strings.Split(s, delim), delim: delim}
}

// Fields returns the current fields.
func (d *Delimited) Fields() []string { return d.fields }

func (d *Delimited) index(path domain.Path) (int, error) {
	if len(path) != 1 {
		return 0, domain.Errorf(domain.KindPathNotFound, "paramroot: resolve", path.String(),
			"delimited root takes a single index")
	}
	i, err := strconv.Atoi(path[0])
	if err != nil || i < 0 || i >= len(d.fields) {
		return 0, domain.Errorf(domain.KindPathNotFound, "paramroot: resolve", path.String(),
			"field %s out of range (%d fields)", path[0], len(d.fields))
	}
	return i, nil
}

func (d *Delimited) Resolve(path domain.Path) (Handle, error) {
	i, err := d.index(path)
	if err != nil {
		return Handle{}, err
	}
	return Handle{Path: path, Value: d.fields[i]}, nil
}

func (d *Delimited) Write(h Handle, v any) error {
	i, err := d.index(h.Path)
	if err != nil {
		return err
	}
	d.fields[i] = text(v)
	return nil
}

// Rewrite treats the whole packed string as one leaf.
func (d *Delimited) Rewrite(fn func(domain.Path, string) (string, bool)) int {
	whole := strings.Join(d.fields, d.delim)
	ns, ok := fn(domain.Path{}, whole)
	if !ok || ns == whole {
		return 0
	}
	*d = *NewDelimited(ns, d.delim)
	return 1
}

func (d *Delimited) Value() any {
	return strings.Join(d.fields, d.delim)
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	}
	b, err := jsondoc.Encode(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

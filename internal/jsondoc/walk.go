package jsondoc

import (
	"fmt"
	"strconv"
)

// Wildcard matches any key of an object or any index of an array.
const Wildcard = "*"

// Child returns the value under one path segment of node.
func Child(node any, seg string) (any, bool) {
	switch t := node.(type) {
	case *Object:
		return t.Get(seg)
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(t) {
			return nil, false
		}
		return t[i], true
	}
	return nil, false
}

// SetChild replaces the value under one segment of node. Objects accept new
// keys; arrays only accept existing indices.
func SetChild(node any, seg string, v any) error {
	switch t := node.(type) {
	case *Object:
		t.Set(seg, v)
		return nil
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(t) {
			return fmt.Errorf("index %q out of range", seg)
		}
		t[i] = v
		return nil
	}
	return fmt.Errorf("cannot set %q on %T", seg, node)
}

// Walk calls fn for every value matching pattern, where a segment equal to
// Wildcard matches every child. When fn returns true the value is replaced by
// the one it returned. Walk returns the number of replacements.
func Walk(root any, pattern []string, fn func(path []string, v any) (any, bool)) int {
	return walk(root, nil, pattern, fn)
}

func walk(node any, at, pattern []string, fn func([]string, any) (any, bool)) int {
	if len(pattern) == 0 {
		return 0
	}

	seg, rest := pattern[0], pattern[1:]
	n := 0
	visit := func(key string, child any) {
		path := append(append([]string(nil), at...), key)
		if len(rest) == 0 {
			if nv, ok := fn(path, child); ok {
				if SetChild(node, key, nv) == nil {
					n++
				}
			}
			return
		}
		n += walk(child, path, rest, fn)
	}

	if seg != Wildcard {
		if child, ok := Child(node, seg); ok {
			visit(seg, child)
		}
		return n
	}

	switch t := node.(type) {
	case *Object:
		for _, k := range t.Keys() {
			v, _ := t.Get(k)
			visit(k, v)
		}
	case []any:
		for i, v := range t {
			visit(strconv.Itoa(i), v)
		}
	}
	return n
}

// Clone returns a deep copy of a tree.
func Clone(node any) any {
	switch t := node.(type) {
	case *Object:
		c := NewObject()
		for _, k := range t.keys {
			c.Set(k, Clone(t.vals[k]))
		}
		return c
	case []any:
		c := make([]any, len(t))
		for i, v := range t {
			c[i] = Clone(v)
		}
		return c
	}
	return node
}

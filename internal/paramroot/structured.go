package paramroot

import (
	"strconv"
	"strings"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/jsondoc"
)

// Structured is a nested object or array root. Strings holding JSON objects
// or arrays are descended into, and re-encoded on write.
type Structured struct {
	root any
}

// NewStructured wraps a decoded value.
func NewStructured(v any) *Structured {
	return &Structured{root: v}
}

func (s *Structured) Resolve(path domain.Path) (Handle, error) {
	cur := s.root
	for i, seg := range path {
		next, ok := child(cur, seg)
		if !ok {
			return Handle{}, domain.Errorf(domain.KindPathNotFound, "paramroot: resolve", path.String(),
				"no segment %q at %s", seg, domain.Path(path[:i]).String())
		}
		cur = next
	}
	return Handle{Path: path, Value: cur}, nil
}

func (s *Structured) Write(h Handle, v any) error {
	nr, err := setIn(s.root, h.Path, v)
	if err != nil {
		return domain.E(domain.KindPathNotFound, "paramroot: write", h.Path.String(), err)
	}
	s.root = nr
	return nil
}

func (s *Structured) Rewrite(fn func(domain.Path, string) (string, bool)) int {
	n := 0
	s.root = rewrite(s.root, nil, fn, &n)
	return n
}

func (s *Structured) Value() any { return s.root }

// child steps one segment, decoding an embedded JSON string if needed.
func child(node any, seg string) (any, bool) {
	if str, ok := node.(string); ok {
		inner, ok := embedded(str)
		if !ok {
			return nil, false
		}
		node = inner
	}
	return jsondoc.Child(node, seg)
}

func setIn(node any, path []string, v any) (any, error) {
	if len(path) == 0 {
		return v, nil
	}

	if str, ok := node.(string); ok {
		inner, ok := embedded(str)
		if !ok {
			return nil, errNoContainer(path[0])
		}
		ni, err := setIn(inner, path, v)
		if err != nil {
			return nil, err
		}
		b, err := jsondoc.Encode(ni)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}

	c, ok := jsondoc.Child(node, path[0])
	if !ok {
		return nil, errNoContainer(path[0])
	}
	nc, err := setIn(c, path[1:], v)
	if err != nil {
		return nil, err
	}
	if err := jsondoc.SetChild(node, path[0], nc); err != nil {
		return nil, err
	}
	return node, nil
}

func rewrite(node any, at domain.Path, fn func(domain.Path, string) (string, bool), n *int) any {
	switch t := node.(type) {
	case string:
		if inner, ok := embedded(t); ok {
			before := *n
			ni := rewrite(inner, at, fn, n)
			if *n == before {
				return t
			}
			b, err := jsondoc.Encode(ni)
			if err != nil {
				return t
			}
			return string(b)
		}
		if ns, ok := fn(at, t); ok && ns != t {
			*n++
			return ns
		}
		return t
	case *jsondoc.Object:
		for _, k := range t.Keys() {
			v, _ := t.Get(k)
			t.Set(k, rewrite(v, append(append(domain.Path(nil), at...), k), fn, n))
		}
	case []any:
		for i, v := range t {
			t[i] = rewrite(v, append(append(domain.Path(nil), at...), strconv.Itoa(i)), fn, n)
		}
	}
	return node
}

// embedded decodes s when it holds a JSON object or array.
func embedded(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, false
	}
	v, err := jsondoc.Decode([]byte(trimmed))
	if err != nil {
		return nil, false
	}
	return v, true
}

type errNoContainer string

func (e errNoContainer) Error() string { return "no segment " + string(e) }

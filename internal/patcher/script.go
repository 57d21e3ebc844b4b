package patcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/mzpatch/internal/coerce"
	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/paramroot"
	"github.com/vovakirdan/mzpatch/internal/reflow"
)

// Script is a declarative rewrite of one plugin's parameters block in
// plugins.js. Paths are dotted and reach into JSON-encoded string values.
//
//	set:
//	  "Title Text": "Mon titre"
//	translate:
//	  - "Help.Text"
//	wrap: ["Help.Text"]
//	translateAll: false
type Script struct {
	Set          map[string]any `yaml:"set"`
	Translate    []string       `yaml:"translate"`
	Wrap         []string       `yaml:"wrap"`
	TranslateAll bool           `yaml:"translateAll"`
}

// ParseScript decodes and checks a parametersPatchScript.
func ParseScript(src string) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(strings.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	for k, v := range s.Set {
		if strings.TrimSpace(k) == "" {
			return nil, errors.New("parse script: empty path in set")
		}
		switch v.(type) {
		case string, int, float64, bool, nil:
		default:
			return nil, fmt.Errorf("parse script: set %q: value must be a scalar, got %T", k, v)
		}
	}
	for _, p := range append(slices.Clone(s.Translate), s.Wrap...) {
		if strings.TrimSpace(p) == "" {
			return nil, errors.New("parse script: empty path")
		}
	}
	return &s, nil
}

// Empty reports whether the script does nothing.
func (s *Script) Empty() bool {
	return s == nil || (len(s.Set) == 0 && len(s.Translate) == 0 && !s.TranslateAll)
}

func (s *Script) wraps(path string) bool {
	return slices.Contains(s.Wrap, path)
}

// applyScript runs s against root. base prefixes every recorded selector.
func (r *fileRun) applyScript(base domain.Path, s *Script, root *paramroot.Structured) bool {
	changed := false

	keys := make([]string, 0, len(s.Set))
	for k := range s.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := domain.ParsePath(k)
		field := join(base, path...)
		if r.p.overrides.Exempt(domain.NewSelector(r.rel, field)) {
			continue
		}
		h, err := root.Resolve(path)
		if err != nil {
			r.skip(field, err)
			continue
		}
		v := scriptValue(s.Set[k], h.Value)
		before, after := coerce.Text(h.Value), coerce.Text(v)
		if before == after {
			continue
		}
		if err := root.Write(h, v); err != nil {
			r.skip(field, err)
			continue
		}
		r.record(field, before, after)
		changed = true
	}

	for _, k := range s.Translate {
		path := domain.ParsePath(k)
		field := join(base, path...)
		h, err := root.Resolve(path)
		if err != nil {
			r.skip(field, err)
			continue
		}
		text, ok := h.Value.(string)
		if !ok {
			continue
		}
		tr, hit := r.translate(field, text, s.wraps(k), reflow.Hints{})
		if !hit {
			continue
		}
		if err := root.Write(h, tr); err != nil {
			r.skip(field, err)
			continue
		}
		changed = true
	}

	if s.TranslateAll {
		n := root.Rewrite(func(path domain.Path, text string) (string, bool) {
			return r.translate(join(base, path...), text, s.wraps(path.String()), reflow.Hints{})
		})
		changed = changed || n > 0
	}

	return changed
}

// scriptValue converts a YAML scalar to the JSON kind of the leaf it replaces.
// Plugin parameters are nearly always strings, so string leaves get text.
func scriptValue(v, original any) any {
	var text string
	switch t := v.(type) {
	case nil:
		if _, ok := original.(string); ok {
			return ""
		}
		return nil
	case string:
		return t
	case int:
		text = strconv.Itoa(t)
	case float64:
		text = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if _, ok := original.(string); ok {
			return strconv.FormatBool(t)
		}
		return t
	}
	if _, ok := original.(string); ok {
		return text
	}
	return json.Number(text)
}

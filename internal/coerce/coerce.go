// Package coerce converts substituted parameter text into the value type a
// plugin expects, keeping the JSON kind of the leaf it replaces.
package coerce

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/jsondoc"
)

// DefaultArrayDelimiter separates elements of a string-array held as text.
const DefaultArrayDelimiter = ","

// Options tune a single coercion.
type Options struct {
	// Original is the leaf being replaced. Its JSON kind is kept.
	Original any
	// Delimiter splits string-array text that is not a JSON array.
	Delimiter string
	// Lookup translates string-array elements. Misses pass through.
	Lookup func(string) (string, bool)
}

// Text renders a leaf as the text used for dictionary lookup.
func Text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	}
	b, err := jsondoc.Encode(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Value converts text to typ. An empty typ means string.
func Value(text, typ string, opts Options) (any, error) {
	switch typ {
	case "", domain.TypeString:
		return text, nil
	case domain.TypeNumber:
		return number(text, opts)
	case domain.TypeBoolean:
		return boolean(text, opts)
	case domain.TypeStringArray:
		return stringArray(text, opts)
	}
	return nil, domain.Errorf(domain.KindCoercion, "coerce", "", "unknown type %q", typ)
}

// number accepts decimal notation only. NaN, infinities and hex floats
// have no JSON form.
func number(text string, opts Options) (any, error) {
	trimmed := strings.TrimSpace(text)
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || strings.Contains(strings.ToLower(trimmed), "0x") {
		return nil, domain.Errorf(domain.KindCoercion, "coerce", "", "%q is not a number", text)
	}
	canonical := strconv.FormatFloat(f, 'f', -1, 64)
	if _, ok := opts.Original.(string); ok {
		return canonical, nil
	}
	return json.Number(canonical), nil
}

func boolean(text string, opts Options) (any, error) {
	var b bool
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "on", "yes", "1":
		b = true
	case "false", "off", "no", "0":
		b = false
	default:
		return nil, domain.Errorf(domain.KindCoercion, "coerce", "", "%q is not a boolean", text)
	}
	if _, ok := opts.Original.(string); ok {
		return strconv.FormatBool(b), nil
	}
	return b, nil
}

func stringArray(text string, opts Options) (any, error) {
	delim := opts.Delimiter
	if delim == "" {
		delim = DefaultArrayDelimiter
	}

	elems, fromJSON := jsonStrings(text)
	_, native := opts.Original.([]any)
	if native && !fromJSON {
		return nil, domain.Errorf(domain.KindCoercion, "coerce", "", "%q is not a JSON array of strings", text)
	}
	if !fromJSON {
		elems = strings.Split(text, delim)
	}
	for i, e := range elems {
		if opts.Lookup == nil {
			break
		}
		if tr, ok := opts.Lookup(e); ok {
			elems[i] = tr
		}
	}

	if native {
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = e
		}
		return out, nil
	}
	if fromJSON {
		b, err := jsondoc.Encode(elems)
		if err != nil {
			return nil, domain.E(domain.KindCoercion, "coerce", "", err)
		}
		return string(b), nil
	}
	return strings.Join(elems, delim), nil
}

// jsonStrings decodes text when it is a JSON array of strings.
func jsonStrings(text string) ([]string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var out []string
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, false
	}
	return out, true
}

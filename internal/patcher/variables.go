package patcher

import (
	"encoding/json"
	"strings"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/jsondoc"
)

// operandScript marks a 122 command whose operand is a script expression.
const operandScript = 4

// variable patches a 122 command: [start, end, op, operandType, operand].
// Only script operands holding a string literal are touched.
func (r *fileRun) variable(at domain.Path, c command) bool {
	if len(c.params) < 5 || len(r.p.cfg.VariablesToPatch) == 0 {
		return false
	}
	start, ok1 := intParam(c.params[0])
	end, ok2 := intParam(c.params[1])
	kind, ok3 := intParam(c.params[3])
	if !ok1 || !ok2 || !ok3 || kind != operandScript {
		return false
	}
	if !r.p.cfg.PatchesVariables(start, end) {
		return false
	}

	value, ok := c.params[4].(string)
	if !ok {
		return false
	}
	field := join(at, "parameters", "4")
	lookup := func(s string) (string, bool) { return r.lookup(field, s) }

	patched, ok := patchScriptLiteral(value, lookup)
	if !ok || patched == value {
		return false
	}
	c.params[4] = patched
	r.record(field, value, patched)
	return true
}

// patchScriptLiteral translates a JavaScript string literal:
// "text", "text";, 'text' or '[json array]'.
func patchScriptLiteral(value string, lookup func(string) (string, bool)) (string, bool) {
	switch {
	case len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`):
		if tr, ok := lookup(value[1 : len(value)-1]); ok {
			return `"` + tr + `"`, true
		}
	case len(value) >= 3 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `";`):
		if tr, ok := lookup(value[1 : len(value)-2]); ok {
			return `"` + tr + `";`, true
		}
	case len(value) >= 2 && strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`):
		inner := value[1 : len(value)-1]
		if strings.HasPrefix(inner, "[") && strings.HasSuffix(inner, "]") {
			out, ok := patchJSONArray(inner, lookup)
			if !ok {
				return value, false
			}
			return "'" + out + "'", true
		}
		if tr, ok := lookup(inner); ok {
			return "'" + tr + "'", true
		}
	}
	return value, false
}

// patchJSONArray translates the string elements of a JSON array. Other
// elements pass through.
func patchJSONArray(src string, lookup func(string) (string, bool)) (string, bool) {
	v, err := jsondoc.Decode([]byte(src))
	if err != nil {
		return src, false
	}
	arr, ok := v.([]any)
	if !ok {
		return src, false
	}

	hit := false
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if tr, ok := lookup(s); ok {
			arr[i] = tr
			hit = true
		}
	}
	if !hit {
		return src, false
	}
	out, err := jsondoc.Encode(arr)
	if err != nil {
		return src, false
	}
	return string(out), true
}

func intParam(v any) (int, bool) {
	num, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	n, err := num.Int64()
	if err != nil {
		return 0, false
	}
	return int(n), true
}

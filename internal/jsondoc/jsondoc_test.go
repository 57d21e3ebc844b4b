package jsondoc

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRoundTripPreservesOrder(t *testing.T) {
	tests := []string{
		`{"z":1,"a":2,"m":{"y":true,"b":null}}`,
		`[null,{"id":1,"name":"Harold","note":"<tag>"}]`,
		`{"n":1.50,"e":1e3,"neg":-0}`,
		`"plain"`,
		`{"s":"line\nbreak & <b>"}`,
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			v, err := Decode([]byte(in))
			if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}
			out, err := Encode(v)
			if err != nil {
				t.Fatalf("Encode() failed: %v", err)
			}
			if string(out) != in {
				t.Errorf("round trip mismatch\n got: %s\nwant: %s", out, in)
			}
		})
	}
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	if _, err := Decode([]byte(`{"a":1} {"b":2}`)); err == nil {
		t.Error("expected error for trailing data")
	}
	if _, err := Decode([]byte(`{"a":`)); err == nil {
		t.Error("expected error for truncated document")
	}
}

func TestSetKeepsPosition(t *testing.T) {
	v, _ := Decode([]byte(`{"a":1,"b":2,"c":3}`))
	obj := v.(*Object)
	obj.Set("b", "two")
	obj.Set("d", json.Number("4"))

	out, _ := Encode(obj)
	want := `{"a":1,"b":"two","c":3,"d":4}`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestWalkWildcard(t *testing.T) {
	v, _ := Decode([]byte(`[null,{"name":"Hello","id":1},{"name":"Other","id":2}]`))

	var seen []string
	n := Walk(v, []string{"*", "name"}, func(path []string, val any) (any, bool) {
		seen = append(seen, strings.Join(path, "."))
		if val == "Hello" {
			return "Bonjour", true
		}
		return nil, false
	})

	if n != 1 {
		t.Errorf("replacements = %d, want 1", n)
	}
	if strings.Join(seen, ",") != "1.name,2.name" {
		t.Errorf("visited %v", seen)
	}
	got, _ := get(v, []string{"1", "name"})
	if got != "Bonjour" {
		t.Errorf("1.name = %v", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	v, _ := Decode([]byte(`{"code":401,"parameters":["hi"]}`))
	c := Clone(v).(*Object)
	params, _ := c.Get("parameters")
	params.([]any)[0] = "changed"

	orig, _ := get(v, []string{"parameters", "0"})
	if orig != "hi" {
		t.Errorf("clone shares storage with original: %v", orig)
	}
}

func TestEncodeString(t *testing.T) {
	if got := string(EncodeString(`a<b>"c"`)); got != `"a<b>\"c\""` {
		t.Errorf("EncodeString() = %s", got)
	}
}

func TestEncodeRejectsInvalidNumber(t *testing.T) {
	for _, n := range []json.Number{"NaN", "+Inf", "0x10", ""} {
		if _, err := Encode([]any{n}); err == nil {
			t.Errorf("Encode(%q) succeeded, want error", string(n))
		}
	}
	if b, err := Encode([]any{json.Number("-1.5e3")}); err != nil || string(b) != "[-1.5e3]" {
		t.Errorf("Encode() = %s, %v", b, err)
	}
}

// get follows path from root one segment at a time.
func get(root any, path []string) (any, bool) {
	node := root
	for _, seg := range path {
		var ok bool
		if node, ok = Child(node, seg); !ok {
			return nil, false
		}
	}
	return node, true
}

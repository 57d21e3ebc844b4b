package coerce

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/vovakirdan/mzpatch/internal/domain"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		original any
		want     any
	}{
		{"string leaf", " 12.50 ", "10", "12.5"},
		{"number leaf", "3", json.Number("1"), json.Number("3")},
		{"no exponent", "1e3", "0", "1000"},
		{"negative", "-0.25", json.Number("0"), json.Number("-0.25")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Value(tt.text, domain.TypeNumber, Options{Original: tt.original})
			if err != nil {
				t.Fatalf("Value() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNumberRejectsText(t *testing.T) {
	for _, text := range []string{"douze", "NaN", "nan", "Inf", "+Inf", "-Infinity", "0x1p4", "0X10", ""} {
		for _, original := range []any{"1", json.Number("1")} {
			_, err := Value(text, domain.TypeNumber, Options{Original: original})
			if !errors.Is(err, domain.ErrCoercion) {
				t.Errorf("Value(%q) error = %v, want Coercion", text, err)
			}
		}
	}
}

func TestBoolean(t *testing.T) {
	tests := []struct {
		text     string
		original any
		want     any
	}{
		{"ON", "false", "true"},
		{"yes", true, true},
		{"1", false, true},
		{"Off", "true", "false"},
		{"no", true, false},
		{"0", "1", "false"},
	}

	for _, tt := range tests {
		got, err := Value(tt.text, domain.TypeBoolean, Options{Original: tt.original})
		if err != nil {
			t.Fatalf("Value(%q) failed: %v", tt.text, err)
		}
		if got != tt.want {
			t.Errorf("Value(%q) = %#v, want %#v", tt.text, got, tt.want)
		}
	}

	if _, err := Value("maybe", domain.TypeBoolean, Options{}); !errors.Is(err, domain.ErrCoercion) {
		t.Errorf("error = %v, want Coercion", err)
	}
}

func TestStringArray(t *testing.T) {
	dict := domain.Dictionary{"Sword": "Épée", "Shield": "Bouclier"}

	tests := []struct {
		name     string
		text     string
		original any
		delim    string
		want     any
	}{
		{"json text", `["Sword","Axe"]`, `["Sword","Axe"]`, "", `["Épée","Axe"]`},
		{"comma list", "Sword,Shield", "Sword,Shield", "", "Épée,Bouclier"},
		{"custom delimiter", "Sword|Axe", "Sword|Axe", "|", "Épée|Axe"},
		{"native array", `["Shield"]`, []any{"Shield"}, "", []any{"Bouclier"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Value(tt.text, domain.TypeStringArray, Options{
				Original:  tt.original,
				Delimiter: tt.delim,
				Lookup:    dict.Lookup,
			})
			if err != nil {
				t.Fatalf("Value() failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestStringArrayNativeNeedsStrings(t *testing.T) {
	for _, text := range []string{`[1,2]`, `["a",2]`, "a,b"} {
		_, err := Value(text, domain.TypeStringArray, Options{Original: []any{json.Number("1"), json.Number("2")}})
		if !errors.Is(err, domain.ErrCoercion) {
			t.Errorf("Value(%q) error = %v, want Coercion", text, err)
		}
	}
}

func TestStringIsIdentity(t *testing.T) {
	got, err := Value("  spaced  ", domain.TypeString, Options{})
	if err != nil || got != "  spaced  " {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestText(t *testing.T) {
	if Text(json.Number("1.5")) != "1.5" || Text(true) != "true" || Text("x") != "x" {
		t.Error("scalar text mismatch")
	}
	if Text([]any{"a"}) != `["a"]` {
		t.Errorf("array text = %s", Text([]any{"a"}))
	}
}

package patcher

import (
	"testing"

	"github.com/vovakirdan/mzpatch/internal/config"
	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/jsondoc"
)

func newTestPatcher(t *testing.T, cfg *domain.Config, dict domain.Dictionary, overrides []string) *Patcher {
	t.Helper()
	fields, err := config.LoadFields("")
	if err != nil {
		t.Fatalf("LoadFields() failed: %v", err)
	}
	if cfg == nil {
		cfg = &domain.Config{Version: 1, WrapWidth: 58}
	}
	plans, err := CompilePlugins(cfg)
	if err != nil {
		t.Fatalf("CompilePlugins() failed: %v", err)
	}
	return New(Options{
		Config:     cfg,
		Dictionary: dict,
		Overrides:  domain.NewOverrides(overrides),
		Fields:     fields,
		Plugins:    plans,
	})
}

func get(t *testing.T, data []byte, path ...string) any {
	t.Helper()
	root, err := jsondoc.Decode(data)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	v := root
	for _, seg := range path {
		next, ok := jsondoc.Child(v, seg)
		if !ok {
			t.Fatalf("path %v not found in %s", path, data)
		}
		v = next
	}
	return v
}

func TestPatchDataHelloBonjour(t *testing.T) {
	p := newTestPatcher(t, nil, domain.Dictionary{"Hello": "Bonjour"}, nil)

	res, err := p.PatchData("data/Actors.json", []byte(`[null,{"id":1,"name":"Hello","nickname":"Other"}]`))
	if err != nil {
		t.Fatalf("PatchData() failed: %v", err)
	}
	if !res.Changed {
		t.Fatal("expected file to change")
	}
	want := `[null,{"id":1,"name":"Bonjour","nickname":"Other"}]`
	if string(res.Data) != want {
		t.Errorf("got %s, want %s", res.Data, want)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(res.Entries))
	}
	e := res.Entries[0]
	if e.Selector != "data/Actors.json#1.name" || e.Original != "Hello" || e.Translated != "Bonjour" {
		t.Errorf("entry = %+v", e)
	}
}

func TestPatchDataOverrideExemption(t *testing.T) {
	dict := domain.Dictionary{"Hello": "Bonjour"}
	in := []byte(`[null,{"id":1,"name":"Hello"},{"id":2,"name":"Hello"}]`)

	tests := []struct {
		name      string
		overrides []string
		want      string
	}{
		{"field", []string{"data/Actors.json#1.name"}, `[null,{"id":1,"name":"Hello"},{"id":2,"name":"Bonjour"}]`},
		{"whole file", []string{"data/Actors.json"}, string(in)},
		{"other file", []string{"data/Items.json"}, `[null,{"id":1,"name":"Bonjour"},{"id":2,"name":"Bonjour"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPatcher(t, nil, dict, tt.overrides)
			res, err := p.PatchData("data/Actors.json", in)
			if err != nil {
				t.Fatalf("PatchData() failed: %v", err)
			}
			if string(res.Data) != tt.want {
				t.Errorf("got %s, want %s", res.Data, tt.want)
			}
		})
	}
}

func TestPatchDataUnmatchedLeftAlone(t *testing.T) {
	p := newTestPatcher(t, nil, domain.Dictionary{"Potion": "Potion FR"}, nil)

	// Key order, spacing inside values and number formatting survive untouched files.
	in := []byte(`[null, {"name":"Elixir","price":1.50}]`)
	res, err := p.PatchData("data/Items.json", in)
	if err != nil {
		t.Fatalf("PatchData() failed: %v", err)
	}
	if res.Changed || string(res.Data) != string(in) {
		t.Errorf("unmatched file changed: %s", res.Data)
	}
}

func TestPatchDataUnknownFile(t *testing.T) {
	p := newTestPatcher(t, nil, domain.Dictionary{"Hello": "Bonjour"}, nil)
	res, err := p.PatchData("data/Tilesets.json", []byte(`[null,{"name":"Hello"}]`))
	if err != nil {
		t.Fatalf("PatchData() failed: %v", err)
	}
	if res.Changed {
		t.Error("files outside the field schema must not change")
	}
}

func TestPatchDataWrapsDescriptions(t *testing.T) {
	cfg := &domain.Config{Version: 1, WrapWidth: 10}
	p := newTestPatcher(t, cfg, domain.Dictionary{
		"A potion": "The quick brown fox",
		"Potion":   "The quick brown fox",
	}, nil)

	res, err := p.PatchData("data/Items.json", []byte(`[null,{"name":"Potion","description":"A potion"}]`))
	if err != nil {
		t.Fatalf("PatchData() failed: %v", err)
	}
	if got := get(t, res.Data, "1", "description"); got != "The quick\nbrown fox" {
		t.Errorf("description = %q", got)
	}
	if got := get(t, res.Data, "1", "name"); got != "The quick brown fox" {
		t.Errorf("name should not wrap: %q", got)
	}
}

func TestPatchDataSystemTerms(t *testing.T) {
	p := newTestPatcher(t, nil, domain.Dictionary{"Attack": "Attaque", "Gold": "Or"}, nil)
	in := []byte(`{"currencyUnit":"Gold","terms":{"commands":["Fight",null,"Attack"],"messages":{"victory":"%1 won!"}}}`)

	res, err := p.PatchData("data/System.json", in)
	if err != nil {
		t.Fatalf("PatchData() failed: %v", err)
	}
	want := `{"currencyUnit":"Or","terms":{"commands":["Fight",null,"Attaque"],"messages":{"victory":"%1 won!"}}}`
	if string(res.Data) != want {
		t.Errorf("got %s\nwant %s", res.Data, want)
	}
}

func TestPatchDataInvalidJSON(t *testing.T) {
	p := newTestPatcher(t, nil, nil, nil)
	if _, err := p.PatchData("data/Actors.json", []byte(`[null,{`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestPatchDataIdempotent(t *testing.T) {
	cfg := &domain.Config{Version: 2, WrapWidth: 12}
	dict := domain.Dictionary{"Hello": "Bonjour mon ami, comment allez-vous"}
	p := newTestPatcher(t, cfg, dict, nil)
	in := []byte(`[null,{"name":"Hello","description":"Hello"}]`)

	first, err := p.PatchData("data/Items.json", in)
	if err != nil {
		t.Fatalf("PatchData() failed: %v", err)
	}
	second, err := p.PatchData("data/Items.json", in)
	if err != nil {
		t.Fatalf("PatchData() failed: %v", err)
	}
	if string(first.Data) != string(second.Data) {
		t.Errorf("two runs differ:\n%s\n%s", first.Data, second.Data)
	}
}

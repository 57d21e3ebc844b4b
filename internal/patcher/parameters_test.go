package patcher

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/vovakirdan/mzpatch/internal/domain"
)

func TestPluginCommandMZStructured(t *testing.T) {
	cfg := &domain.Config{
		Version:   1,
		WrapWidth: 58,
		ParametersToPatch: []domain.ParameterToPatch{{
			Plugin:   "QuestLog",
			Function: "Show",
			RootType: domain.RootObject,
			ParameterPathsToPatch: []domain.ParameterPathToPatch{
				{Path: domain.Path{"message", "text"}},
			},
		}},
	}
	p := newTestPatcher(t, cfg, domain.Dictionary{"Hello": "Bonjour"}, nil)

	in := mapWith(`{"code":357,"indent":0,"parameters":["QuestLog","Show","",{"message":"{\"text\":\"Hello\",\"id\":\"3\"}"}]},` +
		`{"code":357,"indent":0,"parameters":["QuestLog","Hide","",{"message":"{\"text\":\"Hello\"}"}]}`)

	res, err := p.PatchData("data/Map001.json", in)
	if err != nil {
		t.Fatalf("PatchData() failed: %v", err)
	}
	list := eventList(t, res.Data)

	if got := get(t, res.Data, "events", "1", "pages", "0", "list", "0", "parameters", "3", "message"); got != `{"text":"Bonjour","id":"3"}` {
		t.Errorf("message = %v", got)
	}
	if got := get(t, res.Data, "events", "1", "pages", "0", "list", "1", "parameters", "3", "message"); got != `{"text":"Hello"}` {
		t.Errorf("other function was patched: %v", got)
	}
	if len(list) != 2 || len(res.Entries) != 1 {
		t.Fatalf("list = %d, entries = %d", len(list), len(res.Entries))
	}
	if want := "data/Map001.json#events.1.pages.0.list.0.parameters.3.message.text"; string(res.Entries[0].Selector) != want {
		t.Errorf("selector = %s, want %s", res.Entries[0].Selector, want)
	}
}

func TestPluginCommandMZTranslatesEveryStringWithoutPaths(t *testing.T) {
	cfg := &domain.Config{
		Version:   1,
		WrapWidth: 58,
		ParametersToPatch: []domain.ParameterToPatch{{
			Plugin: "Popup", Function: "Open", RootType: domain.RootObject,
		}},
	}
	p := newTestPatcher(t, cfg, domain.Dictionary{"Yes": "Oui", "No": "Non"}, nil)

	in := mapWith(`{"code":357,"indent":0,"parameters":["Popup","Open","",{"ok":"Yes","cancel":"No","x":"12"}]}`)
	res, err := p.PatchData("data/Map001.json", in)
	if err != nil {
		t.Fatalf("PatchData() failed: %v", err)
	}
	base := []string{"events", "1", "pages", "0", "list", "0", "parameters", "3"}
	if got := get(t, res.Data, append(base, "ok")...); got != "Oui" {
		t.Errorf("ok = %v", got)
	}
	if got := get(t, res.Data, append(base, "cancel")...); got != "Non" {
		t.Errorf("cancel = %v", got)
	}
	if got := get(t, res.Data, append(base, "x")...); got != "12" {
		t.Errorf("x = %v", got)
	}
}

func TestPluginCommandMVDelimited(t *testing.T) {
	cfg := &domain.Config{
		Version:   1,
		WrapWidth: 58,
		ParametersToPatch: []domain.ParameterToPatch{{
			Function: "ShowMsg",
			RootType: domain.RootDelimited,
			ParameterPathsToPatch: []domain.ParameterPathToPatch{
				{Path: domain.Path{"1"}},
				{Path: domain.Path{"9"}},
			},
		}},
	}
	p := newTestPatcher(t, cfg, domain.Dictionary{"Hello": "Bonjour"}, nil)

	in := mapWith(`{"code":356,"indent":0,"parameters":["ShowMsg Hello 5"]},` +
		`{"code":356,"indent":0,"parameters":["Other Hello"]}`)
	res, err := p.PatchData("data/Map001.json", in)
	if err != nil {
		t.Fatalf("PatchData() failed: %v", err)
	}
	list := eventList(t, res.Data)
	if got := param(t, list[0], 0); got != "ShowMsg Bonjour 5" {
		t.Errorf("command = %q", got)
	}
	if got := param(t, list[1], 0); got != "Other Hello" {
		t.Errorf("unmatched command = %q", got)
	}
	if len(res.Skipped) != 1 || !strings.HasSuffix(string(res.Skipped[0].Selector), "parameters.0.9") {
		t.Errorf("skipped = %+v", res.Skipped)
	}
}

func TestPluginCommandCoercion(t *testing.T) {
	cfg := &domain.Config{
		Version:   1,
		WrapWidth: 58,
		ParametersToPatch: []domain.ParameterToPatch{{
			Plugin:   "Shop",
			Function: "Open",
			RootType: domain.RootObject,
			ParameterPathsToPatch: []domain.ParameterPathToPatch{
				{Path: domain.Path{"price"}, Type: domain.TypeNumber},
				{Path: domain.Path{"stock"}, Type: domain.TypeNumber},
				{Path: domain.Path{"names"}, Type: domain.TypeStringArray},
			},
		}},
	}
	dict := domain.Dictionary{"10": "12.50", "3": "many", "Potion": "Potion FR"}
	p := newTestPatcher(t, cfg, dict, nil)

	in := mapWith(`{"code":357,"indent":0,"parameters":["Shop","Open","",{"price":"10","stock":"3","names":"[\"Potion\",\"Ether\"]"}]}`)
	res, err := p.PatchData("data/Map001.json", in)
	if err != nil {
		t.Fatalf("PatchData() failed: %v", err)
	}
	base := []string{"events", "1", "pages", "0", "list", "0", "parameters", "3"}
	if got := get(t, res.Data, append(base, "price")...); got != "12.5" {
		t.Errorf("price = %v", got)
	}
	if got := get(t, res.Data, append(base, "stock")...); got != "3" {
		t.Errorf("stock should be left alone, got %v", got)
	}
	if got := get(t, res.Data, append(base, "names")...); got != `["Potion FR","Ether"]` {
		t.Errorf("names = %v", got)
	}
	if len(res.Skipped) != 1 || !strings.HasSuffix(string(res.Skipped[0].Selector), "stock") {
		t.Errorf("skipped = %+v", res.Skipped)
	}
}

func TestPluginCommandNumberKeepsValidJSON(t *testing.T) {
	cfg := &domain.Config{
		Version:   1,
		WrapWidth: 58,
		ParametersToPatch: []domain.ParameterToPatch{{
			Plugin:                "Shop",
			Function:              "Open",
			RootType:              domain.RootObject,
			ParameterPathsToPatch: []domain.ParameterPathToPatch{{Path: domain.Path{"count"}, Type: domain.TypeNumber}},
		}},
	}
	for _, bad := range []string{"NaN", "Infinity", "0x1p4"} {
		t.Run(bad, func(t *testing.T) {
			p := newTestPatcher(t, cfg, domain.Dictionary{"3": bad}, nil)
			in := mapWith(`{"code":357,"indent":0,"parameters":["Shop","Open","",{"count":3}]}`)

			res, err := p.PatchData("data/Map001.json", in)
			if err != nil {
				t.Fatalf("PatchData() failed: %v", err)
			}
			if !json.Valid(res.Data) {
				t.Fatalf("output is not valid JSON: %s", res.Data)
			}
			if res.Changed {
				t.Errorf("file changed: %s", res.Data)
			}
			if len(res.Skipped) != 1 || !strings.HasSuffix(string(res.Skipped[0].Selector), "count") {
				t.Errorf("skipped = %+v", res.Skipped)
			}
		})
	}
}

func TestPluginCommandParametersPassDisabled(t *testing.T) {
	cfg := &domain.Config{
		Version:   1,
		WrapWidth: 58,
		ParametersToPatch: []domain.ParameterToPatch{{
			Function: "ShowMsg", RootType: domain.RootDelimited,
		}},
	}
	fields := newTestPatcher(t, cfg, nil, nil).fields
	p := New(Options{
		Config:     cfg,
		Dictionary: domain.Dictionary{"ShowMsg Hello": "ShowMsg Bonjour"},
		Fields:     fields,
		Passes:     []string{PassDictionary},
	})

	in := mapWith(`{"code":356,"indent":0,"parameters":["ShowMsg Hello"]}`)
	res, err := p.PatchData("data/Map001.json", in)
	if err != nil {
		t.Fatalf("PatchData() failed: %v", err)
	}
	if res.Changed {
		t.Error("plugin commands patched with the parameters pass disabled")
	}
}

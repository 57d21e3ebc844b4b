package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mzpatch.yaml")
	src := "workers: 3\nplugin_workers: 1\ntimeout: 30s\nhistory_db: /tmp/h.db\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Workers != 3 || cfg.PluginWorkers != 1 {
		t.Errorf("workers = %d/%d, want 3/1", cfg.Workers, cfg.PluginWorkers)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.HistoryDB != "/tmp/h.db" {
		t.Errorf("history_db = %q", cfg.HistoryDB)
	}
	if !cfg.Backup {
		t.Error("unset keys should keep their defaults")
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing custom config")
	}
}

func TestEmbeddedDefaultMatchesHardcoded(t *testing.T) {
	cfg := DefaultConfig()
	embedded := Config{}
	if err := yaml.Unmarshal(defaultConfigYAML, &embedded); err != nil {
		t.Fatalf("embedded config does not parse: %v", err)
	}
	if embedded != cfg {
		t.Errorf("embedded default %+v differs from DefaultConfig() %+v", embedded, cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MZPATCH_WORKERS", "7")
	t.Setenv("MZPATCH_TIMEOUT", "2m")
	t.Setenv("MZPATCH_DB", "/var/db/history.db")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv() failed: %v", err)
	}
	if cfg.Workers != 7 || cfg.Timeout != 2*time.Minute || cfg.HistoryDB != "/var/db/history.db" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.PluginWorkers != 2 {
		t.Errorf("plugin workers changed without env: %d", cfg.PluginWorkers)
	}
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	t.Setenv("MZPATCH_WORKERS", "many")
	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err == nil {
		t.Error("expected parse error")
	}
}

func TestDefaultFieldSchema(t *testing.T) {
	s, err := LoadFields("")
	if err != nil {
		t.Fatalf("LoadFields() failed: %v", err)
	}

	tests := []struct {
		file string
		want string
		ok   bool
	}{
		{"data/Actors.json", "actors", true},
		{"Map001.json", "map", true},
		{"data/MapInfos.json", "map_infos", true},
		{"data/System.json", "system", true},
		{"data/Tilesets.json", "", false},
		{"data/Animations.json", "", false},
	}
	for _, tt := range tests {
		k, ok := s.KindFor(tt.file)
		if ok != tt.ok {
			t.Errorf("KindFor(%q) ok = %v, want %v", tt.file, ok, tt.ok)
			continue
		}
		if ok && k.Name != tt.want {
			t.Errorf("KindFor(%q) = %q, want %q", tt.file, k.Name, tt.want)
		}
	}

	m, _ := s.KindFor("Map002.json")
	if len(m.Events) != 1 || len(m.Events[0]) != 5 {
		t.Errorf("map events = %v", m.Events)
	}
}

func TestCompileRejectsBadSchema(t *testing.T) {
	tests := []FieldSchema{
		{Kinds: []FileKind{{Name: "x"}}},
		{Kinds: []FileKind{{Name: "x", Match: "("}}},
		{Kinds: []FileKind{{Name: "x", Match: "a", Fields: []FieldRule{{Path: " "}}}}},
	}
	for i, fs := range tests {
		if _, err := Compile(fs); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestLoadFieldsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	src := "kinds:\n  - name: custom\n    match: '^Custom\\.json$'\n    fields:\n      - path: \"*.label\"\n        wrap: true\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	s, err := LoadFields(path)
	if err != nil {
		t.Fatalf("LoadFields() failed: %v", err)
	}
	k, ok := s.KindFor("Custom.json")
	if !ok || len(k.Fields) != 1 || !k.Fields[0].Wrap {
		t.Errorf("custom kind not loaded: %+v", k)
	}
	if _, ok := s.KindFor("Actors.json"); ok {
		t.Error("custom schema should replace the default one")
	}
}

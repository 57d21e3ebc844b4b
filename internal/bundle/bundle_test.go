package bundle

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/vovakirdan/mzpatch/internal/domain"
)

var sampleFiles = map[string]string{
	ConfigFile:     `{"version":2,"wrapWidth":50,"variablesToPatch":[3],"parametersToPatch":[{"plugin":"Q","function":"Show","rootType":"object","parameterPathsToPatch":[{"path":"message.text"}]}]}`,
	DictionaryFile: `{"Hello":"Bonjour","Line one\nLine two":"Ligne"}`,
	OverridesFile:  `["data/Actors.json#1.name"]`,
	CreditsFile:    "  Fan translation by Team\n",

	"overrides/img/pictures/Logo.png": "png bytes",
	"overrides/data/Skills.json":      "[]",
}

func writeDirBundle(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll() failed: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() failed: %v", err)
		}
	}
	return dir
}

func writeZipBundle(t *testing.T, files map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "patch.zip")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip Create() failed: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip Write() failed: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close() failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	return p
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		write func(*testing.T, map[string]string) string
	}{
		{"directory", writeDirBundle},
		{"zip", writeZipBundle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(tt.write(t, sampleFiles))
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			defer b.Close()

			info, err := b.Load()
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}

			if info.Config.Version != 2 || info.Config.WrapWidth != 50 {
				t.Errorf("config = %+v", info.Config)
			}
			if got := info.Config.ParametersToPatch[0].ParameterPathsToPatch[0].Path; !slices.Equal(got, domain.Path{"message", "text"}) {
				t.Errorf("path = %v", got)
			}
			if info.Dictionary["Line one\nLine two"] != "Ligne" {
				t.Errorf("dictionary = %v", info.Dictionary)
			}
			if info.Credits != "Fan translation by Team" {
				t.Errorf("credits = %q", info.Credits)
			}
			wantFiles := []string{"data/Skills.json", "img/pictures/Logo.png"}
			if !slices.Equal(info.OverrideFiles, wantFiles) {
				t.Errorf("override files = %v, want %v", info.OverrideFiles, wantFiles)
			}
			wantOverrides := append([]string{"data/Actors.json#1.name"}, wantFiles...)
			if !slices.Equal(info.Overrides, wantOverrides) {
				t.Errorf("overrides = %v, want %v", info.Overrides, wantOverrides)
			}

			data, err := b.ReadOverride("img/pictures/Logo.png")
			if err != nil {
				t.Fatalf("ReadOverride() failed: %v", err)
			}
			if string(data) != "png bytes" {
				t.Errorf("override = %q", data)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := writeDirBundle(t, map[string]string{
		ConfigFile:     `{"version":1}`,
		DictionaryFile: `{}`,
	})
	b, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	info, err := b.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if info.Credits != DefaultCredits {
		t.Errorf("credits = %q", info.Credits)
	}
	if len(info.Overrides) != 0 || len(info.OverrideFiles) != 0 {
		t.Errorf("overrides = %v / %v", info.Overrides, info.OverrideFiles)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  error
	}{
		{"missing config", map[string]string{DictionaryFile: `{}`}, domain.ErrSharedIO},
		{"missing dictionary", map[string]string{ConfigFile: `{"version":1}`}, domain.ErrSharedIO},
		{"newer version", map[string]string{ConfigFile: `{"version":7}`, DictionaryFile: `{}`}, domain.ErrUnsupportedVersion},
		{"bad dictionary", map[string]string{ConfigFile: `{"version":1}`, DictionaryFile: `{"a":1}`}, domain.ErrInvalidConfig},
		{"bad path", map[string]string{ConfigFile: `{"version":1,"parametersToPatch":[{"parameterPathsToPatch":[{"path":{}}]}]}`, DictionaryFile: `{}`}, domain.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(writeDirBundle(t, tt.files))
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			_, err = b.Load()
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.zip"))
	if !errors.Is(err, domain.ErrSharedIO) {
		t.Errorf("Open() error = %v", err)
	}
}

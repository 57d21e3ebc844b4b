// Package bundle reads a downloaded patch bundle from a zip archive or an
// unpacked directory.
//
// Layout:
//
//	config.json       structural configuration (required)
//	dictionary.json   source → target text (required)
//	overrides.json    selectors exempt from patching (optional)
//	credits.txt       attribution drawn on the title screen (optional)
//	overrides/...     files copied verbatim into the game (optional)
package bundle

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/gate"
)

// Bundle file names.
const (
	ConfigFile     = "config.json"
	DictionaryFile = "dictionary.json"
	OverridesFile  = "overrides.json"
	CreditsFile    = "credits.txt"
	OverridesDir   = "overrides"
)

// DefaultCredits is drawn when the bundle ships no credits.txt.
const DefaultCredits = "Translation patch"

// Bundle is an open patch bundle.
type Bundle struct {
	path   string
	fsys   fs.FS
	closer io.Closer
}

// Open opens the bundle at p. A directory is read in place; anything else
// must be a zip archive.
func Open(p string) (*Bundle, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, domain.E(domain.KindSharedIO, "bundle: open", p, err)
	}
	if info.IsDir() {
		return &Bundle{path: p, fsys: os.DirFS(p)}, nil
	}

	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, domain.E(domain.KindSharedIO, "bundle: open", p, err)
	}
	return &Bundle{path: p, fsys: zr, closer: zr}, nil
}

// Close releases the archive, if any.
func (b *Bundle) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Path returns the bundle location.
func (b *Bundle) Path() string { return b.path }

// Load reads the whole bundle into a PatchInfo. The config version is
// probed before the config is decoded, so a bundle from a newer tool fails
// with UnsupportedVersion and nothing else is read.
func (b *Bundle) Load() (*domain.PatchInfo, error) {
	raw, err := b.read(ConfigFile)
	if err != nil {
		return nil, err
	}
	if _, err := gate.Probe(raw); err != nil {
		return nil, err
	}

	var cfg domain.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, domain.E(domain.KindInvalidConfig, "bundle: decode", ConfigFile, err)
	}

	info := &domain.PatchInfo{PatchPath: b.path, Config: &cfg}

	raw, err = b.read(DictionaryFile)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &info.Dictionary); err != nil {
		return nil, domain.E(domain.KindInvalidConfig, "bundle: decode", DictionaryFile, err)
	}

	raw, err = b.read(OverridesFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(raw, &info.Overrides); err != nil {
			return nil, domain.E(domain.KindInvalidConfig, "bundle: decode", OverridesFile, err)
		}
	}

	raw, err = b.read(CreditsFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		info.Credits = DefaultCredits
	case err != nil:
		return nil, err
	default:
		info.Credits = strings.TrimSpace(string(raw))
		if info.Credits == "" {
			info.Credits = DefaultCredits
		}
	}

	files, err := b.overrideFiles()
	if err != nil {
		return nil, err
	}
	info.OverrideFiles = files
	// Replaced files are never patched.
	info.Overrides = append(info.Overrides, files...)

	return info, nil
}

// ReadOverride returns the bundled replacement for the game-relative path rel.
func (b *Bundle) ReadOverride(rel string) ([]byte, error) {
	return b.read(path.Join(OverridesDir, rel))
}

func (b *Bundle) overrideFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(b.fsys, OverridesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, strings.TrimPrefix(p, OverridesDir+"/"))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.E(domain.KindSharedIO, "bundle: list overrides", b.path, err)
	}
	sort.Strings(files)
	return files, nil
}

func (b *Bundle) read(name string) ([]byte, error) {
	data, err := fs.ReadFile(b.fsys, name)
	if err != nil {
		return nil, domain.E(domain.KindSharedIO, "bundle: read", name, err)
	}
	return data, nil
}

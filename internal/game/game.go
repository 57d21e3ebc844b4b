// Package game locates an RPG Maker MV/MZ installation in a directory the
// user names and reads the few System.json fields the engine needs.
package game

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/vovakirdan/mzpatch/internal/domain"
)

// SystemFile is the data file holding game-wide settings.
const SystemFile = "System.json"

// PluginsFile is the plugin list, relative to the js directory.
const PluginsFile = "plugins.js"

// Locate builds a GameInfo from a game directory or the path of its
// executable. MV deployments keep their content under www/.
func Locate(path string) (*domain.GameInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("game: resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	g := &domain.GameInfo{GameDir: abs}
	if !info.IsDir() {
		g.ExePath = abs
		g.GameDir = filepath.Dir(abs)
	} else {
		g.ExePath = findExe(abs)
	}

	base := g.GameDir
	if !isDir(filepath.Join(base, "data")) && isDir(filepath.Join(base, "www", "data")) {
		base = filepath.Join(base, "www")
	}
	g.DataPath = filepath.Join(base, "data")
	g.JsPath = filepath.Join(base, "js")
	g.ImgPath = filepath.Join(base, "img")

	if !isDir(g.DataPath) {
		return nil, fmt.Errorf("game: no data directory in %s", g.GameDir)
	}

	sys, err := ReadSystem(g)
	if err != nil {
		return nil, err
	}
	g.GameTitle = sys.GameTitle
	return g, nil
}

// System holds the System.json fields used outside the patch passes.
type System struct {
	GameTitle     string
	Title1Name    string
	EncryptionKey string
	// EncryptedImages is set when images ship as .rpgmvp/.png_.
	EncryptedImages bool
}

// ReadSystem reads System.json from the game's data directory.
func ReadSystem(g *domain.GameInfo) (*System, error) {
	path, err := findFold(g.DataPath, SystemFile)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("game: read system: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("game: %s is not valid JSON", path)
	}

	r := gjson.ParseBytes(data)
	return &System{
		GameTitle:       r.Get("gameTitle").String(),
		Title1Name:      r.Get("title1Name").String(),
		EncryptionKey:   r.Get("encryptionKey").String(),
		EncryptedImages: r.Get("hasEncryptedImages").Bool(),
	}, nil
}

// Rel returns abs relative to the game directory, with forward slashes.
func Rel(g *domain.GameInfo, abs string) (string, error) {
	rel, err := filepath.Rel(g.GameDir, abs)
	if err != nil {
		return "", fmt.Errorf("game: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// Abs joins a game-relative path onto the game directory.
func Abs(g *domain.GameInfo, rel string) string {
	return filepath.Join(g.GameDir, filepath.FromSlash(rel))
}

// DataFiles lists every data/*.json file, game-relative and sorted.
func DataFiles(g *domain.GameInfo) ([]string, error) {
	entries, err := os.ReadDir(g.DataPath)
	if err != nil {
		return nil, fmt.Errorf("game: list data: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		rel, err := Rel(g, filepath.Join(g.DataPath, e.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, rel)
	}
	sort.Strings(files)
	return files, nil
}

// PluginsJS returns the game-relative path of js/plugins.js.
func PluginsJS(g *domain.GameInfo) (string, error) {
	return Rel(g, filepath.Join(g.JsPath, PluginsFile))
}

// PluginSource returns the game-relative path of a path under js/.
func PluginSource(g *domain.GameInfo, jsRel string) (string, error) {
	return Rel(g, filepath.Join(g.JsPath, filepath.FromSlash(jsRel)))
}

// TitleImage finds the title screen image named name under img/titles1.
// Plain and encrypted variants are tried in that order.
func TitleImage(g *domain.GameInfo, name string) (string, error) {
	if name == "" {
		return "", errors.New("game: no title image configured")
	}
	dir := filepath.Join(g.ImgPath, "titles1")
	for _, ext := range []string{".png", ".rpgmvp", ".png_"} {
		p := filepath.Join(dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return Rel(g, p)
		}
	}
	return "", fmt.Errorf("game: title image %q not found: %w", name, fs.ErrNotExist)
}

// findExe picks the game executable in dir. Game.exe wins over other .exe
// files. It returns "" when there is none (Linux and web deployments).
func findExe(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var first string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".exe") {
			continue
		}
		if strings.EqualFold(e.Name(), "Game.exe") {
			return filepath.Join(dir, e.Name())
		}
		if first == "" {
			first = filepath.Join(dir, e.Name())
		}
	}
	return first
}

// findFold finds name in dir ignoring case; games built on Windows are not
// consistent about System.json vs system.json.
func findFold(dir, name string) (string, error) {
	p := filepath.Join(dir, name)
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name(), name) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%s not found in %s: %w", name, dir, fs.ErrNotExist)
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

package engine

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/vovakirdan/mzpatch/internal/credits"
	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/game"
	"github.com/vovakirdan/mzpatch/internal/patcher"
)

// pluginTarget is one file for the plugin pool. A nil plan marks plugins.js.
type pluginTarget struct {
	rel  string
	plan *patcher.PluginPlan
}

// targets are the files a run touches, grouped by the pool that handles them.
type targets struct {
	data      []string
	plugins   []pluginTarget
	overrides []string
	title     string
	// missing are plugin sources named by the bundle but not installed.
	missing []string
}

func (t *targets) count() int {
	n := len(t.data) + len(t.plugins) + len(t.overrides) + len(t.missing)
	if t.title != "" {
		n++
	}
	return n
}

// all lists every target path, without duplicates.
func (t *targets) all() []string {
	out := slices.Clone(t.data)
	for _, p := range t.plugins {
		out = append(out, p.rel)
	}
	out = append(out, t.overrides...)
	if t.title != "" {
		out = append(out, t.title)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// scan lists the files the enabled passes will touch.
func (r *run) scan() (*targets, error) {
	t := &targets{}

	var overrides []string
	if r.plan.Has(PassOverrideFiles) {
		for _, rel := range r.patch.OverrideFiles {
			if !filepath.IsLocal(filepath.FromSlash(rel)) {
				return nil, domain.Errorf(domain.KindInvalidConfig, "engine: scan", rel, "override file escapes the game directory")
			}
			overrides = append(overrides, rel)
		}
	}
	t.overrides = overrides

	data, err := game.DataFiles(r.game)
	if err != nil {
		return nil, domain.E(domain.KindSharedIO, "engine: scan", r.game.DataPath, err)
	}
	for _, rel := range data {
		// Replaced wholesale by the override pass.
		if slices.Contains(overrides, rel) {
			continue
		}
		t.data = append(t.data, rel)
	}

	script := false
	for i := range r.plan.Plugins {
		pl := &r.plan.Plugins[i]
		if pl.Script != nil {
			script = true
		}
		if len(pl.Rules) == 0 || !r.plan.Has(patcher.PassPluginRules) {
			continue
		}
		rel, err := game.PluginSource(r.game, pl.SourcePath())
		if err != nil {
			return nil, domain.E(domain.KindSharedIO, "engine: scan", pl.Plugin, err)
		}
		if _, err := os.Stat(game.Abs(r.game, rel)); err != nil {
			t.missing = append(t.missing, rel)
			continue
		}
		t.plugins = append(t.plugins, pluginTarget{rel: rel, plan: pl})
	}
	if script && r.plan.Has(patcher.PassPluginScript) {
		rel, err := game.PluginsJS(r.game)
		if err != nil {
			return nil, domain.E(domain.KindSharedIO, "engine: scan", game.PluginsFile, err)
		}
		t.plugins = append(t.plugins, pluginTarget{rel: rel})
	}

	if r.plan.Has(credits.PassCredits) && r.plan.Config.CreditsLocation != "" {
		t.title = r.titleImage()
	}
	return t, nil
}

// titleImage finds the title screen image. A game without one only loses
// the credits overlay.
func (r *run) titleImage() string {
	sys, err := game.ReadSystem(r.game)
	if err != nil {
		r.e.logger.Warn("credits skipped", "err", err)
		return ""
	}
	if sys.GameTitle != "" {
		r.title = sys.GameTitle
	}
	rel, err := game.TitleImage(r.game, sys.Title1Name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.e.logger.Warn("credits skipped: no title image", "name", sys.Title1Name)
		} else {
			r.e.logger.Warn("credits skipped", "err", err)
		}
		return ""
	}
	return rel
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/mzpatch/internal/atomicfile"
	"github.com/vovakirdan/mzpatch/internal/credits"
	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/game"
	"github.com/vovakirdan/mzpatch/internal/patcher"
)

const filePerm = 0o644

// patchAll runs the data and plugin pools side by side, then the override
// copies and the credits overlay. It returns only fatal errors; a file
// that fails is recorded in the report and the run goes on.
func (r *run) patchAll(ctx context.Context, t *targets) error {
	for _, rel := range t.missing {
		r.fail(rel, domain.Errorf(domain.KindIO, "engine: plugin source", rel, "plugin is not installed"))
	}

	// Feed both pools from their own goroutines so neither blocks the other
	// while waiting for a free slot. A fatal error in one pool stops both.
	feed, feedCtx := errgroup.WithContext(ctx)
	dataGroup, dataCtx := errgroup.WithContext(feedCtx)
	dataGroup.SetLimit(r.e.opts.Workers)
	pluginGroup, pluginCtx := errgroup.WithContext(feedCtx)
	pluginGroup.SetLimit(r.e.opts.PluginWorkers)

	feed.Go(func() error {
		for _, rel := range t.data {
			dataGroup.Go(func() error {
				return r.patchFile(dataCtx, rel, func(data []byte) (*patcher.Result, error) {
					return r.patcher.PatchData(rel, data)
				})
			})
		}
		return dataGroup.Wait()
	})
	feed.Go(func() error {
		for _, pt := range t.plugins {
			pluginGroup.Go(func() error {
				return r.patchFile(pluginCtx, pt.rel, func(data []byte) (*patcher.Result, error) {
					if pt.plan == nil {
						return r.patcher.PatchPluginsJS(pt.rel, data)
					}
					return r.patcher.PatchPluginSource(pt.rel, *pt.plan, data)
				})
			})
		}
		return pluginGroup.Wait()
	})
	if err := feed.Wait(); err != nil {
		return classify(err)
	}

	for _, rel := range t.overrides {
		if err := ctx.Err(); err != nil {
			return classify(err)
		}
		if err := r.copyOverride(rel); err != nil {
			return err
		}
	}

	if t.title != "" {
		if err := ctx.Err(); err != nil {
			return classify(err)
		}
		r.applyCredits(t.title)
	}
	return nil
}

// patchFile reads the pristine bytes of rel, patches them and writes the
// result back when something changed.
func (r *run) patchFile(ctx context.Context, rel string, apply func([]byte) (*patcher.Result, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := r.store.Pristine(rel)
	if err != nil {
		r.fail(rel, domain.E(domain.KindIO, "engine: read", rel, err))
		return nil
	}

	res, err := apply(data)
	if err != nil {
		if domain.IsFatal(err) {
			return err
		}
		r.fail(rel, err)
		return nil
	}

	fr := res.FileReport(rel)
	if res.Changed && !r.e.opts.DryRun {
		if err := atomicfile.WriteFile(game.Abs(r.game, rel), res.Data, filePerm); err != nil {
			r.fail(rel, domain.E(domain.KindIO, "engine: write", rel, err))
			return nil
		}
	}

	if res.Changed {
		r.e.logger.Info("patched", "file", rel, "entries", len(fr.Entries), "skipped", len(fr.Skipped))
	} else {
		r.e.logger.Debug("unchanged", "file", rel)
	}
	r.addFile(fr)
	return nil
}

// copyOverride writes a bundled replacement file into the game. A file
// missing from the bundle fails alone; any other bundle read error is fatal.
func (r *run) copyOverride(rel string) error {
	if r.e.opts.Overrides == nil {
		r.fail(rel, domain.Errorf(domain.KindIO, "engine: override", rel, "no bundle to read override files from"))
		return nil
	}
	data, err := r.e.opts.Overrides.ReadOverride(rel)
	if err != nil {
		if domain.IsFatal(err) && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		r.fail(rel, domain.E(domain.KindIO, "engine: override", rel, err))
		return nil
	}
	if !r.e.opts.DryRun {
		if err := atomicfile.WriteFile(game.Abs(r.game, rel), data, filePerm); err != nil {
			r.fail(rel, domain.E(domain.KindIO, "engine: override", rel, err))
			return nil
		}
	}
	r.e.logger.Info("replaced", "file", rel, "bytes", len(data))
	r.addFile(domain.FileReport{Path: rel, Status: domain.FilePatched})
	return nil
}

// applyCredits draws the credits onto the pristine title image.
func (r *run) applyCredits(rel string) {
	data, err := r.store.Pristine(rel)
	if err != nil {
		r.fail(rel, domain.E(domain.KindIO, "engine: credits", rel, err))
		return
	}
	out, err := credits.Apply(data, credits.IsEncrypted(rel), r.patch.Credits, r.plan.Config.CreditsLocation)
	if err != nil {
		r.fail(rel, domain.E(domain.KindIO, "engine: credits", rel, err))
		return
	}
	if !r.e.opts.DryRun {
		if err := atomicfile.WriteFile(game.Abs(r.game, rel), out, filePerm); err != nil {
			r.fail(rel, domain.E(domain.KindIO, "engine: credits", rel, err))
			return
		}
	}
	r.e.logger.Info("credits drawn", "file", rel, "corner", r.plan.Config.CreditsLocation)
	r.addFile(domain.FileReport{
		Path:    rel,
		Status:  domain.FilePatched,
		Entries: []domain.Entry{{Selector: domain.NewSelector(rel, nil), Translated: r.patch.Credits}},
	})
}

func (r *run) fail(rel string, err error) {
	r.e.logger.Warn("file failed", "file", rel, "err", err)
	r.addFile(domain.FileReport{Path: rel, Status: domain.FileFailed, Error: fmt.Sprint(err)})
}

// Package engine orchestrates a patch run: it checks the bundle config,
// snapshots the pristine files, runs the passes over every target file on
// bounded worker pools and writes the results atomically.
package engine

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mzpatch/internal/backup"
	"github.com/vovakirdan/mzpatch/internal/config"
	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/gate"
	"github.com/vovakirdan/mzpatch/internal/patcher"
	"github.com/vovakirdan/mzpatch/internal/registry"
)

// PassOverrideFiles copies bundled replacement files into the game.
const PassOverrideFiles = "override-files"

func init() {
	registry.Register(registry.Pass{ID: PassOverrideFiles, Title: "Bundled replacement files", MinVersion: 1, Order: 60})
}

// DefaultPluginWorkers bounds the plugin file pool.
const DefaultPluginWorkers = 2

// OverrideSource provides the bytes of bundled replacement files.
type OverrideSource interface {
	ReadOverride(rel string) ([]byte, error)
}

// History records finished runs.
type History interface {
	SaveRun(ctx context.Context, r *domain.Report, gameTitle string) (int64, error)
}

// Progress is reported after every finished file.
type Progress struct {
	Done  int
	Total int
	File  string
}

// Options configure an Engine.
type Options struct {
	// Workers bounds the data file pool. Zero means runtime.NumCPU().
	Workers int
	// PluginWorkers bounds the plugin file pool. Zero means 2.
	PluginWorkers int
	// Timeout ends the run with a Timeout error. Zero means none.
	Timeout time.Duration
	// DryRun runs every pass but writes nothing.
	DryRun bool
	// NoBackup skips the pristine snapshot. Files are then patched from
	// their current content.
	NoBackup bool
	// Fields is the data file schema. Nil loads the embedded default.
	Fields *config.Schema

	Overrides OverrideSource
	History   History
	Logger    *log.Logger

	// OnProgress and OnState may be called from several goroutines.
	OnProgress func(Progress)
	OnState    func(domain.State)
}

// Engine runs patches. It is safe to reuse across runs.
type Engine struct {
	opts   Options
	logger *log.Logger
}

// New creates an Engine.
func New(opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.PluginWorkers <= 0 {
		opts.PluginWorkers = DefaultPluginWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{opts: opts, logger: logger}
}

// run is the state of one Run call.
type run struct {
	e       *Engine
	game    *domain.GameInfo
	patch   *domain.PatchInfo
	plan    *gate.Plan
	store   *backup.Store
	patcher *patcher.Patcher
	title   string

	mu     sync.Mutex
	report *domain.Report

	done  atomic.Int64
	total int
}

// Run applies patch to game. The report is always returned; a fatal error
// is in Report.Err and the state is Aborted.
func (e *Engine) Run(ctx context.Context, game *domain.GameInfo, patch *domain.PatchInfo) *domain.Report {
	r := &run{
		e:     e,
		game:  game,
		patch: patch,
		store: backup.New(game.GameDir, e.logger),
		title: game.GameTitle,
		report: &domain.Report{
			GameDir:   game.GameDir,
			PatchPath: patch.PatchPath,
			StartedAt: time.Now(),
			DryRun:    e.opts.DryRun,
		},
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	err := r.execute(ctx)
	return r.finish(ctx, err)
}

func (r *run) execute(ctx context.Context) error {
	r.setState(domain.StateValidating)
	plan, err := gate.Check(r.patch.Config)
	if err != nil {
		return err
	}
	r.plan = plan
	r.report.Version = plan.Config.Version
	r.e.logger.Info("config accepted", "version", plan.Config.Version, "passes", plan.PassIDs())

	if err := ctx.Err(); err != nil {
		return classify(err)
	}

	r.setState(domain.StateScanning)
	t, err := r.scan()
	if err != nil {
		return err
	}
	r.total = t.count()
	r.e.logger.Info("scanned game", "data", len(t.data), "plugins", len(t.plugins), "overrides", len(t.overrides), "total", r.total)

	if !r.e.opts.DryRun && !r.e.opts.NoBackup {
		if _, err := r.store.Snapshot(t.all(), t.overrides); err != nil {
			return err
		}
	}

	fields := r.e.opts.Fields
	if fields == nil {
		if fields, err = config.LoadFields(""); err != nil {
			return domain.E(domain.KindInvalidConfig, "engine: field schema", "", err)
		}
	}
	r.patcher = patcher.New(patcher.Options{
		Config:     plan.Config,
		Dictionary: r.patch.Dictionary,
		Overrides:  domain.NewOverrides(r.patch.Overrides),
		Fields:     fields,
		Plugins:    plan.Plugins,
		Passes:     plan.PassIDs(),
		Logger:     r.e.logger,
	})

	r.setState(domain.StatePatching)
	if err := r.patchAll(ctx, t); err != nil {
		return err
	}

	if !r.e.opts.DryRun {
		if err := r.writeSummary(); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) finish(ctx context.Context, err error) *domain.Report {
	rep := r.report
	rep.FinishedAt = time.Now()
	rep.SortFiles()

	if err != nil {
		rep.Err = err
		rep.Error = err.Error()
		r.setState(domain.StateAborted)
		r.e.logger.Error("patch aborted", "err", err)
	} else {
		r.setState(domain.StateFinalized)
		r.e.logger.Info("patch finished",
			"patched", rep.Count(domain.FilePatched),
			"failed", rep.Count(domain.FileFailed),
			"entries", rep.EntryCount(),
			"skipped", rep.SkippedCount())
	}

	if h := r.e.opts.History; h != nil {
		// The run context may be the reason the run ended.
		if _, err := h.SaveRun(context.WithoutCancel(ctx), rep, r.title); err != nil {
			r.e.logger.Warn("could not record run", "err", err)
		}
	}
	return rep
}

func (r *run) setState(s domain.State) {
	r.report.State = s
	if r.e.opts.OnState != nil {
		r.e.opts.OnState(s)
	}
}

func (r *run) addFile(fr domain.FileReport) {
	r.mu.Lock()
	r.report.Files = append(r.report.Files, fr)
	r.mu.Unlock()

	done := int(r.done.Add(1))
	if r.e.opts.OnProgress != nil {
		r.e.opts.OnProgress(Progress{Done: done, Total: r.total, File: fr.Path})
	}
}

// classify turns context errors into domain errors.
func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.E(domain.KindTimeout, "engine: run", "", err)
	case errors.Is(err, context.Canceled):
		return domain.E(domain.KindCancelled, "engine: run", "", err)
	}
	return err
}

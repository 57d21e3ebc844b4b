// Package patcher rewrites RPG Maker data files, plugin sources and
// plugins.js from a dictionary and a structural configuration.
//
// A Patcher is safe for concurrent use: it holds only read-only state and
// every call works on its own copy of the file bytes.
package patcher

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mzpatch/internal/config"
	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/reflow"
)

// Options configure a Patcher.
type Options struct {
	// Config must already be normalized by the gate.
	Config     *domain.Config
	Dictionary domain.Dictionary
	Overrides  *domain.Overrides
	Fields     *config.Schema
	Plugins    []PluginPlan
	// Passes lists the enabled pass IDs. Nil enables every pass.
	Passes []string
	Logger *log.Logger
}

// Patcher applies the enabled passes to one file at a time.
type Patcher struct {
	cfg       *domain.Config
	dict      domain.Dictionary
	overrides *domain.Overrides
	fields    *config.Schema
	plugins   []PluginPlan
	passes    []string
	metrics   reflow.Metrics
	logger    *log.Logger
}

// New creates a Patcher.
func New(opts Options) *Patcher {
	cfg := opts.Config
	if cfg == nil {
		cfg = &domain.Config{Version: 1, WrapWidth: reflow.DefaultWidth}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Patcher{
		cfg:       cfg,
		dict:      opts.Dictionary,
		overrides: opts.Overrides,
		fields:    opts.Fields,
		plugins:   opts.Plugins,
		passes:    opts.Passes,
		metrics:   reflow.ForLocale(cfg.Locale),
		logger:    logger,
	}
}

// Enabled reports whether the pass with the given ID runs.
func (p *Patcher) Enabled(id string) bool {
	return p.passes == nil || slices.Contains(p.passes, id)
}

// Plugins returns the compiled plugin plans.
func (p *Patcher) Plugins() []PluginPlan { return p.plugins }

// Result is the outcome of patching one file.
type Result struct {
	Data    []byte
	Changed bool
	Entries []domain.Entry
	Skipped []domain.SkippedEntry
}

// FileReport converts the result into a report row for rel.
func (r *Result) FileReport(rel string) domain.FileReport {
	status := domain.FileUnchanged
	if r.Changed {
		status = domain.FilePatched
	}
	return domain.FileReport{
		Path:    rel,
		Status:  status,
		Entries: r.Entries,
		Skipped: r.Skipped,
	}
}

// fileRun collects what happened to one file.
type fileRun struct {
	p       *Patcher
	rel     string
	entries []domain.Entry
	skipped []domain.SkippedEntry
}

func (p *Patcher) newRun(rel string) *fileRun {
	return &fileRun{p: p, rel: rel}
}

func (r *fileRun) result(data []byte, changed bool) *Result {
	return &Result{Data: data, Changed: changed, Entries: r.entries, Skipped: r.skipped}
}

// lookup returns the translation for text at field unless the field is exempt.
func (r *fileRun) lookup(field domain.Path, text string) (string, bool) {
	if r.p.overrides.Exempt(domain.NewSelector(r.rel, field)) {
		return "", false
	}
	return r.p.dict.Lookup(text)
}

// translate looks text up and reflows the hit when wrap is set. It records
// an entry and returns true only when the value actually changes.
func (r *fileRun) translate(field domain.Path, text string, wrap bool, hints reflow.Hints) (string, bool) {
	tr, ok := r.lookup(field, text)
	if !ok {
		return text, false
	}
	if wrap {
		tr = r.reflow(tr, hints)
	}
	if tr == text {
		return text, false
	}
	r.record(field, text, tr)
	return tr, true
}

func (r *fileRun) reflow(text string, hints reflow.Hints) string {
	return reflow.Reflow(text, reflow.Budget(r.p.cfg, hints), r.p.metrics)
}

func (r *fileRun) wrapLines(text string, hints reflow.Hints) []string {
	return reflow.Wrap(text, reflow.Budget(r.p.cfg, hints), r.p.metrics)
}

func (r *fileRun) record(field domain.Path, original, translated string) {
	r.entries = append(r.entries, domain.Entry{
		Selector:   domain.NewSelector(r.rel, field),
		Original:   original,
		Translated: translated,
	})
}

func (r *fileRun) skip(field domain.Path, err error) {
	r.skipped = append(r.skipped, domain.SkippedEntry{
		Selector: domain.NewSelector(r.rel, field),
		Reason:   err.Error(),
	})
	r.p.logger.Debug("skipped entry", "file", r.rel, "field", field.String(), "reason", err)
}

// join builds a child path without aliasing the parent's backing array.
func join(base domain.Path, segs ...string) domain.Path {
	out := make(domain.Path, 0, len(base)+len(segs))
	out = append(out, base...)
	return append(out, segs...)
}

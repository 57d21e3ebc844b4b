package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vovakirdan/mzpatch/internal/atomicfile"
	"github.com/vovakirdan/mzpatch/internal/backup"
	"github.com/vovakirdan/mzpatch/internal/domain"
)

// Summary is the patch log written to <game>/patch-summary.json.
type Summary struct {
	PatchedAt    time.Time                 `json:"patchedAt"`
	PatchPath    string                    `json:"patchPath,omitempty"`
	Version      int                       `json:"version"`
	PatchedFiles []string                  `json:"patchedFiles"`
	Entries      map[string][]domain.Entry `json:"entries"`
}

// NewSummary builds the patch log of a report.
func NewSummary(r *domain.Report) *Summary {
	s := &Summary{
		PatchedAt:    r.FinishedAt,
		PatchPath:    r.PatchPath,
		Version:      r.Version,
		PatchedFiles: r.PatchedFiles(),
		Entries:      make(map[string][]domain.Entry),
	}
	if s.PatchedFiles == nil {
		s.PatchedFiles = []string{}
	}
	for _, f := range r.Files {
		if len(f.Entries) > 0 {
			s.Entries[f.Path] = f.Entries
		}
	}
	return s
}

// ReadSummary loads the patch log of a game, if there is one.
func ReadSummary(gameDir string) (*Summary, error) {
	data, err := os.ReadFile(filepath.Join(gameDir, backup.SummaryFile))
	if err != nil {
		return nil, fmt.Errorf("engine: read summary: %w", err)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("engine: decode summary: %w", err)
	}
	return &s, nil
}

// writeSummary writes the patch log. When the log on disk already records
// the same result, it is left untouched so a repeated run changes no byte.
func (r *run) writeSummary() error {
	r.report.FinishedAt = time.Now()
	s := NewSummary(r.report)
	if prev, err := ReadSummary(r.game.GameDir); err == nil && sameResult(prev, s) {
		r.e.logger.Debug("summary unchanged", "patchedAt", prev.PatchedAt)
		return nil
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return domain.E(domain.KindSharedIO, "engine: summary", backup.SummaryFile, err)
	}
	path := filepath.Join(r.game.GameDir, backup.SummaryFile)
	if err := atomicfile.WriteFile(path, append(data, '\n'), filePerm); err != nil {
		return domain.E(domain.KindSharedIO, "engine: summary", backup.SummaryFile, err)
	}
	r.e.logger.Debug("wrote summary", "path", path)
	return nil
}

// sameResult compares two summaries, ignoring when they were written.
func sameResult(a, b *Summary) bool {
	ca, cb := *a, *b
	ca.PatchedAt, cb.PatchedAt = time.Time{}, time.Time{}
	ja, errA := json.Marshal(ca)
	jb, errB := json.Marshal(cb)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}

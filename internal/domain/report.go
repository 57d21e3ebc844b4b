package domain

import (
	"sort"
	"time"
)

// State is a stage of a patch run.
type State string

const (
	StateValidating State = "validating"
	StateScanning   State = "scanning"
	StatePatching   State = "patching"
	StateFinalized  State = "finalized"
	StateAborted    State = "aborted"
)

// FileStatus is the outcome of one file.
type FileStatus string

const (
	FilePatched   FileStatus = "patched"
	FileUnchanged FileStatus = "unchanged"
	FileSkipped   FileStatus = "skipped"
	FileFailed    FileStatus = "failed"
)

// Entry records one substituted value.
type Entry struct {
	Selector   Selector `json:"selector"`
	Original   string   `json:"original"`
	Translated string   `json:"translated"`
}

// SkippedEntry records a value that could not be patched.
type SkippedEntry struct {
	Selector Selector `json:"selector"`
	Reason   string   `json:"reason"`
}

// FileReport is the outcome of patching one file.
type FileReport struct {
	Path    string         `json:"path"`
	Status  FileStatus     `json:"status"`
	Entries []Entry        `json:"entries,omitempty"`
	Skipped []SkippedEntry `json:"skipped,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Report summarizes a patch run. It is returned even when the run aborts.
type Report struct {
	GameDir    string       `json:"gameDir"`
	PatchPath  string       `json:"patchPath"`
	Version    int          `json:"version"`
	State      State        `json:"state"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	DryRun     bool         `json:"dryRun,omitempty"`
	Files      []FileReport `json:"files"`
	Err        error        `json:"-"`
	Error      string       `json:"error,omitempty"`
}

// Count returns the number of files with the given status.
func (r *Report) Count(status FileStatus) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// EntryCount returns the number of substituted values across all files.
func (r *Report) EntryCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Entries)
	}
	return n
}

// SkippedCount returns the number of skipped entries across all files.
func (r *Report) SkippedCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Skipped)
	}
	return n
}

// PatchedFiles returns the paths of files that were rewritten, sorted.
func (r *Report) PatchedFiles() []string {
	var out []string
	for _, f := range r.Files {
		if f.Status == FilePatched {
			out = append(out, f.Path)
		}
	}
	sort.Strings(out)
	return out
}

// File returns the report for rel, or nil.
func (r *Report) File(rel string) *FileReport {
	for i := range r.Files {
		if r.Files[i].Path == rel {
			return &r.Files[i]
		}
	}
	return nil
}

// SortFiles orders file reports by path.
func (r *Report) SortFiles() {
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
}

// Package storage provides SQLite-based persistence for patch run history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/mzpatch/internal/domain"
)

// timeLayout is how run timestamps are stored.
const timeLayout = time.RFC3339Nano

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// Run is one recorded patch run.
type Run struct {
	ID           int64
	GameDir      string
	GameTitle    string
	PatchPath    string
	Version      int
	State        domain.State
	DryRun       bool
	FilesPatched int
	Entries      int
	Skipped      int
	Error        string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunFile is the recorded outcome of one file of a run.
type RunFile struct {
	Path    string
	Status  domain.FileStatus
	Entries int
	Skipped int
	Error   string
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_dir TEXT NOT NULL,
			game_title TEXT NOT NULL DEFAULT '',
			patch_path TEXT NOT NULL,
			version INTEGER NOT NULL,
			state TEXT NOT NULL,
			dry_run INTEGER NOT NULL DEFAULT 0,
			files_patched INTEGER NOT NULL DEFAULT 0,
			entries INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_game_dir ON runs(game_dir);

		CREATE TABLE IF NOT EXISTS run_files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			status TEXT NOT NULL,
			entries INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_run_files_run_id ON run_files(run_id);

		CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			selector TEXT NOT NULL,
			original TEXT NOT NULL,
			translated TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_entries_run_id ON entries(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run with its files and entries in one
// transaction. Returns the ID of the inserted run.
func (s *Store) SaveRun(ctx context.Context, r *domain.Report, gameTitle string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs
		 (game_dir, game_title, patch_path, version, state, dry_run, files_patched, entries, skipped, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.GameDir,
		gameTitle,
		r.PatchPath,
		r.Version,
		string(r.State),
		r.DryRun,
		r.Count(domain.FilePatched),
		r.EntryCount(),
		r.SkippedCount(),
		r.Error,
		r.StartedAt.UTC().Format(timeLayout),
		r.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	fileStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_files (run_id, path, status, entries, skipped, error) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prepare file insert: %w", err)
	}
	defer fileStmt.Close()

	entryStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (run_id, selector, original, translated) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot prepare entry insert: %w", err)
	}
	defer entryStmt.Close()

	for _, f := range r.Files {
		if _, err := fileStmt.ExecContext(ctx, id, f.Path, string(f.Status), len(f.Entries), len(f.Skipped), f.Error); err != nil {
			return 0, fmt.Errorf("storage: cannot save file %s: %w", f.Path, err)
		}
		for _, e := range f.Entries {
			if _, err := entryStmt.ExecContext(ctx, id, string(e.Selector), e.Original, e.Translated); err != nil {
				return 0, fmt.Errorf("storage: cannot save entry %s: %w", e.Selector, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return id, nil
}

const runColumns = `id, game_dir, game_title, patch_path, version, state, dry_run,
	files_patched, entries, skipped, error, started_at, finished_at`

// RecentRuns retrieves the most recent runs, newest first. An empty gameDir
// returns runs of every game.
func (s *Store) RecentRuns(gameDir string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if gameDir != "" {
		query += ` WHERE game_dir = ?`
		args = append(args, gameDir)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// RunByID retrieves one run. Returns nil if it does not exist.
func (s *Store) RunByID(id int64) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RunFiles retrieves the per-file outcomes of a run, ordered by path.
func (s *Store) RunFiles(runID int64) ([]RunFile, error) {
	rows, err := s.db.Query(
		`SELECT path, status, entries, skipped, error
		 FROM run_files
		 WHERE run_id = ?
		 ORDER BY path`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run files: %w", err)
	}
	defer rows.Close()

	var files []RunFile
	for rows.Next() {
		var f RunFile
		var status string
		if err := rows.Scan(&f.Path, &status, &f.Entries, &f.Skipped, &f.Error); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		f.Status = domain.FileStatus(status)
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return files, nil
}

// RunEntries retrieves the substituted values of a run in insertion order.
func (s *Store) RunEntries(runID int64) ([]domain.Entry, error) {
	rows, err := s.db.Query(
		`SELECT selector, original, translated FROM entries WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var sel string
		if err := rows.Scan(&sel, &e.Original, &e.Translated); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Selector = domain.Selector(sel)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// ClearRuns deletes every run of the given game.
func (s *Store) ClearRuns(gameDir string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM entries WHERE run_id IN (SELECT id FROM runs WHERE game_dir = ?)`,
		`DELETE FROM run_files WHERE run_id IN (SELECT id FROM runs WHERE game_dir = ?)`,
		`DELETE FROM runs WHERE game_dir = ?`,
	} {
		if _, err := tx.Exec(q, gameDir); err != nil {
			return fmt.Errorf("storage: cannot clear runs: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit: %w", err)
	}
	return nil
}

// GameStats contains aggregated statistics for one patched game.
type GameStats struct {
	GameDir     string
	GameTitle   string
	Runs        int
	Finalized   int
	Entries     int
	LastPatched time.Time
}

// AllGamesStats retrieves statistics for every game with recorded runs.
func (s *Store) AllGamesStats() (map[string]*GameStats, error) {
	rows, err := s.db.Query(
		`SELECT game_dir, MAX(game_title), COUNT(*),
		        SUM(CASE WHEN state = ? THEN 1 ELSE 0 END),
		        SUM(entries), MAX(finished_at)
		 FROM runs
		 GROUP BY game_dir`,
		string(domain.StateFinalized),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all games stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*GameStats)
	for rows.Next() {
		var st GameStats
		var last any
		if err := rows.Scan(&st.GameDir, &st.GameTitle, &st.Runs, &st.Finalized, &st.Entries, &last); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPatched = parseTime(last)
		stats[st.GameDir] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var state string
	var started, finished any
	err := sc.Scan(
		&r.ID,
		&r.GameDir,
		&r.GameTitle,
		&r.PatchPath,
		&r.Version,
		&state,
		&r.DryRun,
		&r.FilesPatched,
		&r.Entries,
		&r.Skipped,
		&r.Error,
		&started,
		&finished,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return r, err
	}
	if err != nil {
		return r, fmt.Errorf("storage: cannot scan row: %w", err)
	}
	r.State = domain.State(state)
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return r, nil
}

// parseTime handles both time.Time and string column values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

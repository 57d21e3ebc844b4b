// Package backup keeps a pristine copy of every file a patch run touches,
// under <game>/.backup, and restores it on demand.
//
// A file is copied only the first time it is seen, so the backup always
// holds the game's original bytes no matter how many patches were applied.
package backup

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/mzpatch/internal/atomicfile"
	"github.com/vovakirdan/mzpatch/internal/domain"
)

const (
	// Dir is the backup directory inside the game directory.
	Dir = ".backup"
	// SummaryFile is written into the game directory after a run.
	SummaryFile = "patch-summary.json"
	// createdList records files that did not exist before patching.
	createdList = ".mzpatch-created"
)

// Store is the pristine backup of one game.
type Store struct {
	gameDir string
	logger  *log.Logger
}

// New returns the backup store of gameDir.
func New(gameDir string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{gameDir: gameDir, logger: logger}
}

// Root returns the backup directory.
func (s *Store) Root() string {
	return filepath.Join(s.gameDir, Dir)
}

// Exists reports whether a backup has been taken.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.Root())
	return err == nil && info.IsDir()
}

// Snapshot copies every game-relative path in rels into the backup, unless
// a copy is already there. Paths in creatable that do not exist yet are
// remembered so Restore can remove them; other missing paths are left for a
// later snapshot. It returns how many files were newly copied.
func (s *Store) Snapshot(rels, creatable []string) (int, error) {
	if err := os.MkdirAll(s.Root(), 0o755); err != nil {
		return 0, domain.E(domain.KindSharedIO, "backup: snapshot", s.Root(), err)
	}

	created, err := s.created()
	if err != nil {
		return 0, err
	}
	var newlyCreated []string

	copied := 0
	for _, rel := range rels {
		rel = filepath.ToSlash(filepath.Clean(rel))
		dst := s.path(rel)
		if _, err := os.Stat(dst); err == nil || slices.Contains(created, rel) {
			continue
		}

		src := filepath.Join(s.gameDir, filepath.FromSlash(rel))
		if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
			if slices.Contains(creatable, rel) {
				newlyCreated = append(newlyCreated, rel)
			}
			continue
		}
		if err := atomicfile.Copy(src, dst); err != nil {
			return copied, domain.E(domain.KindSharedIO, "backup: snapshot", rel, err)
		}
		copied++
	}

	if len(newlyCreated) > 0 {
		if err := s.writeCreated(append(created, newlyCreated...)); err != nil {
			return copied, err
		}
	}

	s.logger.Info("backed up unseen files", "copied", copied, "total", len(rels))
	return copied, nil
}

// Pristine returns the original bytes of rel: the backup copy when there is
// one, the live file otherwise.
func (s *Store) Pristine(rel string) ([]byte, error) {
	data, err := os.ReadFile(s.path(rel))
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("backup: read %s: %w", rel, err)
	}
	data, err = os.ReadFile(filepath.Join(s.gameDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("backup: read %s: %w", rel, err)
	}
	return data, nil
}

// Restore copies every backed-up file back into the game, removes files
// that patching created, then deletes the backup and the patch summary.
func (s *Store) Restore() (int, error) {
	root := s.Root()
	if !s.Exists() {
		return 0, fmt.Errorf("backup: no backup in %s", s.gameDir)
	}

	restored := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || (filepath.Dir(path) == root && d.Name() == createdList) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if err := atomicfile.Copy(path, filepath.Join(s.gameDir, rel)); err != nil {
			return err
		}
		s.logger.Debug("restored file", "file", filepath.ToSlash(rel))
		restored++
		return nil
	})
	if err != nil {
		return restored, fmt.Errorf("backup: restore: %w", err)
	}

	created, err := s.created()
	if err != nil {
		return restored, err
	}
	for _, rel := range created {
		path := filepath.Join(s.gameDir, filepath.FromSlash(rel))
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return restored, fmt.Errorf("backup: remove %s: %w", rel, err)
		}
	}

	if err := os.RemoveAll(root); err != nil {
		return restored, fmt.Errorf("backup: remove backup: %w", err)
	}
	summary := filepath.Join(s.gameDir, SummaryFile)
	if err := os.Remove(summary); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return restored, fmt.Errorf("backup: remove summary: %w", err)
	}

	s.logger.Info("restored backup", "files", restored, "removed", len(created))
	return restored, nil
}

func (s *Store) path(rel string) string {
	return filepath.Join(s.Root(), filepath.FromSlash(rel))
}

func (s *Store) created() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(s.Root(), createdList))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.E(domain.KindSharedIO, "backup: read created list", createdList, err)
	}

	var rels []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			rels = append(rels, line)
		}
	}
	return rels, nil
}

func (s *Store) writeCreated(rels []string) error {
	data := strings.Join(rels, "\n") + "\n"
	if err := atomicfile.WriteFile(filepath.Join(s.Root(), createdList), []byte(data), 0o644); err != nil {
		return domain.E(domain.KindSharedIO, "backup: write created list", createdList, err)
	}
	return nil
}

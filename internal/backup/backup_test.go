package backup

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	return string(data)
}

func TestSnapshotKeepsFirstCopy(t *testing.T) {
	game := t.TempDir()
	actors := filepath.Join(game, "data", "Actors.json")
	writeFile(t, actors, "original")

	s := New(game, nil)
	n, err := s.Snapshot([]string{"data/Actors.json"}, nil)
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("copied = %d, want 1", n)
	}

	writeFile(t, actors, "patched")
	n, err = s.Snapshot([]string{"data/Actors.json"}, nil)
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("second snapshot copied %d files", n)
	}

	got, err := s.Pristine("data/Actors.json")
	if err != nil {
		t.Fatalf("Pristine() failed: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("pristine = %q, want original", got)
	}
}

func TestPristineFallsBackToLiveFile(t *testing.T) {
	game := t.TempDir()
	writeFile(t, filepath.Join(game, "data", "Items.json"), "live")

	got, err := New(game, nil).Pristine("data/Items.json")
	if err != nil {
		t.Fatalf("Pristine() failed: %v", err)
	}
	if string(got) != "live" {
		t.Errorf("pristine = %q", got)
	}

	if _, err := New(game, nil).Pristine("data/Nope.json"); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestRestore(t *testing.T) {
	game := t.TempDir()
	actors := filepath.Join(game, "data", "Actors.json")
	added := filepath.Join(game, "img", "pictures", "Logo.png")
	summary := filepath.Join(game, SummaryFile)
	writeFile(t, actors, "original")

	s := New(game, nil)
	if s.Exists() {
		t.Fatal("Exists() before any snapshot")
	}
	if _, err := s.Snapshot([]string{"data/Actors.json", "img/pictures/Logo.png"}, []string{"img/pictures/Logo.png"}); err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}

	writeFile(t, actors, "patched")
	writeFile(t, added, "new image")
	writeFile(t, summary, "{}")

	n, err := s.Restore()
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("restored = %d, want 1", n)
	}
	if got := readFile(t, actors); got != "original" {
		t.Errorf("Actors.json = %q", got)
	}
	for _, path := range []string{added, summary, s.Root()} {
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("%s still exists", path)
		}
	}
}

func TestRestoreWithoutBackup(t *testing.T) {
	if _, err := New(t.TempDir(), nil).Restore(); err == nil {
		t.Error("expected error without a backup")
	}
}

func TestSnapshotLaterInstalledFileIsBackedUp(t *testing.T) {
	game := t.TempDir()
	plugin := filepath.Join(game, "js", "plugins", "Foo.js")

	s := New(game, nil)
	if _, err := s.Snapshot([]string{"js/plugins/Foo.js"}, nil); err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}

	writeFile(t, plugin, "installed later")
	n, err := s.Snapshot([]string{"js/plugins/Foo.js"}, nil)
	if err != nil {
		t.Fatalf("Snapshot() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("copied = %d, want 1", n)
	}

	writeFile(t, plugin, "patched")
	if _, err := s.Restore(); err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if got := readFile(t, plugin); got != "installed later" {
		t.Errorf("Foo.js = %q, want the installed bytes back", got)
	}
}

package main

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/storage"
)

type closeRecorder struct {
	name  string
	order *[]string
	err   error
}

func (c closeRecorder) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

func TestResourcesClose(t *testing.T) {
	var order []string
	var res resources
	res.add(closeRecorder{name: "bundle", order: &order})
	res.add(closeRecorder{name: "history", order: &order, err: errors.New("busy")})

	res.close()
	res.close()

	if want := []string{"history", "bundle"}; !reflect.DeepEqual(order, want) {
		t.Errorf("close order = %v, want %v", order, want)
	}
}

func TestResourcesCloseHistoryStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	var res resources
	res.add(store)
	rep := &domain.Report{
		GameDir:    "/games/hero",
		State:      domain.StateAborted,
		Error:      "cancelled",
		StartedAt:  time.Now().Add(-time.Second),
		FinishedAt: time.Now(),
	}
	if _, err := store.SaveRun(context.Background(), rep, "Hero Quest"); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	res.close()

	reopened, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Open() after close failed: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.RecentRuns("/games/hero", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 1 || runs[0].State != domain.StateAborted {
		t.Errorf("runs = %+v", runs)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		kind domain.Kind
		want int
	}{
		{domain.KindUnsupportedVersion, 3},
		{domain.KindInvalidConfig, 2},
		{domain.KindRegexCompile, 2},
		{domain.KindCancelled, 130},
		{domain.KindTimeout, 1},
		{domain.KindIO, 1},
	}
	for _, tt := range tests {
		err := domain.Errorf(tt.kind, "test", "", "failed")
		if got := exitCode(err); got != tt.want {
			t.Errorf("exitCode(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

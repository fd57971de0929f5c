package state_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"mediatorr/internal/state"
	"mediatorr/internal/unit"
)

func openStore(t *testing.T) *state.Store {
	t.Helper()
	store, err := state.Open(filepath.Join(t.TempDir(), "state", "mediatorr.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOverrideLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, ok, err := store.Override(ctx, unit.LibraryMovies, "Film"); err != nil || ok {
		t.Fatalf("expected no override, ok=%v err=%v", ok, err)
	}
	if err := store.SetOverride(ctx, unit.LibraryMovies, "Film", 603); err != nil {
		t.Fatalf("SetOverride: %v", err)
	}
	if err := store.SetOverride(ctx, unit.LibraryMovies, "Film", 604); err != nil {
		t.Fatalf("SetOverride replace: %v", err)
	}
	if err := store.SetOverride(ctx, unit.LibrarySeries, "Show.S01", 1399); err != nil {
		t.Fatalf("SetOverride series: %v", err)
	}

	id, ok, err := store.Override(ctx, unit.LibraryMovies, "Film")
	if err != nil || !ok || id != 604 {
		t.Fatalf("expected replaced override 604, got %d ok=%v err=%v", id, ok, err)
	}

	all, err := store.ListOverrides(ctx, "")
	if err != nil || len(all) != 2 || all[0].Library != unit.LibraryMovies {
		t.Fatalf("unexpected overrides %+v, %v", all, err)
	}
	series, err := store.ListOverrides(ctx, unit.LibrarySeries)
	if err != nil || len(series) != 1 || series[0].Key != "Show.S01" {
		t.Fatalf("unexpected series overrides %+v, %v", series, err)
	}

	removed, err := store.RemoveOverride(ctx, unit.LibraryMovies, "Film")
	if err != nil || !removed {
		t.Fatalf("RemoveOverride: removed=%v err=%v", removed, err)
	}
	removed, err = store.RemoveOverride(ctx, unit.LibraryMovies, "Film")
	if err != nil || removed {
		t.Fatalf("second RemoveOverride: removed=%v err=%v", removed, err)
	}
}

func TestSetOverrideRejectsInvalidID(t *testing.T) {
	store := openStore(t)
	if err := store.SetOverride(context.Background(), unit.LibraryMovies, "Film", 0); err == nil {
		t.Fatal("expected error for zero id")
	}
}

func TestRunHistory(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.BeginRun(ctx, "run-1", base); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.FinishRun(ctx, "run-1", base.Add(time.Minute), state.RunCompleted, map[string]int{"processed": 3}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if err := store.BeginRun(ctx, "run-2", base.Add(500*time.Millisecond+time.Minute)); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-2" || runs[0].Status != state.RunRunning {
		t.Fatalf("unexpected runs %+v", runs)
	}
	if !runs[1].FinishedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected finish time %v", runs[1].FinishedAt)
	}
	var summary map[string]int
	if err := json.Unmarshal(runs[1].Summary, &summary); err != nil || summary["processed"] != 3 {
		t.Fatalf("unexpected summary %s, %v", runs[1].Summary, err)
	}

	if err := store.FinishRun(ctx, "missing", base, state.RunFailed, nil); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediatorr.db")
	store, err := state.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.SetOverride(context.Background(), unit.LibraryMovies, "Film", 1); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := state.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, ok, _ := reopened.Override(context.Background(), unit.LibraryMovies, "Film"); !ok {
		t.Fatal("override lost after reopen")
	}
}

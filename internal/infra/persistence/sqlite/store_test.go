package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"aquacore/pkg/domain"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := NewStore(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	return store
}

func TestSQLiteStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	store := openStore(t, path)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	snaps := []domain.Snapshot{
		{ID: "s2", RunID: "run-1", Step: 2, Operation: "evaporate", Amount: 0.4, RecordedAt: at.Add(time.Hour),
			Status: domain.Status{"current_volume": 3999.6}, Concentrations: map[string]float64{"nitrate": 10.001}},
		{ID: "s1", RunID: "run-1", Step: 1, Operation: "add_water", Amount: 4000, RecordedAt: at,
			Status: domain.Status{"current_volume": 4000.0}},
		{ID: "s3", RunID: "run-2", Step: 1, Operation: "precipitate", Error: "manage precipitation: volume 150 exceeds the tank capacity 100 liters", RecordedAt: at,
			Status: domain.Status{"overflow_volume": 50.0}},
	}
	for _, snap := range snaps {
		if err := store.Append(ctx, snap); err != nil {
			t.Fatalf("append %s: %v", snap.ID, err)
		}
	}
	if err := store.Append(ctx, snaps[0]); err == nil {
		t.Fatalf("expected duplicate id to fail")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded := openStore(t, path)
	t.Cleanup(func() { _ = reloaded.Close() })
	runs, err := reloaded.Runs(ctx)
	if err != nil || len(runs) != 2 || runs[0] != "run-1" {
		t.Fatalf("unexpected runs %v (%v)", runs, err)
	}
	list, err := reloaded.List(ctx, "run-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "s1" || list[1].ID != "s2" {
		t.Fatalf("expected step order, got %+v", list)
	}
	if list[1].Concentrations["nitrate"] != 10.001 || !list[0].RecordedAt.Equal(at) {
		t.Fatalf("payload not restored: %+v", list[1])
	}
	failed, _ := reloaded.List(ctx, "run-2")
	if len(failed) != 1 || !failed[0].Failed() {
		t.Fatalf("expected failed step to persist its error, got %+v", failed)
	}
}

func TestSQLiteStoreCreatesSnapshotsTable(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "state.db"))
	t.Cleanup(func() { _ = store.Close() })
	var name string
	if err := store.DB().Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name = ?", "snapshots"); err != nil {
		t.Fatalf("lookup snapshots table: %v", err)
	}
	if name != "snapshots" {
		t.Fatalf("expected snapshots table, got %s", name)
	}
}

package core

import (
	"path/filepath"
	"testing"

	"aquacore/internal/infra/persistence/memory"
	"aquacore/internal/infra/persistence/sqlite"
)

func TestOpenSnapshotStoreMemory(t *testing.T) {
	t.Setenv("AQUACORE_STORAGE_DRIVER", string(StorageMemory))
	store, err := OpenSnapshotStore()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestOpenSnapshotStoreSQLiteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	t.Setenv("AQUACORE_STORAGE_DRIVER", "")
	t.Setenv("AQUACORE_SQLITE_PATH", path)
	store, err := OpenSnapshotStore()
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer store.Close()
	s, ok := store.(*sqlite.Store)
	if !ok || s.Path() != path {
		t.Fatalf("expected sqlite store at %s, got %T", path, store)
	}
}

func TestOpenSnapshotStoreUnknown(t *testing.T) {
	t.Setenv("AQUACORE_STORAGE_DRIVER", "tape")
	if _, err := OpenSnapshotStore(); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

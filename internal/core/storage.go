package core

import (
	"fmt"
	"os"

	"aquacore/internal/infra/persistence/memory"
	"aquacore/internal/infra/persistence/postgres"
	"aquacore/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete snapshot store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenSnapshotStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	AQUACORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	AQUACORE_SQLITE_PATH: path to sqlite file (default ./aquacore.db)
//	AQUACORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenSnapshotStore() (SnapshotStore, error) {
	driver := os.Getenv("AQUACORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		store, err := sqlite.NewStore(os.Getenv("AQUACORE_SQLITE_PATH"))
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(os.Getenv("AQUACORE_POSTGRES_DSN"))
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

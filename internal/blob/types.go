// Package blob re-exports the artifact store abstractions and selects a
// backend. Packages outside internal/blob depend on this package rather than
// the infra implementations.
package blob

import (
	"aquacore/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = core.ErrNotFound

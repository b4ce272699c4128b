package blob

import (
	"context"
	"fmt"
	"os"

	"aquacore/internal/infra/blob/fs"
	"aquacore/internal/infra/blob/memory"
	"aquacore/internal/infra/blob/s3"
)

// Open selects a blob.Store implementation using environment variables.
//
//	AQUACORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	AQUACORE_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	AQUACORE_BLOB_S3_*: bucket, region, endpoint and path style when driver=s3
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("AQUACORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("AQUACORE_BLOB_FS_ROOT"))
	case DriverS3:
		store, err := s3.OpenFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewFilesystem returns a store rooted at root.
func NewFilesystem(root string) (Store, error) {
	store, err := fs.New(root)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewMemory returns an ephemeral store.
func NewMemory() Store { return memory.New() }

// NewS3 returns a store for the configured bucket.
func NewS3(ctx context.Context, cfg s3.Config) (Store, error) {
	store, err := s3.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}

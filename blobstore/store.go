// Package blobstore abstracts whole-object storage for persisted artifacts
// (clustering models, point files).
//
// Backends: local filesystem, S3 (aws-sdk-go-v2) and MinIO / S3-compatible
// endpoints (minio-go). Objects are small and written atomically as a
// whole; this is deliberately not a streaming interface.
package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when an object does not exist.
//
// Implementations return an error satisfying errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// ObjectStore reads and writes immutable named objects.
type ObjectStore interface {
	// Get returns the full contents of the named object.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put stores data under name, replacing any existing object.
	Put(ctx context.Context, name string, data []byte) error
}

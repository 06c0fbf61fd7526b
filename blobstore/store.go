// Package blobstore abstracts where corpus files live. The index builder
// only needs a readable stream, so a Store is a minimal "open by name"
// interface with local-filesystem, in-memory, S3 and MinIO implementations.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a corpus blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for reading immutable corpus blobs.
type Store interface {
	// Open opens the named blob for sequential reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

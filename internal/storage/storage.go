// Package storage provides object storage abstractions for archiving table
// snapshots.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStorage abstracts snapshot archival. Implementations include S3 and
// the local filesystem for development and tests.
type ObjectStorage interface {
	// Put stores an object under objectPath.
	Put(ctx context.Context, objectPath string, data []byte) error

	// Get retrieves the object at objectPath.
	Get(ctx context.Context, objectPath string) ([]byte, error)

	// Delete removes an object. Deleting an absent object is not an error.
	Delete(ctx context.Context, objectPath string) error

	// Exists checks whether an object is present.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// ListObjects returns all object paths under the given prefix.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}

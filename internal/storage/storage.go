package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned when the requested key has no object.
var ErrObjectNotFound = errors.New("object not found in storage")

// ObjectInfo describes a stored object. ContentType is populated on
// reads; listings leave it empty.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ObjectStorage defines the interface for object storage operations.
// Keys are full bucket keys including any namespace prefix.
type ObjectStorage interface {
	// Put writes an object, replacing whatever the key held before.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error

	// Get opens an object for reading. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)

	// List returns info for every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Copy duplicates srcKey's object under dstKey.
	Copy(ctx context.Context, srcKey, dstKey string) error
}

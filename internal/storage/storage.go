// Package storage provides the object sources that fixture ingestion reads payloads from.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned by Get when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Storage is a keyed object store holding fixture payloads.
type Storage interface {
	// Put uploads an object under the given key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
}

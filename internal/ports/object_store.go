package ports

import (
	"context"
	"errors"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	// ErrObjectUnchanged reports a conditional Get whose prior ETag still
	// matches; the caller should treat it as a no-op, not a failure.
	ErrObjectUnchanged = errors.New("object unchanged")
)

type ObjectContent struct {
	Content []byte
	ETag    string
}

// ObjectStore is the key-based artifact store for scripts, logs and
// screenshots. Implementations retry transient failures internally.
type ObjectStore interface {
	Put(ctx context.Context, key string, content []byte, contentType string) (etag string, err error)
	// Get fetches an object. A non-empty priorETag makes the fetch
	// conditional: ErrObjectUnchanged is returned when content is unchanged.
	Get(ctx context.Context, key string, priorETag string) (ObjectContent, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	EnsureBucket(ctx context.Context) error
}

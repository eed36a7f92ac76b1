package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// ObjectStore defines the interface for the photo blob backend.
// Keys are opaque strings, in practice "{eventSlug}/{uploaderID}-{timestamp}.jpg".
type ObjectStore interface {
	// Get retrieves an object by key. Returns ErrNotFound for missing keys.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Put stores an object under the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes a single object. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// DeleteMany removes a batch of objects in one call.
	DeleteMany(ctx context.Context, keys []string) error

	// Exists checks whether an object is present.
	Exists(ctx context.Context, key string) (bool, error)

	// PresignPut returns a URL a client can PUT the object to directly.
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)

	// PublicURL returns the CDN URL for a key.
	PublicURL(key string) string
}

package identity

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned by ObjectStorage for a missing key
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage stores branding assets
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// DownloadURL returns a time-limited URL for key and its expiry
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	// Open streams an object; the caller closes the reader
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

package storage

import (
	"context"
	"io"
)

// ObjectRepository defines the interface for document storage operations.
// Upload returns a publicly resolvable URL for the stored object.
type ObjectRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

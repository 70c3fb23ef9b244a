// Package blob stores uploaded files and hands back an address the storefront
// can load them from.
package blob

import (
	"context"
	"io"
)

type Store interface {
	Put(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) error
	// URL returns the retrieval address of a stored key.
	URL(ctx context.Context, key string) (string, error)
}

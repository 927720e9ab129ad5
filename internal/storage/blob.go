package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("blob not found")

// BlobStore holds opaque byte blobs under slash-separated keys.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error) // returns canonical key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Package blobstore adapts the external blob storage service. The pipeline
// only needs three capabilities: metadata-by-key, fetch-by-key and
// put-by-key.
package blobstore

import (
	"context"
	"io"
)

// ObjectInfo describes a stored object without transferring its body.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// ObjectStore is the blob storage capability used by the pipeline.
type ObjectStore interface {
	// Head returns object metadata. A missing key yields common.ErrNotFound.
	Head(ctx context.Context, key string) (*ObjectInfo, error)

	// Download streams the object body into dst and returns the number of
	// bytes written.
	Download(ctx context.Context, key string, dst io.Writer) (int64, error)

	// Upload writes body under key with the given content type.
	Upload(ctx context.Context, key string, contentType string, body io.Reader) error
}

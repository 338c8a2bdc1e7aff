package domain

import (
	"context"
	"io"
)

// BlobReader fetches immutable blobs by ID from object storage. Used for
// oracle settings documents referenced on-chain by blob_id; writing blobs
// is owned by the upload pipeline outside this service.
type BlobReader interface {
	Read(ctx context.Context, blobID string) ([]byte, error)
	Exists(ctx context.Context, blobID string) (bool, error)
}

// BlobWriter uploads objects to storage. The refresher uses it to archive
// market snapshots.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

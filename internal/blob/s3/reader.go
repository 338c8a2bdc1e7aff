package s3blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// Reader implements domain.BlobReader using an S3-compatible backend. Oracle
// settings documents are stored one object per blob ID under a fixed prefix.
type Reader struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewReader creates a new Reader that retrieves oracle blobs from the given
// client's configured bucket. prefix namespaces the blob objects, e.g.
// "oracle/".
func NewReader(c *Client, prefix string) *Reader {
	return &Reader{
		client: c.S3(),
		bucket: c.Bucket(),
		prefix: prefix,
	}
}

func (r *Reader) key(blobID string) string {
	return path.Join(r.prefix, blobID)
}

// Read retrieves the blob with the given ID and returns its full contents.
// Returns domain.ErrNotFound if the blob does not exist.
func (r *Reader) Read(ctx context.Context, blobID string) ([]byte, error) {
	output, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(blobID)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3blob: read %s: %w", blobID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("s3blob: read %s: %w", blobID, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("s3blob: read %s body: %w", blobID, err)
	}
	return data, nil
}

// Exists checks whether a blob with the given ID exists by issuing a
// HeadObject request. Any error other than NoSuchKey / NotFound is
// propagated.
func (r *Reader) Exists(ctx context.Context, blobID string) (bool, error) {
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(blobID)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3blob: exists %s: %w", blobID, err)
	}
	return true, nil
}

// isNotFound returns true when the error indicates the requested S3 object
// does not exist. It checks for both the SDK typed error (NoSuchKey) and
// the generic 404 response.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	// HeadObject does not return NoSuchKey; it returns a generic 404.
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	// Fallback: some S3-compatible providers return a ResponseError with
	// HTTP 404. We check via the smithy HTTP response interface.
	type httpResponseError interface {
		HTTPStatusCode() int
	}
	var httpErr httpResponseError
	if errors.As(err, &httpErr) && httpErr.HTTPStatusCode() == 404 {
		return true
	}

	return false
}

// Compile-time interface check.
var _ domain.BlobReader = (*Reader)(nil)

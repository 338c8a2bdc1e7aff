package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// SnapshotArchiver serializes refreshed market snapshots to JSONL and
// uploads them to object storage, one file per refresh day. Archives back
// the historical views that the live snapshot table overwrites in place.
type SnapshotArchiver struct {
	writer domain.BlobWriter
}

// NewSnapshotArchiver creates a SnapshotArchiver over the given writer.
func NewSnapshotArchiver(writer domain.BlobWriter) *SnapshotArchiver {
	return &SnapshotArchiver{writer: writer}
}

// ArchiveMarkets uploads the given snapshot set to
// archive/markets/YYYY-MM-DD.jsonl, overwriting any earlier upload for the
// same day. It returns the number of archived records.
func (a *SnapshotArchiver) ArchiveMarkets(ctx context.Context, markets []domain.Market, at time.Time) (int64, error) {
	if len(markets) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(markets)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive markets marshal: %w", err)
	}

	path := fmt.Sprintf("archive/markets/%s.jsonl", at.UTC().Format("2006-01-02"))
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive markets upload: %w", err)
	}

	return int64(len(markets)), nil
}

// marshalJSONL serialises a slice of values as newline-delimited JSON.
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// PriceCache implements domain.PriceCache using Redis hashes.
// Each market's price pair is stored as a hash at key "price:{marketID}"
// with fields "yes", "no" (scaled integers) and "ts" (Unix nanoseconds).
type PriceCache struct {
	rdb *redis.Client
}

// NewPriceCache creates a PriceCache backed by the given Client.
func NewPriceCache(c *Client) *PriceCache {
	return &PriceCache{rdb: c.Underlying()}
}

func priceKey(marketID string) string {
	return "price:" + marketID
}

// SetPrices stores the latest scaled price pair and timestamp for a market.
func (pc *PriceCache) SetPrices(ctx context.Context, marketID string, yes, no uint64, ts time.Time) error {
	key := priceKey(marketID)
	fields := map[string]interface{}{
		"yes": strconv.FormatUint(yes, 10),
		"no":  strconv.FormatUint(no, 10),
		"ts":  strconv.FormatInt(ts.UnixNano(), 10),
	}
	if err := pc.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("redis: set prices %s: %w", marketID, err)
	}
	return nil
}

// GetPrices retrieves the latest scaled price pair and timestamp for a
// market. It returns domain.ErrNotFound when the key does not exist.
func (pc *PriceCache) GetPrices(ctx context.Context, marketID string) (yes, no uint64, ts time.Time, err error) {
	vals, err := pc.rdb.HGetAll(ctx, priceKey(marketID)).Result()
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("redis: get prices %s: %w", marketID, err)
	}
	if len(vals) == 0 {
		return 0, 0, time.Time{}, domain.ErrNotFound
	}

	yes, err = parseField(vals, "yes", marketID)
	if err != nil {
		return 0, 0, time.Time{}, err
	}
	no, err = parseField(vals, "no", marketID)
	if err != nil {
		return 0, 0, time.Time{}, err
	}

	tsStr, ok := vals["ts"]
	if !ok {
		return 0, 0, time.Time{}, domain.ErrNotFound
	}
	tsNano, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("redis: parse ts %s: %w", marketID, err)
	}

	return yes, no, time.Unix(0, tsNano), nil
}

func parseField(vals map[string]string, field, marketID string) (uint64, error) {
	s, ok := vals[field]
	if !ok {
		return 0, domain.ErrNotFound
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis: parse %s price %s: %w", field, marketID, err)
	}
	return v, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)

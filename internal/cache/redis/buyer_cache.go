package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// BuyerCache implements domain.BuyerCache using Redis strings with
// JSON-serialized leaderboards. Each leaderboard is stored at key
// "buyers:{marketID}:{side}" with a short TTL; computing a leaderboard
// walks the whole position index, so repeated renders hit the cache.
type BuyerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBuyerCache creates a BuyerCache backed by the given Client. ttl bounds
// leaderboard staleness.
func NewBuyerCache(c *Client, ttl time.Duration) *BuyerCache {
	return &BuyerCache{rdb: c.Underlying(), ttl: ttl}
}

func buyerKey(marketID string, side domain.TokenSide) string {
	return fmt.Sprintf("buyers:%s:%d", marketID, side)
}

// Set stores a computed leaderboard for a market side.
func (bc *BuyerCache) Set(ctx context.Context, marketID string, side domain.TokenSide, buyers []domain.BuyerAggregate) error {
	data, err := json.Marshal(buyers)
	if err != nil {
		return fmt.Errorf("redis: marshal buyers %s: %w", marketID, err)
	}
	if err := bc.rdb.Set(ctx, buyerKey(marketID, side), data, bc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set buyers %s: %w", marketID, err)
	}
	return nil
}

// Get retrieves a cached leaderboard for a market side.
// It returns domain.ErrNotFound when the key does not exist or has expired.
func (bc *BuyerCache) Get(ctx context.Context, marketID string, side domain.TokenSide) ([]domain.BuyerAggregate, error) {
	data, err := bc.rdb.Get(ctx, buyerKey(marketID, side)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get buyers %s: %w", marketID, err)
	}

	var buyers []domain.BuyerAggregate
	if err := json.Unmarshal(data, &buyers); err != nil {
		return nil, fmt.Errorf("redis: unmarshal buyers %s: %w", marketID, err)
	}
	return buyers, nil
}

// Compile-time interface check.
var _ domain.BuyerCache = (*BuyerCache)(nil)

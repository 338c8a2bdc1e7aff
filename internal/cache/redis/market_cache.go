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

const marketTTL = 5 * time.Minute

// MarketCache implements domain.MarketCache using Redis strings with
// JSON-serialized Market data.
//
// Key schema:
//
//	markets:list  - JSON array of markets in display order
//	market:{addr} - JSON of a single market snapshot
type MarketCache struct {
	rdb *redis.Client
}

// NewMarketCache creates a MarketCache backed by the given Client.
func NewMarketCache(c *Client) *MarketCache {
	return &MarketCache{rdb: c.Underlying()}
}

const marketListKey = "markets:list"

func marketKey(addr string) string { return "market:" + addr }

// SetList stores the display-ordered market list and refreshes the
// per-market entries in a single transaction, each with a 5-minute TTL.
// The stored order is the order served to clients; callers sort before
// calling.
func (mc *MarketCache) SetList(ctx context.Context, markets []domain.Market) error {
	listData, err := json.Marshal(markets)
	if err != nil {
		return fmt.Errorf("redis: marshal market list: %w", err)
	}

	pipe := mc.rdb.TxPipeline()
	pipe.Set(ctx, marketListKey, listData, marketTTL)

	for _, m := range markets {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("redis: marshal market %s: %w", m.Address, err)
		}
		pipe.Set(ctx, marketKey(m.Address), data, marketTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set market list: %w", err)
	}
	return nil
}

// GetList retrieves the display-ordered market list.
// It returns domain.ErrNotFound when the list has not been cached.
func (mc *MarketCache) GetList(ctx context.Context) ([]domain.Market, error) {
	data, err := mc.rdb.Get(ctx, marketListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get market list: %w", err)
	}

	var markets []domain.Market
	if err := json.Unmarshal(data, &markets); err != nil {
		return nil, fmt.Errorf("redis: unmarshal market list: %w", err)
	}
	return markets, nil
}

// Get retrieves a Market snapshot by its object address.
// It returns domain.ErrNotFound when the key does not exist.
func (mc *MarketCache) Get(ctx context.Context, id string) (domain.Market, error) {
	data, err := mc.rdb.Get(ctx, marketKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("redis: get market %s: %w", id, err)
	}

	var market domain.Market
	if err := json.Unmarshal(data, &market); err != nil {
		return domain.Market{}, fmt.Errorf("redis: unmarshal market %s: %w", id, err)
	}
	return market, nil
}

// Invalidate removes a Market snapshot and the cached list, forcing the next
// read through to the store.
func (mc *MarketCache) Invalidate(ctx context.Context, id string) error {
	pipe := mc.rdb.TxPipeline()
	pipe.Del(ctx, marketKey(id))
	pipe.Del(ctx, marketListKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: invalidate market %s: %w", id, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.MarketCache = (*MarketCache)(nil)

package domain

import (
	"context"
	"time"
)

// PriceCache provides fast access to the latest scaled market prices.
type PriceCache interface {
	SetPrices(ctx context.Context, marketID string, yes, no uint64, ts time.Time) error
	GetPrices(ctx context.Context, marketID string) (yes, no uint64, ts time.Time, err error)
}

// MarketCache stores the display-ordered market list plus per-market
// snapshots for detail lookups.
type MarketCache interface {
	SetList(ctx context.Context, markets []Market) error
	GetList(ctx context.Context) ([]Market, error)
	Get(ctx context.Context, id string) (Market, error)
	Invalidate(ctx context.Context, id string) error
}

// BuyerCache stores computed leaderboards with a short TTL so repeated
// renders do not re-walk the indexer.
type BuyerCache interface {
	Set(ctx context.Context, marketID string, side TokenSide, buyers []BuyerAggregate) error
	Get(ctx context.Context, marketID string, side TokenSide) ([]BuyerAggregate, error)
}

// RateLimiter provides distributed rate limiting for the public API.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LockManager provides distributed locking; the refresher uses it so only
// one instance polls the indexer at a time.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// SignalBus provides pub/sub fan-out from services to the WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channels ...string) (<-chan SignalMessage, error)
}

// SignalMessage is a single pub/sub delivery with its source channel.
type SignalMessage struct {
	Channel string
	Payload []byte
}

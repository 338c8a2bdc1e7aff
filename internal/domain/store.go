package domain

import "context"

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// MarketStore persists market snapshots. Snapshots back the API when the
// indexer is unreachable and feed historical views.
type MarketStore interface {
	UpsertBatch(ctx context.Context, markets []Market) error
	GetByAddress(ctx context.Context, address string) (Market, error)
	List(ctx context.Context, opts ListOpts) ([]Market, error)
	Count(ctx context.Context) (int64, error)
}

// ChatStore persists per-market chat messages.
type ChatStore interface {
	Insert(ctx context.Context, msg ChatMessage) error
	ListByMarket(ctx context.Context, marketID string, opts ListOpts) ([]ChatMessage, error)
}

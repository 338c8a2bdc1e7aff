package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nereuslabs/nereusd/internal/domain"
)

const (
	defaultBookDepth = 50
	maxBookDepth     = 200
)

// BookReader reads resting orders straight from the on-chain book via the
// node gateway's view functions.
type BookReader interface {
	GetBids(ctx context.Context, marketID string, side *domain.TokenSide, cursor []byte, limit int) ([]domain.BookOrder, []byte, error)
	GetAsks(ctx context.Context, marketID string, side *domain.TokenSide, cursor []byte, limit int) ([]domain.BookOrder, []byte, error)
}

// OrderbookService assembles orderbook snapshots from the on-chain book.
// Reads are uncached: the book changes on every fill and a stale snapshot is
// worse than a slow one.
type OrderbookService struct {
	book   BookReader
	logger *slog.Logger
}

// NewOrderbookService creates an OrderbookService.
func NewOrderbookService(book BookReader, logger *slog.Logger) *OrderbookService {
	return &OrderbookService{book: book, logger: logger}
}

// Snapshot returns the top of a market's book, bids and asks together, best
// orders first. side filters both halves to one outcome token when non-nil.
// limit bounds each half independently and is clamped to [1, maxBookDepth].
func (s *OrderbookService) Snapshot(ctx context.Context, marketID string, side *domain.TokenSide, limit int) (domain.Orderbook, error) {
	if marketID == "" {
		return domain.Orderbook{}, fmt.Errorf("orderbook_service: %w: market is required", domain.ErrInvalidOrder)
	}
	if limit <= 0 {
		limit = defaultBookDepth
	}
	if limit > maxBookDepth {
		limit = maxBookDepth
	}

	bids, _, err := s.book.GetBids(ctx, marketID, side, nil, limit)
	if err != nil {
		return domain.Orderbook{}, fmt.Errorf("orderbook_service: bids %s: %w", marketID, err)
	}
	asks, _, err := s.book.GetAsks(ctx, marketID, side, nil, limit)
	if err != nil {
		return domain.Orderbook{}, fmt.Errorf("orderbook_service: asks %s: %w", marketID, err)
	}

	if bids == nil {
		bids = []domain.BookOrder{}
	}
	if asks == nil {
		asks = []domain.BookOrder{}
	}

	return domain.Orderbook{
		MarketID: marketID,
		Bids:     bids,
		Asks:     asks,
	}, nil
}

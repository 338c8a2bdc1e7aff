package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nereuslabs/nereusd/internal/domain"
	"github.com/nereuslabs/nereusd/internal/ranking"
)

// PositionIndexer fetches outcome position objects from the chain indexer.
type PositionIndexer interface {
	FetchPositionPurchases(ctx context.Context, side domain.TokenSide) ([]domain.PositionPurchase, error)
}

// BuyerService computes per-market buyer leaderboards from position objects.
type BuyerService struct {
	indexer PositionIndexer
	cache   domain.BuyerCache
	logger  *slog.Logger
}

// NewBuyerService creates a BuyerService with all required dependencies.
func NewBuyerService(indexer PositionIndexer, cache domain.BuyerCache, logger *slog.Logger) *BuyerService {
	return &BuyerService{
		indexer: indexer,
		cache:   cache,
		logger:  logger,
	}
}

// Leaderboard returns the aggregated buyers for one side of a market, largest
// cumulative buy first. Computed leaderboards are cached with a short TTL;
// a cache miss walks the indexer's position set for the side.
func (s *BuyerService) Leaderboard(ctx context.Context, marketID string, side domain.TokenSide) ([]domain.BuyerAggregate, error) {
	if buyers, err := s.cache.Get(ctx, marketID, side); err == nil {
		return buyers, nil
	}

	records, err := s.indexer.FetchPositionPurchases(ctx, side)
	if err != nil {
		return nil, fmt.Errorf("buyer_service: leaderboard %s: %w", marketID, err)
	}

	buyers := ranking.AggregateBuyers(records, marketID)

	if err := s.cache.Set(ctx, marketID, side, buyers); err != nil {
		s.logger.WarnContext(ctx, "buyer_service: cache set failed",
			slog.String("market", marketID),
			slog.String("error", err.Error()),
		)
	}

	return buyers, nil
}

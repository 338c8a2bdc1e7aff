// Package service wires platform clients, caches, and stores into the
// operations the API and refresher expose.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nereuslabs/nereusd/internal/domain"
	"github.com/nereuslabs/nereusd/internal/ranking"
)

// MarketIndexer fetches market snapshots from the chain indexer.
type MarketIndexer interface {
	FetchMarkets(ctx context.Context) ([]domain.Market, error)
}

// PriceReader reads the current scaled price pair for a market.
type PriceReader interface {
	GetMarketPrice(ctx context.Context, marketID string) (yes, no uint64, err error)
}

// SnapshotArchiver uploads a refreshed snapshot set to cold storage.
type SnapshotArchiver interface {
	ArchiveMarkets(ctx context.Context, markets []domain.Market, at time.Time) (int64, error)
}

// ChannelMarkets is the signal bus channel that announces refreshed market
// lists to WebSocket subscribers.
const ChannelMarkets = "markets"

// MarketService handles market discovery, price enrichment, and reads.
type MarketService struct {
	indexer  MarketIndexer
	prices   PriceReader
	store    domain.MarketStore
	cache    domain.MarketCache
	priceCch domain.PriceCache
	bus      domain.SignalBus
	archiver SnapshotArchiver // optional
	logger   *slog.Logger

	priceFetchLimit int
	now             func() time.Time
}

// NewMarketService creates a MarketService. archiver may be nil when snapshot
// archival is disabled.
func NewMarketService(
	indexer MarketIndexer,
	prices PriceReader,
	store domain.MarketStore,
	cache domain.MarketCache,
	priceCch domain.PriceCache,
	bus domain.SignalBus,
	archiver SnapshotArchiver,
	priceFetchLimit int,
	logger *slog.Logger,
) *MarketService {
	if priceFetchLimit <= 0 {
		priceFetchLimit = 1
	}
	return &MarketService{
		indexer:         indexer,
		prices:          prices,
		store:           store,
		cache:           cache,
		priceCch:        priceCch,
		bus:             bus,
		archiver:        archiver,
		logger:          logger,
		priceFetchLimit: priceFetchLimit,
		now:             time.Now,
	}
}

// refreshSignal is the payload published on ChannelMarkets after a refresh.
type refreshSignal struct {
	Count     int   `json:"count"`
	Timestamp int64 `json:"timestamp"` // unix milliseconds
}

// Refresh pulls the full market set from the indexer, enriches each market
// with its current price pair, and replaces the snapshot store and caches
// with the result in display order. Individual price read failures leave
// that market's prices zero rather than failing the cycle.
func (s *MarketService) Refresh(ctx context.Context) ([]domain.Market, error) {
	markets, err := s.indexer.FetchMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("market_service: refresh: %w", err)
	}

	now := s.now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.priceFetchLimit)
	for i := range markets {
		g.Go(func() error {
			m := &markets[i]
			yes, no, err := s.prices.GetMarketPrice(gctx, m.Address)
			if err != nil {
				s.logger.WarnContext(gctx, "market_service: price read failed",
					slog.String("market", m.Address),
					slog.String("error", err.Error()),
				)
				return nil
			}
			m.YesPrice, m.NoPrice = yes, no

			if err := s.priceCch.SetPrices(gctx, m.Address, yes, no, now); err != nil {
				s.logger.WarnContext(gctx, "market_service: price cache set failed",
					slog.String("market", m.Address),
					slog.String("error", err.Error()),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("market_service: refresh prices: %w", err)
	}

	ordered := ranking.OrderForDisplay(markets, now.UnixMilli())

	if err := s.store.UpsertBatch(ctx, ordered); err != nil {
		return nil, fmt.Errorf("market_service: refresh upsert: %w", err)
	}

	if err := s.cache.SetList(ctx, ordered); err != nil {
		s.logger.WarnContext(ctx, "market_service: market cache set failed",
			slog.String("error", err.Error()),
		)
	}

	if s.archiver != nil {
		if n, err := s.archiver.ArchiveMarkets(ctx, ordered, now); err != nil {
			s.logger.WarnContext(ctx, "market_service: snapshot archive failed",
				slog.String("error", err.Error()),
			)
		} else if n > 0 {
			s.logger.DebugContext(ctx, "market_service: archived snapshots", slog.Int64("count", n))
		}
	}

	payload, _ := json.Marshal(refreshSignal{Count: len(ordered), Timestamp: now.UnixMilli()})
	if err := s.bus.Publish(ctx, ChannelMarkets, payload); err != nil {
		s.logger.WarnContext(ctx, "market_service: publish refresh signal failed",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "market_service: refreshed markets",
		slog.Int("count", len(ordered)),
	)

	return ordered, nil
}

// List returns markets in display order, serving from the cache when the
// last refresh is still live and falling back to the snapshot store.
func (s *MarketService) List(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	markets, err := s.cache.GetList(ctx)
	if err == nil {
		return paginate(markets, opts), nil
	}

	markets, err = s.store.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("market_service: list: %w", err)
	}
	return markets, nil
}

// Get retrieves a market by address, checking the cache first and falling
// back to the snapshot store on a miss.
func (s *MarketService) Get(ctx context.Context, address string) (domain.Market, error) {
	m, err := s.cache.Get(ctx, address)
	if err == nil {
		return m, nil
	}

	m, err = s.store.GetByAddress(ctx, address)
	if err != nil {
		return domain.Market{}, fmt.Errorf("market_service: get %q: %w", address, err)
	}
	return m, nil
}

// Count returns the total number of market snapshots.
func (s *MarketService) Count(ctx context.Context) (int64, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("market_service: count: %w", err)
	}
	return count, nil
}

// paginate applies ListOpts to an in-memory slice, used when serving the
// cached display list.
func paginate(markets []domain.Market, opts domain.ListOpts) []domain.Market {
	if opts.Offset > 0 {
		if opts.Offset >= len(markets) {
			return nil
		}
		markets = markets[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(markets) {
		markets = markets[:opts.Limit]
	}
	return markets
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nereuslabs/nereusd/internal/domain"
	"github.com/nereuslabs/nereusd/internal/trading"
)

// OrderSubmitter hands a validated order intent to the sponsored-execution
// relayer.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, intent domain.OrderIntent) (domain.OrderResult, error)
}

// maxPriceAge bounds how stale a cached price may be before a buy falls back
// to a live read. Orders must never be built against a dead price.
const maxPriceAge = 2 * time.Minute

// TradeService builds and submits buy orders against live market prices.
type TradeService struct {
	prices    PriceReader
	priceCch  domain.PriceCache
	builder   *trading.Builder
	submitter OrderSubmitter
	logger    *slog.Logger
	now       func() time.Time
}

// NewTradeService creates a TradeService with all required dependencies.
func NewTradeService(
	prices PriceReader,
	priceCch domain.PriceCache,
	builder *trading.Builder,
	submitter OrderSubmitter,
	logger *slog.Logger,
) *TradeService {
	return &TradeService{
		prices:    prices,
		priceCch:  priceCch,
		builder:   builder,
		submitter: submitter,
		logger:    logger,
		now:       time.Now,
	}
}

// BuyShares prices, builds, and submits a buy order for one side of a
// market. collateral is in USDC base units.
//
// It returns domain.ErrInvalidPrice when the market has no live price and
// domain.ErrInsufficientAmount when the collateral buys zero shares.
func (s *TradeService) BuyShares(ctx context.Context, marketID, maker string, side domain.TokenSide, collateral uint64) (domain.OrderResult, error) {
	price, err := s.sidePrice(ctx, marketID, side)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("trade_service: buy %s: %w", marketID, err)
	}

	intent, err := s.builder.BuildBuy(marketID, maker, side, collateral, price)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("trade_service: buy %s: %w", marketID, err)
	}

	result, err := s.submitter.SubmitOrder(ctx, intent)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("trade_service: buy %s: %w", marketID, err)
	}

	s.logger.InfoContext(ctx, "trade_service: order submitted",
		slog.String("market", marketID),
		slog.String("maker", maker),
		slog.Uint64("collateral", collateral),
		slog.Uint64("shares", intent.TakerAmount),
		slog.String("digest", result.Digest),
	)

	return result, nil
}

// sidePrice returns the scaled price for the requested side, preferring a
// fresh cached pair and falling back to a live gateway read.
func (s *TradeService) sidePrice(ctx context.Context, marketID string, side domain.TokenSide) (uint64, error) {
	yes, no, ts, err := s.priceCch.GetPrices(ctx, marketID)
	if err != nil || s.now().Sub(ts) > maxPriceAge {
		yes, no, err = s.prices.GetMarketPrice(ctx, marketID)
		if err != nil {
			return 0, err
		}
	}

	if side == domain.TokenYes {
		return yes, nil
	}
	return no, nil
}

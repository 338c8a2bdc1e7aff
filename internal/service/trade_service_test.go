package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereuslabs/nereusd/internal/domain"
	"github.com/nereuslabs/nereusd/internal/trading"
)

func newTestTradeService(prices *fakePriceReader, priceCch *memPriceCache, submitter *fakeSubmitter) *TradeService {
	return NewTradeService(prices, priceCch, trading.NewBuilder(time.Hour), submitter, testLogger())
}

func TestBuySharesUsesFreshCachedPrice(t *testing.T) {
	priceCch := newMemPriceCache()
	require.NoError(t, priceCch.SetPrices(context.Background(), "0xm", 500_000_000, 500_000_000, time.Now()))

	prices := &fakePriceReader{}
	submitter := &fakeSubmitter{result: domain.OrderResult{Success: true, Digest: "0xd"}}
	svc := newTestTradeService(prices, priceCch, submitter)

	result, err := svc.BuyShares(context.Background(), "0xm", "0xmaker", domain.TokenYes, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, "0xd", result.Digest)
	assert.Zero(t, prices.calls, "fresh cached price must not hit the gateway")

	require.Len(t, submitter.intents, 1)
	intent := submitter.intents[0]
	// At a 0.5 price the collateral doubles into shares.
	assert.Equal(t, uint64(2_000_000), intent.TakerAmount)
	assert.Equal(t, uint64(1_000_000), intent.MakerAmount)
	assert.Equal(t, domain.RoleBuy, intent.MakerRole)
	assert.Equal(t, domain.TokenYes, intent.TokenID)
}

func TestBuySharesStalePriceFallsBackToGateway(t *testing.T) {
	priceCch := newMemPriceCache()
	stale := time.Now().Add(-10 * time.Minute)
	require.NoError(t, priceCch.SetPrices(context.Background(), "0xm", 100, 100, stale))

	prices := &fakePriceReader{prices: map[string][2]uint64{
		"0xm": {250_000_000, 750_000_000},
	}}
	submitter := &fakeSubmitter{result: domain.OrderResult{Success: true}}
	svc := newTestTradeService(prices, priceCch, submitter)

	_, err := svc.BuyShares(context.Background(), "0xm", "0xmaker", domain.TokenNo, 3_000_000)
	require.NoError(t, err)
	assert.Equal(t, 1, prices.calls)

	require.Len(t, submitter.intents, 1)
	// NO side buys at the complement price 0.75: 3_000_000 / 0.75 = 4_000_000.
	assert.Equal(t, uint64(4_000_000), submitter.intents[0].TakerAmount)
}

func TestBuySharesZeroPriceRejected(t *testing.T) {
	prices := &fakePriceReader{prices: map[string][2]uint64{
		"0xm": {0, 0},
	}}
	submitter := &fakeSubmitter{}
	svc := newTestTradeService(prices, newMemPriceCache(), submitter)

	_, err := svc.BuyShares(context.Background(), "0xm", "0xmaker", domain.TokenYes, 1_000_000)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	assert.Empty(t, submitter.intents)
}

func TestBuySharesDustCollateralRejected(t *testing.T) {
	prices := &fakePriceReader{prices: map[string][2]uint64{
		"0xm": {1_000_000_000, 0},
	}}
	submitter := &fakeSubmitter{}
	svc := newTestTradeService(prices, newMemPriceCache(), submitter)

	_, err := svc.BuyShares(context.Background(), "0xm", "0xmaker", domain.TokenYes, 0)
	assert.ErrorIs(t, err, domain.ErrInsufficientAmount)
	assert.Empty(t, submitter.intents)
}

func TestBuySharesPriceUnavailable(t *testing.T) {
	prices := &fakePriceReader{}
	svc := newTestTradeService(prices, newMemPriceCache(), &fakeSubmitter{})

	_, err := svc.BuyShares(context.Background(), "0xmissing", "0xmaker", domain.TokenYes, 1_000_000)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

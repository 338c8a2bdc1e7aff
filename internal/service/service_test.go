package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/nereuslabs/nereusd/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// In-memory fakes shared across the service tests.
// ---------------------------------------------------------------------------

type fakeIndexer struct {
	markets   []domain.Market
	purchases []domain.PositionPurchase
	coins     domain.UserCoins
	err       error
}

func (f *fakeIndexer) FetchMarkets(ctx context.Context) ([]domain.Market, error) {
	return f.markets, f.err
}

func (f *fakeIndexer) FetchPositionPurchases(ctx context.Context, side domain.TokenSide) ([]domain.PositionPurchase, error) {
	return f.purchases, f.err
}

func (f *fakeIndexer) FetchUserCoins(ctx context.Context, address string) (domain.UserCoins, error) {
	return f.coins, f.err
}

type fakePriceReader struct {
	mu     sync.Mutex
	prices map[string][2]uint64
	err    error
	calls  int
}

func (f *fakePriceReader) GetMarketPrice(ctx context.Context, marketID string) (uint64, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, 0, f.err
	}
	p, ok := f.prices[marketID]
	if !ok {
		return 0, 0, domain.ErrNotFound
	}
	return p[0], p[1], nil
}

type memMarketStore struct {
	mu      sync.Mutex
	markets map[string]domain.Market
	order   []string
}

func newMemMarketStore() *memMarketStore {
	return &memMarketStore{markets: make(map[string]domain.Market)}
}

func (s *memMarketStore) UpsertBatch(ctx context.Context, markets []domain.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	for _, m := range markets {
		s.markets[m.Address] = m
		s.order = append(s.order, m.Address)
	}
	return nil
}

func (s *memMarketStore) GetByAddress(ctx context.Context, address string) (domain.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markets[address]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func (s *memMarketStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Market, 0, len(s.order))
	for _, addr := range s.order {
		out = append(out, s.markets[addr])
	}
	return out, nil
}

func (s *memMarketStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.markets)), nil
}

type memMarketCache struct {
	mu   sync.Mutex
	list []domain.Market
}

func (c *memMarketCache) SetList(ctx context.Context, markets []domain.Market) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = append([]domain.Market(nil), markets...)
	return nil
}

func (c *memMarketCache) GetList(ctx context.Context) ([]domain.Market, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.list == nil {
		return nil, domain.ErrNotFound
	}
	return c.list, nil
}

func (c *memMarketCache) Get(ctx context.Context, id string) (domain.Market, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.list {
		if m.Address == id {
			return m, nil
		}
	}
	return domain.Market{}, domain.ErrNotFound
}

func (c *memMarketCache) Invalidate(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = nil
	return nil
}

type memPriceCache struct {
	mu     sync.Mutex
	prices map[string][2]uint64
	ts     map[string]time.Time
}

func newMemPriceCache() *memPriceCache {
	return &memPriceCache{
		prices: make(map[string][2]uint64),
		ts:     make(map[string]time.Time),
	}
}

func (c *memPriceCache) SetPrices(ctx context.Context, marketID string, yes, no uint64, ts time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[marketID] = [2]uint64{yes, no}
	c.ts[marketID] = ts
	return nil
}

func (c *memPriceCache) GetPrices(ctx context.Context, marketID string) (uint64, uint64, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.prices[marketID]
	if !ok {
		return 0, 0, time.Time{}, domain.ErrNotFound
	}
	return p[0], p[1], c.ts[marketID], nil
}

type memBuyerCache struct {
	mu      sync.Mutex
	entries map[string][]domain.BuyerAggregate
}

func newMemBuyerCache() *memBuyerCache {
	return &memBuyerCache{entries: make(map[string][]domain.BuyerAggregate)}
}

func buyerCacheKey(marketID string, side domain.TokenSide) string {
	if side == domain.TokenYes {
		return marketID + ":yes"
	}
	return marketID + ":no"
}

func (c *memBuyerCache) Set(ctx context.Context, marketID string, side domain.TokenSide, buyers []domain.BuyerAggregate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[buyerCacheKey(marketID, side)] = buyers
	return nil
}

func (c *memBuyerCache) Get(ctx context.Context, marketID string, side domain.TokenSide) ([]domain.BuyerAggregate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	buyers, ok := c.entries[buyerCacheKey(marketID, side)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return buyers, nil
}

type memSignalBus struct {
	mu        sync.Mutex
	published map[string][][]byte
}

func newMemSignalBus() *memSignalBus {
	return &memSignalBus{published: make(map[string][][]byte)}
}

func (b *memSignalBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[channel] = append(b.published[channel], payload)
	return nil
}

func (b *memSignalBus) Subscribe(ctx context.Context, channels ...string) (<-chan domain.SignalMessage, error) {
	ch := make(chan domain.SignalMessage)
	close(ch)
	return ch, nil
}

type memChatStore struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
}

func (s *memChatStore) Insert(ctx context.Context, msg domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *memChatStore) ListByMarket(ctx context.Context, marketID string, opts domain.ListOpts) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ChatMessage
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].MarketID == marketID {
			out = append(out, s.messages[i])
		}
	}
	return out, nil
}

type fakeSubmitter struct {
	mu      sync.Mutex
	intents []domain.OrderIntent
	result  domain.OrderResult
	err     error
}

func (f *fakeSubmitter) SubmitOrder(ctx context.Context, intent domain.OrderIntent) (domain.OrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.OrderResult{}, f.err
	}
	f.intents = append(f.intents, intent)
	return f.result, nil
}

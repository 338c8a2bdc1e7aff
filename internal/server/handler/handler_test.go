package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereuslabs/nereusd/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testMux registers the handlers under the same route patterns the server
// uses, so path parameters resolve in tests.
func testMux(register func(mux *http.ServeMux)) *http.ServeMux {
	mux := http.NewServeMux()
	register(mux)
	return mux
}

type stubMarketService struct {
	markets map[string]domain.Market
	list    []domain.Market
}

func (s *stubMarketService) Get(ctx context.Context, address string) (domain.Market, error) {
	m, ok := s.markets[address]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func (s *stubMarketService) List(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	return s.list, nil
}

func (s *stubMarketService) Count(ctx context.Context) (int64, error) {
	return int64(len(s.list)), nil
}

func TestListMarkets(t *testing.T) {
	svc := &stubMarketService{list: []domain.Market{
		{Address: "0xa", Topic: "first"},
		{Address: "0xb", Topic: "second"},
	}}
	h := NewMarketHandler(svc, testLogger())
	mux := testMux(func(m *http.ServeMux) { m.HandleFunc("GET /api/markets", h.ListMarkets) })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp listMarketsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Markets, 2)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, "0xa", resp.Markets[0].Address, "display order is preserved")
}

func TestGetMarketNotFound(t *testing.T) {
	h := NewMarketHandler(&stubMarketService{}, testLogger())
	mux := testMux(func(m *http.ServeMux) { m.HandleFunc("GET /api/markets/{id}", h.GetMarket) })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0xmissing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubBuyerService struct {
	gotSide domain.TokenSide
	buyers  []domain.BuyerAggregate
}

func (s *stubBuyerService) Leaderboard(ctx context.Context, marketID string, side domain.TokenSide) ([]domain.BuyerAggregate, error) {
	s.gotSide = side
	return s.buyers, nil
}

func TestLeaderboardSideParsing(t *testing.T) {
	svc := &stubBuyerService{}
	h := NewBuyerHandler(svc, testLogger())
	mux := testMux(func(m *http.ServeMux) { m.HandleFunc("GET /api/markets/{id}/buyers", h.Leaderboard) })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0xm/buyers?side=no", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TokenNo, svc.gotSide)

	// Side defaults to yes.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0xm/buyers", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TokenYes, svc.gotSide)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0xm/buyers?side=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaderboardEmptyIsJSONArray(t *testing.T) {
	h := NewBuyerHandler(&stubBuyerService{}, testLogger())
	mux := testMux(func(m *http.ServeMux) { m.HandleFunc("GET /api/markets/{id}/buyers", h.Leaderboard) })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0xm/buyers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"buyers":[]`)
}

type stubTradeService struct {
	err    error
	result domain.OrderResult
}

func (s *stubTradeService) BuyShares(ctx context.Context, marketID, maker string, side domain.TokenSide, collateral uint64) (domain.OrderResult, error) {
	if s.err != nil {
		return domain.OrderResult{}, s.err
	}
	return s.result, nil
}

func postJSON(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(rec, req)
	return rec
}

func TestPlaceOrder(t *testing.T) {
	svc := &stubTradeService{result: domain.OrderResult{Success: true, Digest: "0xd"}}
	h := NewOrderHandler(svc, testLogger())
	mux := testMux(func(m *http.ServeMux) { m.HandleFunc("POST /api/orders", h.PlaceOrder) })

	rec := postJSON(mux, "/api/orders", `{"market_id":"0xm","maker":"0xmaker","side":"yes","collateral":1000000}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "0xd")
}

func TestPlaceOrderErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid price", domain.ErrInvalidPrice, http.StatusConflict},
		{"insufficient amount", domain.ErrInsufficientAmount, http.StatusUnprocessableEntity},
		{"invalid order", domain.ErrInvalidOrder, http.StatusBadRequest},
		{"market missing", domain.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOrderHandler(&stubTradeService{err: tt.err}, testLogger())
			mux := testMux(func(m *http.ServeMux) { m.HandleFunc("POST /api/orders", h.PlaceOrder) })

			rec := postJSON(mux, "/api/orders", `{"market_id":"0xm","maker":"0xmaker","side":"yes","collateral":1}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestPlaceOrderBadRequests(t *testing.T) {
	h := NewOrderHandler(&stubTradeService{}, testLogger())
	mux := testMux(func(m *http.ServeMux) { m.HandleFunc("POST /api/orders", h.PlaceOrder) })

	rec := postJSON(mux, "/api/orders", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(mux, "/api/orders", `{"maker":"0xmaker","side":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(mux, "/api/orders", `{"market_id":"0xm","maker":"0xmaker","side":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubChatService struct {
	messages []domain.ChatMessage
}

func (s *stubChatService) Post(ctx context.Context, marketID, address, message string) (domain.ChatMessage, error) {
	if message == "" {
		return domain.ChatMessage{}, domain.ErrInvalidOrder
	}
	msg := domain.ChatMessage{ID: "id-1", MarketID: marketID, Address: address, Message: message}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *stubChatService) List(ctx context.Context, marketID string, opts domain.ListOpts) ([]domain.ChatMessage, error) {
	return s.messages, nil
}

func TestChatPostAndList(t *testing.T) {
	svc := &stubChatService{}
	h := NewChatHandler(svc, testLogger())
	mux := testMux(func(m *http.ServeMux) {
		m.HandleFunc("POST /api/markets/{id}/chat", h.PostMessage)
		m.HandleFunc("GET /api/markets/{id}/chat", h.ListMessages)
	})

	rec := postJSON(mux, "/api/markets/0xm/chat", `{"address":"0xalice","message":"gm"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0xm/chat", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gm")

	rec = postJSON(mux, "/api/markets/0xm/chat", `{"address":"0xalice","message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubOrderbookService struct {
	book     domain.Orderbook
	gotSide  *domain.TokenSide
	gotLimit int
}

func (s *stubOrderbookService) Snapshot(ctx context.Context, marketID string, side *domain.TokenSide, limit int) (domain.Orderbook, error) {
	s.gotSide = side
	s.gotLimit = limit
	if s.book.MarketID == "" {
		return domain.Orderbook{}, domain.ErrNotFound
	}
	return s.book, nil
}

func TestGetOrderbook(t *testing.T) {
	svc := &stubOrderbookService{book: domain.Orderbook{
		MarketID: "0xm",
		Bids:     []domain.BookOrder{{Maker: "0xbid", TakerAmount: 10}},
		Asks:     []domain.BookOrder{},
	}}
	h := NewOrderbookHandler(svc, testLogger())
	mux := testMux(func(m *http.ServeMux) { m.HandleFunc("GET /api/markets/{id}/orderbook", h.GetOrderbook) })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0xm/orderbook?side=no&limit=25", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var book domain.Orderbook
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	assert.Len(t, book.Bids, 1)
	assert.Contains(t, rec.Body.String(), `"asks":[]`)

	require.NotNil(t, svc.gotSide)
	assert.Equal(t, domain.TokenNo, *svc.gotSide)
	assert.Equal(t, 25, svc.gotLimit)
}

func TestGetOrderbookSideDefaultsToBoth(t *testing.T) {
	svc := &stubOrderbookService{book: domain.Orderbook{MarketID: "0xm"}}
	h := NewOrderbookHandler(svc, testLogger())
	mux := testMux(func(m *http.ServeMux) { m.HandleFunc("GET /api/markets/{id}/orderbook", h.GetOrderbook) })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0xm/orderbook", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.gotSide)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0xm/orderbook?side=sideways", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderbookMarketMissing(t *testing.T) {
	h := NewOrderbookHandler(&stubOrderbookService{}, testLogger())
	mux := testMux(func(m *http.ServeMux) { m.HandleFunc("GET /api/markets/{id}/orderbook", h.GetOrderbook) })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0xmissing/orderbook", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubAdminService struct {
	specs  []domain.MarketCreate
	result domain.OrderResult
	err    error
}

func (s *stubAdminService) CreateMarket(ctx context.Context, spec domain.MarketCreate) (domain.OrderResult, error) {
	if s.err != nil {
		return domain.OrderResult{}, s.err
	}
	s.specs = append(s.specs, spec)
	return s.result, nil
}

func TestCreateMarket(t *testing.T) {
	svc := &stubAdminService{result: domain.OrderResult{Success: true, Digest: "0xcreate"}}
	h := NewAdminHandler(svc, testLogger())
	mux := testMux(func(m *http.ServeMux) { m.HandleFunc("POST /api/markets", h.CreateMarket) })

	rec := postJSON(mux, "/api/markets",
		`{"creator":"0xadmin","topic":"Will it rain?","description":"d","start_time":1700000000000,"end_time":1700086400000}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "0xcreate")

	require.Len(t, svc.specs, 1)
	assert.Equal(t, "Will it rain?", svc.specs[0].Topic)
	assert.Equal(t, int64(1_700_086_400_000), svc.specs[0].EndTime)
}

func TestCreateMarketBadRequests(t *testing.T) {
	h := NewAdminHandler(&stubAdminService{err: domain.ErrInvalidOrder}, testLogger())
	mux := testMux(func(m *http.ServeMux) { m.HandleFunc("POST /api/markets", h.CreateMarket) })

	rec := postJSON(mux, "/api/markets", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(mux, "/api/markets", `{"topic":"no creator"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

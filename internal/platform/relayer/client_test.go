package relayer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereuslabs/nereusd/internal/domain"
)

func TestSubmitOrderWireEncoding(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":true,"digest":"0xdigest"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	result, err := c.SubmitOrder(context.Background(), domain.OrderIntent{
		MarketID:    "0xmarket",
		Maker:       "0xmaker",
		MakerAmount: 5_000_000,
		TakerAmount: 10_000_000,
		MakerRole:   domain.RoleBuy,
		TokenID:     domain.TokenYes,
		Expiration:  1_700_003_600_000,
		Salt:        42,
	})
	require.NoError(t, err)
	assert.Equal(t, "0xdigest", result.Digest)

	order := got["order"].(map[string]any)
	// Contract calling convention: role buy = 0, token yes = 1.
	assert.Equal(t, float64(0), order["maker_role"])
	assert.Equal(t, float64(1), order["token_id"])
	assert.Equal(t, float64(5_000_000), order["maker_amount"])
	assert.Equal(t, float64(10_000_000), order["taker_amount"])
	assert.Equal(t, float64(42), order["salt"])
}

func TestSubmitOrderZeroTakerRejectedLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("zero-share order must never reach the relayer")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.SubmitOrder(context.Background(), domain.OrderIntent{
		MarketID: "0xmarket",
		Maker:    "0xmaker",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestSubmitOrderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"market ended"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.SubmitOrder(context.Background(), domain.OrderIntent{
		MarketID:    "0xmarket",
		Maker:       "0xmaker",
		TakerAmount: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "market ended")
}

func TestCheckHTTPStatusMapping(t *testing.T) {
	assert.NoError(t, checkHTTPStatus(200, nil))
	assert.ErrorIs(t, checkHTTPStatus(404, []byte("x")), domain.ErrNotFound)
	assert.ErrorIs(t, checkHTTPStatus(401, []byte("x")), domain.ErrUnauthorized)
	assert.ErrorIs(t, checkHTTPStatus(429, []byte("x")), domain.ErrRateLimited)
	assert.Error(t, checkHTTPStatus(500, []byte("x")))
}

func TestCreateMarketWireEncoding(t *testing.T) {
	var got map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true,"digest":"0xcreate"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	result, err := c.CreateMarket(context.Background(), domain.MarketCreate{
		Creator:     "0xadmin",
		Topic:       "Will it rain?",
		Description: "Resolved against the official forecast.",
		StartTime:   1_700_000_000_000,
		EndTime:     1_700_086_400_000,
	})
	require.NoError(t, err)
	assert.Equal(t, "0xcreate", result.Digest)

	assert.Equal(t, "/v1/markets", path)
	assert.Equal(t, "0xadmin", got["creator"])
	assert.Equal(t, "Will it rain?", got["topic"])
	assert.Equal(t, float64(1_700_000_000_000), got["start_time"])
	assert.Equal(t, float64(1_700_086_400_000), got["end_time"])
}

func TestCreateMarketMissingFieldsRejectedLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("incomplete creation spec must never reach the relayer")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.CreateMarket(context.Background(), domain.MarketCreate{Creator: "0xadmin"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestMintAndMergeCompleteSet(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	require.NoError(t, c.MintCompleteSet(context.Background(), "0xm", "0xo", 100))
	require.NoError(t, c.MergeCompleteSet(context.Background(), "0xm", "0xo", 50))
	assert.Equal(t, []string{"/v1/liquidity/mint", "/v1/liquidity/merge"}, paths)
}

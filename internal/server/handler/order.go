package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// TradeService defines the methods the order handler requires from the
// service layer.
type TradeService interface {
	BuyShares(ctx context.Context, marketID, maker string, side domain.TokenSide, collateral uint64) (domain.OrderResult, error)
}

// OrderHandler serves order placement.
type OrderHandler struct {
	trades TradeService
	logger *slog.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(trades TradeService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		trades: trades,
		logger: logger,
	}
}

// placeOrderRequest is the order placement payload. Collateral is in USDC
// base units.
type placeOrderRequest struct {
	MarketID   string `json:"market_id"`
	Maker      string `json:"maker"`
	Side       string `json:"side"`
	Collateral uint64 `json:"collateral"`
}

// PlaceOrder builds and submits a buy order for one side of a market.
// POST /api/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MarketID == "" || req.Maker == "" {
		writeError(w, http.StatusBadRequest, "market_id and maker are required")
		return
	}

	side, ok := domain.ParseTokenSide(req.Side)
	if !ok {
		writeError(w, http.StatusBadRequest, "side must be yes or no")
		return
	}

	result, err := h.trades.BuyShares(r.Context(), req.MarketID, req.Maker, side, req.Collateral)
	if err != nil {
		h.logger.WarnContext(r.Context(), "handler: place order failed",
			slog.String("market_id", req.MarketID),
			slog.String("maker", req.Maker),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err, "failed to place order")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// OrderbookService defines the methods the orderbook handler requires from
// the service layer.
type OrderbookService interface {
	Snapshot(ctx context.Context, marketID string, side *domain.TokenSide, limit int) (domain.Orderbook, error)
}

// OrderbookHandler serves on-chain orderbook reads.
type OrderbookHandler struct {
	book   OrderbookService
	logger *slog.Logger
}

// NewOrderbookHandler creates an OrderbookHandler.
func NewOrderbookHandler(book OrderbookService, logger *slog.Logger) *OrderbookHandler {
	return &OrderbookHandler{
		book:   book,
		logger: logger,
	}
}

// GetOrderbook returns a market's resting bids and asks, best orders first.
// side narrows both halves to one outcome token; omitted means both. limit
// bounds each half.
// GET /api/markets/{id}/orderbook?side=yes&limit=50
func (h *OrderbookHandler) GetOrderbook(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var side *domain.TokenSide
	if v := r.URL.Query().Get("side"); v != "" {
		s, ok := domain.ParseTokenSide(v)
		if !ok {
			writeError(w, http.StatusBadRequest, "side must be yes or no")
			return
		}
		side = &s
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	book, err := h.book.Snapshot(r.Context(), id, side, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: orderbook read failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err, "failed to read orderbook")
		return
	}

	writeJSON(w, http.StatusOK, book)
}

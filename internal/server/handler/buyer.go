package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// BuyerService defines the methods the buyer handler requires from the
// service layer.
type BuyerService interface {
	Leaderboard(ctx context.Context, marketID string, side domain.TokenSide) ([]domain.BuyerAggregate, error)
}

// BuyerHandler serves the per-market buyer leaderboard.
type BuyerHandler struct {
	buyers BuyerService
	logger *slog.Logger
}

// NewBuyerHandler creates a BuyerHandler.
func NewBuyerHandler(buyers BuyerService, logger *slog.Logger) *BuyerHandler {
	return &BuyerHandler{
		buyers: buyers,
		logger: logger,
	}
}

// leaderboardResponse wraps the leaderboard output.
type leaderboardResponse struct {
	MarketID string                  `json:"market_id"`
	Side     string                  `json:"side"`
	Buyers   []domain.BuyerAggregate `json:"buyers"`
}

// Leaderboard returns the aggregated buyers for one side of a market,
// largest cumulative buy first.
// GET /api/markets/{id}/buyers?side=yes
func (h *BuyerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	sideParam := r.URL.Query().Get("side")
	if sideParam == "" {
		sideParam = "yes"
	}
	side, ok := domain.ParseTokenSide(sideParam)
	if !ok {
		writeError(w, http.StatusBadRequest, "side must be yes or no")
		return
	}

	buyers, err := h.buyers.Leaderboard(r.Context(), id, side)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: leaderboard failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err, "failed to compute leaderboard")
		return
	}

	if buyers == nil {
		buyers = []domain.BuyerAggregate{}
	}

	writeJSON(w, http.StatusOK, leaderboardResponse{
		MarketID: id,
		Side:     sideParam,
		Buyers:   buyers,
	})
}

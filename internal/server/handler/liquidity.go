package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// LiquidityService defines the methods the liquidity handler requires from
// the service layer.
type LiquidityService interface {
	Mint(ctx context.Context, marketID, owner string, amount uint64) error
	Merge(ctx context.Context, marketID, owner string, amount uint64) error
	Faucet(ctx context.Context, address string) error
}

// LiquidityHandler serves complete-set liquidity operations and the testnet
// faucet.
type LiquidityHandler struct {
	liquidity LiquidityService
	logger    *slog.Logger
}

// NewLiquidityHandler creates a LiquidityHandler.
func NewLiquidityHandler(liquidity LiquidityService, logger *slog.Logger) *LiquidityHandler {
	return &LiquidityHandler{
		liquidity: liquidity,
		logger:    logger,
	}
}

// liquidityRequest is the mint/merge payload. Amount is in USDC base units
// for mint and in share sets for merge.
type liquidityRequest struct {
	MarketID string `json:"market_id"`
	Owner    string `json:"owner"`
	Amount   uint64 `json:"amount"`
}

// Mint deposits collateral and mints matching YES+NO share sets.
// POST /api/liquidity/mint
func (h *LiquidityHandler) Mint(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "mint", h.liquidity.Mint)
}

// Merge burns matching YES+NO share sets back into collateral.
// POST /api/liquidity/merge
func (h *LiquidityHandler) Merge(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "merge", h.liquidity.Merge)
}

func (h *LiquidityHandler) handle(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, string, string, uint64) error) {
	var req liquidityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := fn(r.Context(), req.MarketID, req.Owner, req.Amount); err != nil {
		h.logger.WarnContext(r.Context(), "handler: liquidity op failed",
			slog.String("op", op),
			slog.String("market_id", req.MarketID),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err, "liquidity operation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// faucetRequest is the faucet payload.
type faucetRequest struct {
	Address string `json:"address"`
}

// Faucet requests testnet USDC for an address.
// POST /api/faucet
func (h *LiquidityHandler) Faucet(w http.ResponseWriter, r *http.Request) {
	var req faucetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	if err := h.liquidity.Faucet(r.Context(), req.Address); err != nil {
		h.logger.WarnContext(r.Context(), "handler: faucet failed",
			slog.String("address", req.Address),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err, "faucet request failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

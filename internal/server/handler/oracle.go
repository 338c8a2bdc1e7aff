package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// OracleService defines the methods the oracle handler requires from the
// service layer.
type OracleService interface {
	Settings(ctx context.Context, marketID string) (json.RawMessage, error)
}

// OracleHandler serves oracle settings documents.
type OracleHandler struct {
	oracle OracleService
	logger *slog.Logger
}

// NewOracleHandler creates an OracleHandler.
func NewOracleHandler(oracle OracleService, logger *slog.Logger) *OracleHandler {
	return &OracleHandler{
		oracle: oracle,
		logger: logger,
	}
}

// GetSettings returns the oracle settings document for a market.
// GET /api/markets/{id}/oracle
func (h *OracleHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	settings, err := h.oracle.Settings(r.Context(), id)
	if err != nil {
		h.logger.WarnContext(r.Context(), "handler: oracle settings failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err, "failed to resolve oracle settings")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(settings)
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// AdminService defines the methods the admin handler requires from the
// service layer.
type AdminService interface {
	CreateMarket(ctx context.Context, spec domain.MarketCreate) (domain.OrderResult, error)
}

// AdminHandler serves privileged market administration. The auth middleware
// gates the mutating routes before requests reach it.
type AdminHandler struct {
	admin  AdminService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(admin AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger,
	}
}

// CreateMarket submits a market creation transaction through the relayer.
// The new market appears in listings on the next refresh cycle.
// POST /api/markets
func (h *AdminHandler) CreateMarket(w http.ResponseWriter, r *http.Request) {
	var spec domain.MarketCreate
	if err := decodeBody(r, &spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.admin.CreateMarket(r.Context(), spec)
	if err != nil {
		h.logger.WarnContext(r.Context(), "handler: create market failed",
			slog.String("topic", spec.Topic),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err, "failed to create market")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

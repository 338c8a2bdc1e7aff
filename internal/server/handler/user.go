package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// UserService defines the methods the user handler requires from the service
// layer.
type UserService interface {
	Coins(ctx context.Context, address string) (domain.UserCoins, error)
}

// UserHandler serves user wallet views.
type UserHandler struct {
	users  UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// GetCoins returns the USDC coin objects owned by an address.
// GET /api/users/{address}/coins
func (h *UserHandler) GetCoins(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	coins, err := h.users.Coins(r.Context(), address)
	if err != nil {
		h.logger.WarnContext(r.Context(), "handler: get user coins failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err, "failed to fetch coins")
		return
	}

	writeJSON(w, http.StatusOK, coins)
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// ChatService defines the methods the chat handler requires from the service
// layer.
type ChatService interface {
	Post(ctx context.Context, marketID, address, message string) (domain.ChatMessage, error)
	List(ctx context.Context, marketID string, opts domain.ListOpts) ([]domain.ChatMessage, error)
}

// ChatHandler serves per-market chat rooms.
type ChatHandler struct {
	chat   ChatService
	logger *slog.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chat ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

// postMessageRequest is the chat post payload.
type postMessageRequest struct {
	Address string `json:"address"`
	Message string `json:"message"`
}

// PostMessage appends a message to a market's chat room.
// POST /api/markets/{id}/chat
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req postMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.chat.Post(r.Context(), id, req.Address, req.Message)
	if err != nil {
		h.logger.WarnContext(r.Context(), "handler: post chat message failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err, "failed to post message")
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// ListMessages returns a market's messages, newest first.
// GET /api/markets/{id}/chat?limit=50&offset=0
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	messages, err := h.chat.List(r.Context(), id, parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list chat messages failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	if messages == nil {
		messages = []domain.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

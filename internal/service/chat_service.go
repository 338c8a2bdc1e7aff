package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// maxChatMessageLen bounds a single chat message.
const maxChatMessageLen = 500

// ChatService manages per-market chat rooms.
type ChatService struct {
	store  domain.ChatStore
	bus    domain.SignalBus
	logger *slog.Logger
	now    func() time.Time
}

// NewChatService creates a ChatService.
func NewChatService(store domain.ChatStore, bus domain.SignalBus, logger *slog.Logger) *ChatService {
	return &ChatService{
		store:  store,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// chatChannel is the signal bus channel for one market's chat room.
func chatChannel(marketID string) string {
	return "chat:" + marketID
}

// Post validates and persists a chat message, then announces it to room
// subscribers.
func (s *ChatService) Post(ctx context.Context, marketID, address, message string) (domain.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if marketID == "" || address == "" {
		return domain.ChatMessage{}, fmt.Errorf("chat_service: post: %w: market and address are required", domain.ErrInvalidOrder)
	}
	if message == "" {
		return domain.ChatMessage{}, fmt.Errorf("chat_service: post: %w: empty message", domain.ErrInvalidOrder)
	}
	if len(message) > maxChatMessageLen {
		return domain.ChatMessage{}, fmt.Errorf("chat_service: post: %w: message exceeds %d characters", domain.ErrInvalidOrder, maxChatMessageLen)
	}

	msg := domain.ChatMessage{
		ID:        uuid.New().String(),
		MarketID:  marketID,
		Address:   address,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.Insert(ctx, msg); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("chat_service: post %s: %w", marketID, err)
	}

	payload, _ := json.Marshal(msg)
	if err := s.bus.Publish(ctx, chatChannel(marketID), payload); err != nil {
		s.logger.WarnContext(ctx, "chat_service: publish failed",
			slog.String("market", marketID),
			slog.String("error", err.Error()),
		)
	}

	return msg, nil
}

// List returns a market's messages, newest first.
func (s *ChatService) List(ctx context.Context, marketID string, opts domain.ListOpts) ([]domain.ChatMessage, error) {
	messages, err := s.store.ListByMarket(ctx, marketID, opts)
	if err != nil {
		return nil, fmt.Errorf("chat_service: list %s: %w", marketID, err)
	}
	return messages, nil
}

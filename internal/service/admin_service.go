package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// MarketCreator submits market creation transactions through the
// sponsored-execution relayer.
type MarketCreator interface {
	CreateMarket(ctx context.Context, spec domain.MarketCreate) (domain.OrderResult, error)
}

// AdminService handles privileged market administration. The auth middleware
// gates the routes; this layer owns the semantic validation.
type AdminService struct {
	relayer MarketCreator
	now     func() time.Time
	logger  *slog.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(relayer MarketCreator, logger *slog.Logger) *AdminService {
	return &AdminService{
		relayer: relayer,
		now:     time.Now,
		logger:  logger,
	}
}

// CreateMarket validates a market specification and hands it to the relayer.
// The returned digest identifies the creation transaction; the market itself
// shows up in listings on the next refresh cycle.
func (s *AdminService) CreateMarket(ctx context.Context, spec domain.MarketCreate) (domain.OrderResult, error) {
	if spec.Creator == "" || spec.Topic == "" {
		return domain.OrderResult{}, fmt.Errorf("admin_service: %w: creator and topic are required", domain.ErrInvalidOrder)
	}
	if spec.EndTime <= spec.StartTime {
		return domain.OrderResult{}, fmt.Errorf("admin_service: %w: end time must be after start time", domain.ErrInvalidOrder)
	}
	if spec.EndTime <= s.now().UnixMilli() {
		return domain.OrderResult{}, fmt.Errorf("admin_service: %w: market would be created already ended", domain.ErrInvalidOrder)
	}

	result, err := s.relayer.CreateMarket(ctx, spec)
	if err != nil {
		return result, fmt.Errorf("admin_service: create market: %w", err)
	}

	s.logger.InfoContext(ctx, "admin_service: market created",
		slog.String("creator", spec.Creator),
		slog.String("topic", spec.Topic),
		slog.String("digest", result.Digest),
	)
	return result, nil
}

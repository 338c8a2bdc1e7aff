package service

import (
	"context"
	"fmt"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// CoinIndexer fetches a user's USDC coin holdings from the chain indexer.
type CoinIndexer interface {
	FetchUserCoins(ctx context.Context, address string) (domain.UserCoins, error)
}

// UserService serves user wallet views.
type UserService struct {
	indexer CoinIndexer
}

// NewUserService creates a UserService.
func NewUserService(indexer CoinIndexer) *UserService {
	return &UserService{indexer: indexer}
}

// Coins returns the USDC coin object IDs owned by an address and their
// summed balance.
func (s *UserService) Coins(ctx context.Context, address string) (domain.UserCoins, error) {
	if address == "" {
		return domain.UserCoins{}, fmt.Errorf("user_service: coins: %w: address is required", domain.ErrInvalidOrder)
	}
	coins, err := s.indexer.FetchUserCoins(ctx, address)
	if err != nil {
		return domain.UserCoins{}, fmt.Errorf("user_service: coins %s: %w", address, err)
	}
	return coins, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// LiquidityRelayer executes complete-set liquidity operations and testnet
// faucet drips through the sponsored-execution relayer.
type LiquidityRelayer interface {
	MintCompleteSet(ctx context.Context, marketID, owner string, amount uint64) error
	MergeCompleteSet(ctx context.Context, marketID, owner string, amount uint64) error
	Faucet(ctx context.Context, address string) error
}

// LiquidityService validates and forwards liquidity operations.
type LiquidityService struct {
	relayer LiquidityRelayer
	logger  *slog.Logger
}

// NewLiquidityService creates a LiquidityService.
func NewLiquidityService(relayer LiquidityRelayer, logger *slog.Logger) *LiquidityService {
	return &LiquidityService{relayer: relayer, logger: logger}
}

// Mint deposits collateral and mints matching YES+NO share sets.
func (s *LiquidityService) Mint(ctx context.Context, marketID, owner string, amount uint64) error {
	if err := validateLiquidity(marketID, owner, amount); err != nil {
		return fmt.Errorf("liquidity_service: mint: %w", err)
	}
	if err := s.relayer.MintCompleteSet(ctx, marketID, owner, amount); err != nil {
		return fmt.Errorf("liquidity_service: mint %s: %w", marketID, err)
	}
	s.logger.InfoContext(ctx, "liquidity_service: minted complete set",
		slog.String("market", marketID),
		slog.String("owner", owner),
		slog.Uint64("amount", amount),
	)
	return nil
}

// Merge burns matching YES+NO share sets back into collateral.
func (s *LiquidityService) Merge(ctx context.Context, marketID, owner string, amount uint64) error {
	if err := validateLiquidity(marketID, owner, amount); err != nil {
		return fmt.Errorf("liquidity_service: merge: %w", err)
	}
	if err := s.relayer.MergeCompleteSet(ctx, marketID, owner, amount); err != nil {
		return fmt.Errorf("liquidity_service: merge %s: %w", marketID, err)
	}
	s.logger.InfoContext(ctx, "liquidity_service: merged complete set",
		slog.String("market", marketID),
		slog.String("owner", owner),
		slog.Uint64("amount", amount),
	)
	return nil
}

// Faucet requests testnet USDC for an address.
func (s *LiquidityService) Faucet(ctx context.Context, address string) error {
	if address == "" {
		return fmt.Errorf("liquidity_service: faucet: %w: address is required", domain.ErrInvalidOrder)
	}
	if err := s.relayer.Faucet(ctx, address); err != nil {
		return fmt.Errorf("liquidity_service: faucet %s: %w", address, err)
	}
	return nil
}

func validateLiquidity(marketID, owner string, amount uint64) error {
	if marketID == "" || owner == "" {
		return fmt.Errorf("%w: market and owner are required", domain.ErrInvalidOrder)
	}
	if amount == 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInsufficientAmount)
	}
	return nil
}

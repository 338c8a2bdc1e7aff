package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// OracleResolver resolves a market oracle's settings blob ID on-chain.
type OracleResolver interface {
	FetchOracleBlobID(ctx context.Context, oracleID string) (string, error)
}

// MarketGetter narrows MarketService for the oracle lookup path.
type MarketGetter interface {
	Get(ctx context.Context, address string) (domain.Market, error)
}

// OracleService resolves and serves oracle settings documents. A market
// references its oracle object, the oracle references a config object, and
// the config carries the blob ID of a JSON settings document in object
// storage.
type OracleService struct {
	markets  MarketGetter
	resolver OracleResolver
	blobs    domain.BlobReader
	logger   *slog.Logger
}

// NewOracleService creates an OracleService.
func NewOracleService(markets MarketGetter, resolver OracleResolver, blobs domain.BlobReader, logger *slog.Logger) *OracleService {
	return &OracleService{
		markets:  markets,
		resolver: resolver,
		blobs:    blobs,
		logger:   logger,
	}
}

// Settings returns the oracle settings document for a market as raw JSON.
// It returns domain.ErrNotFound when the market has no oracle configured or
// the referenced blob does not exist.
func (s *OracleService) Settings(ctx context.Context, marketID string) (json.RawMessage, error) {
	market, err := s.markets.Get(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("oracle_service: settings %s: %w", marketID, err)
	}
	if market.OracleConfig == "" {
		return nil, fmt.Errorf("oracle_service: settings %s: no oracle configured: %w", marketID, domain.ErrNotFound)
	}

	blobID, err := s.resolver.FetchOracleBlobID(ctx, market.OracleConfig)
	if err != nil {
		return nil, fmt.Errorf("oracle_service: settings %s: %w", marketID, err)
	}

	data, err := s.blobs.Read(ctx, blobID)
	if err != nil {
		return nil, fmt.Errorf("oracle_service: settings %s: blob %s: %w", marketID, blobID, err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("oracle_service: settings %s: blob %s is not valid JSON", marketID, blobID)
	}

	return json.RawMessage(data), nil
}

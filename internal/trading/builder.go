// Package trading builds validated order intents for relayer submission.
// Validation happens strictly before construction: an intent that reaches
// the relayer client always has a positive taker amount and a live price
// behind it.
package trading

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/nereuslabs/nereusd/internal/domain"
	"github.com/nereuslabs/nereusd/internal/pricing"
)

// DefaultOrderTTL is how long a submitted order stays valid when the config
// does not override it.
const DefaultOrderTTL = time.Hour

// Builder constructs buy-side order intents. The clock and salt source are
// injectable so construction is deterministic under test; production uses
// the wall clock and crypto/rand.
type Builder struct {
	orderTTL time.Duration
	now      func() time.Time
	salt     func() (uint64, error)
}

// NewBuilder creates a Builder with the given order lifetime. A non-positive
// ttl falls back to DefaultOrderTTL.
func NewBuilder(ttl time.Duration) *Builder {
	if ttl <= 0 {
		ttl = DefaultOrderTTL
	}
	return &Builder{
		orderTTL: ttl,
		now:      time.Now,
		salt:     randomSalt,
	}
}

// BuildBuy validates and constructs a buy intent for one side of a market.
//
// It fails with domain.ErrInvalidPrice when scaledPrice is zero and with
// domain.ErrInsufficientAmount when the collateral buys zero shares at the
// current price; in both cases no intent is constructed. Expiration is
// now + ttl and the salt comes from a cryptographically strong source, so
// two concurrent orders from the same maker cannot collide in practice.
func (b *Builder) BuildBuy(marketID, maker string, side domain.TokenSide, collateral, scaledPrice uint64) (domain.OrderIntent, error) {
	if marketID == "" || maker == "" {
		return domain.OrderIntent{}, fmt.Errorf("trading: %w: market and maker are required", domain.ErrInvalidOrder)
	}

	shares, err := pricing.ShareAmount(collateral, scaledPrice)
	if err != nil {
		return domain.OrderIntent{}, fmt.Errorf("trading: compute shares: %w", err)
	}
	if shares == 0 {
		return domain.OrderIntent{}, fmt.Errorf("trading: %w", domain.ErrInsufficientAmount)
	}

	salt, err := b.salt()
	if err != nil {
		return domain.OrderIntent{}, fmt.Errorf("trading: generate salt: %w", err)
	}

	return domain.OrderIntent{
		MarketID:    marketID,
		Maker:       maker,
		MakerAmount: collateral,
		TakerAmount: shares,
		MakerRole:   domain.RoleBuy,
		TokenID:     side,
		Expiration:  uint64(b.now().Add(b.orderTTL).UnixMilli()),
		Salt:        salt,
	}, nil
}

// randomSalt draws 64 bits from crypto/rand. The salt only needs to be
// unlikely to collide across concurrent orders from one maker; it is not a
// nonce and carries no wall-clock component.
func randomSalt() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

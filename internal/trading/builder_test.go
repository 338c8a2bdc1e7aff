package trading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereuslabs/nereusd/internal/domain"
	"github.com/nereuslabs/nereusd/internal/pricing"
)

func fixedBuilder(ttl time.Duration, salt uint64) *Builder {
	b := NewBuilder(ttl)
	b.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	b.salt = func() (uint64, error) { return salt, nil }
	return b
}

func TestBuildBuyYes(t *testing.T) {
	b := fixedBuilder(time.Hour, 42)

	intent, err := b.BuildBuy("0xmarket", "0xmaker", domain.TokenYes, 5_000_000, 500_000_000)
	require.NoError(t, err)

	assert.Equal(t, "0xmarket", intent.MarketID)
	assert.Equal(t, "0xmaker", intent.Maker)
	assert.Equal(t, uint64(5_000_000), intent.MakerAmount)
	assert.Equal(t, uint64(10_000_000), intent.TakerAmount, "shares at price 0.5 are double the collateral")
	assert.Equal(t, domain.RoleBuy, intent.MakerRole)
	assert.Equal(t, domain.TokenYes, intent.TokenID)
	assert.Equal(t, uint64(1_700_000_000_000+3_600_000), intent.Expiration)
	assert.Equal(t, uint64(42), intent.Salt)
}

func TestBuildBuyNoSideEncoding(t *testing.T) {
	b := fixedBuilder(time.Hour, 1)

	intent, err := b.BuildBuy("0xmarket", "0xmaker", domain.TokenNo, 1_000, pricing.PriceScale)
	require.NoError(t, err)

	// Contract calling convention: NO = 0, YES = 1, buy role = 0.
	assert.Equal(t, uint8(0), uint8(intent.TokenID))
	assert.Equal(t, uint8(0), uint8(intent.MakerRole))
}

func TestBuildBuyZeroPrice(t *testing.T) {
	b := fixedBuilder(time.Hour, 1)

	_, err := b.BuildBuy("0xmarket", "0xmaker", domain.TokenYes, 1_000_000, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestBuildBuyZeroShares(t *testing.T) {
	b := fixedBuilder(time.Hour, 1)

	// 1 unit of collateral at a price 1000x the scale rounds to zero shares.
	_, err := b.BuildBuy("0xmarket", "0xmaker", domain.TokenYes, 1, 1_000_000_000_000)
	assert.ErrorIs(t, err, domain.ErrInsufficientAmount)
}

func TestBuildBuyMissingFields(t *testing.T) {
	b := fixedBuilder(time.Hour, 1)

	_, err := b.BuildBuy("", "0xmaker", domain.TokenYes, 1_000, pricing.PriceScale)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)

	_, err = b.BuildBuy("0xmarket", "", domain.TokenYes, 1_000, pricing.PriceScale)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestBuildBuyDefaultTTL(t *testing.T) {
	b := NewBuilder(0)
	assert.Equal(t, DefaultOrderTTL, b.orderTTL)
}

func TestRandomSaltVaries(t *testing.T) {
	seen := make(map[uint64]bool)
	for range 16 {
		s, err := randomSalt()
		require.NoError(t, err)
		seen[s] = true
	}
	// 16 draws from a 64-bit space colliding would indicate a broken source.
	assert.Greater(t, len(seen), 1)
}

func TestParseTokenSide(t *testing.T) {
	side, ok := domain.ParseTokenSide("yes")
	require.True(t, ok)
	assert.Equal(t, domain.TokenYes, side)

	side, ok = domain.ParseTokenSide("No")
	require.True(t, ok)
	assert.Equal(t, domain.TokenNo, side)

	_, ok = domain.ParseTokenSide("maybe")
	assert.False(t, ok)
}

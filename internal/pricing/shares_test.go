package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nereuslabs/nereusd/internal/domain"
)

func TestShareAmount(t *testing.T) {
	tests := []struct {
		name       string
		collateral uint64
		price      uint64
		want       uint64
	}{
		{"price of 1.0 returns collateral unchanged", 1_000_000, PriceScale, 1_000_000},
		{"half price doubles shares", 1_000_000, PriceScale / 2, 2_000_000},
		{"truncates toward zero", 10, 3_000_000_000, 3},
		{"zero collateral yields zero shares", 0, 500_000_000, 0},
		{"price far above amount rounds to zero", 1, 1_000_000_000_000, 0},
		{"one unit at minimum price", 1, 1, 1_000_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShareAmount(tt.collateral, tt.price)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShareAmountZeroPrice(t *testing.T) {
	for _, collateral := range []uint64{0, 1, 1_000_000, math.MaxUint64} {
		_, err := ShareAmount(collateral, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	}
}

func TestShareAmountOverflowRejected(t *testing.T) {
	// MaxUint64 collateral at a deep price would need more than 64 bits.
	_, err := ShareAmount(math.MaxUint64, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
}

func TestShareAmountNoFloatDrift(t *testing.T) {
	// 1/3 price: float math would give 299999999.999...; integer math must
	// return exactly floor(100 * 1e9 / 333333333).
	got, err := ShareAmount(100, 333_333_333)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), got)
}

func TestShareAmountIdempotent(t *testing.T) {
	a, err := ShareAmount(123_456_789, 777_777_777)
	require.NoError(t, err)
	b, err := ShareAmount(123_456_789, 777_777_777)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNoPrice(t *testing.T) {
	assert.Equal(t, uint64(600_000_000), NoPrice(400_000_000))
	assert.Equal(t, PriceScale, NoPrice(0))
	assert.Equal(t, uint64(0), NoPrice(PriceScale))
	// Corrupted read above the scale saturates instead of wrapping.
	assert.Equal(t, uint64(0), NoPrice(PriceScale+5))
}

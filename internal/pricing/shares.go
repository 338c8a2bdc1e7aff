// Package pricing implements the fixed-point share/price arithmetic shared
// by the trading path. Prices are integers scaled by 1e9 (PriceScale == a
// probability of 1.0); all math is exact integer arithmetic because the
// on-chain consumer performs exact u64 comparisons.
package pricing

import (
	"math/big"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// PriceScale is the fixed-point scale: a scaled price of 1e9 represents 1.0.
const PriceScale uint64 = 1_000_000_000

var priceScaleBig = new(big.Int).SetUint64(PriceScale)

// ShareAmount converts a committed collateral amount into the number of
// shares it is expected to buy at the given scaled price:
//
//	shares = floor(collateral * PriceScale / scaledPrice)
//
// It returns domain.ErrInvalidPrice when scaledPrice is zero; a zero price
// signals a corrupted or stale market read and division by it is undefined.
// A zero result is a valid return value here; callers constructing orders
// must treat it as domain.ErrInsufficientAmount before submitting.
//
// The intermediate product is computed in big.Int so collateral amounts near
// the u64 ceiling cannot overflow. The quotient always fits back in a u64
// because scaledPrice >= 1.
func ShareAmount(collateral, scaledPrice uint64) (uint64, error) {
	if scaledPrice == 0 {
		return 0, domain.ErrInvalidPrice
	}

	shares := new(big.Int).SetUint64(collateral)
	shares.Mul(shares, priceScaleBig)
	shares.Quo(shares, new(big.Int).SetUint64(scaledPrice))

	if !shares.IsUint64() {
		// collateral * 1e9 / price exceeds u64 only when price < 1e9 and
		// collateral is already near the ceiling; the contract cannot
		// represent such an order either.
		return 0, domain.ErrInvalidOrder
	}
	return shares.Uint64(), nil
}

// NoPrice derives the NO side price from the YES price: the two sides of a
// binary market always sum to PriceScale. A yes price above the scale is a
// corrupted read; the result saturates at zero so the zero-price guard in
// ShareAmount rejects it downstream.
func NoPrice(yes uint64) uint64 {
	if yes >= PriceScale {
		return 0
	}
	return PriceScale - yes
}

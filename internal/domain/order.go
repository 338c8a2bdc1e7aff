package domain

// Role encodes the maker's side of an order as consumed by the on-chain
// matching contract. The numeric mapping is part of the contract calling
// convention and must not change.
type Role uint8

const (
	RoleBuy  Role = 0
	RoleSell Role = 1
)

// TokenSide encodes which outcome token an order targets. As with Role, the
// numeric values are fixed by the contract: 0 = NO, 1 = YES.
type TokenSide uint8

const (
	TokenNo  TokenSide = 0
	TokenYes TokenSide = 1
)

// ParseTokenSide maps the API-facing side strings to the wire encoding.
func ParseTokenSide(s string) (TokenSide, bool) {
	switch s {
	case "yes", "Yes", "YES":
		return TokenYes, true
	case "no", "No", "NO":
		return TokenNo, true
	}
	return 0, false
}

func (t TokenSide) String() string {
	if t == TokenYes {
		return "yes"
	}
	return "no"
}

// OrderIntent is a fully validated request to buy exposure to one side of a
// market. All amounts are integers in chain base units (u64 on the wire).
// TakerAmount is always strictly positive: an intent with zero expected
// shares is rejected at construction and never reaches the relayer.
type OrderIntent struct {
	MarketID    string    `json:"market_id"`
	Maker       string    `json:"maker"`
	MakerAmount uint64    `json:"maker_amount"` // collateral committed (USDC base units)
	TakerAmount uint64    `json:"taker_amount"` // expected shares
	MakerRole   Role      `json:"maker_role"`
	TokenID     TokenSide `json:"token_id"`
	Expiration  uint64    `json:"expiration"` // unix milliseconds
	Salt        uint64    `json:"salt"`       // collision-avoidance, not a nonce
}

// OrderResult is the relayer's response to an order submission.
type OrderResult struct {
	Success bool   `json:"success"`
	Digest  string `json:"digest"`
	Message string `json:"message,omitempty"`
}

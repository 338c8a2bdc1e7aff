package domain

// BookOrder is one resting order decoded from the on-chain book. Field order
// mirrors the contract's Order struct, which fixes the BCS layout: 32-byte
// maker address, two u64 amounts, two u8 flags, u64 expiration, u64 salt.
type BookOrder struct {
	Maker       string    `json:"maker"`
	MakerAmount uint64    `json:"maker_amount"`
	TakerAmount uint64    `json:"taker_amount"`
	MakerRole   Role      `json:"maker_role"`
	TokenID     TokenSide `json:"token_id"`
	Expiration  uint64    `json:"expiration"` // unix milliseconds
	Salt        uint64    `json:"salt"`
}

// Orderbook is one market's resting bids and asks, best orders first as
// returned by the contract.
type Orderbook struct {
	MarketID string      `json:"market_id"`
	Bids     []BookOrder `json:"bids"`
	Asks     []BookOrder `json:"asks"`
}

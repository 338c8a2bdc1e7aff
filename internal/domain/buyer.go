package domain

import "time"

// PositionPurchase is a raw outcome-token purchase record assembled from the
// indexer: the position object's owner and amount joined with the timestamp
// of the transaction that created it. Owner may be empty for in-flight
// ownership states; such records carry no attributable buyer.
type PositionPurchase struct {
	Owner     string
	Amount    uint64
	MarketID  string
	Timestamp time.Time
}

// BuyerAggregate is a per-address rollup of purchase activity within one
// market, used for leaderboard ranking. Exactly one aggregate exists per
// distinct owner address; LastBuyTime is the maximum timestamp folded in.
type BuyerAggregate struct {
	Address          string    `json:"address"`
	BuyAmount        uint64    `json:"buy_amount"`
	LastBuyTime      time.Time `json:"last_buy_time"`
	TransactionCount int       `json:"transaction_count"`
}

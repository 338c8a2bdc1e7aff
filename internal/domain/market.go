package domain

// Market is an immutable snapshot of an on-chain prediction market object as
// reported by the indexer. Snapshots are replaced wholesale on each refresh
// cycle; no field is ever mutated in place.
type Market struct {
	Address      string `json:"address"`
	Topic        string `json:"topic"`
	Description  string `json:"description"`
	Category     string `json:"category,omitempty"`
	StartTime    int64  `json:"start_time"` // unix milliseconds
	EndTime      int64  `json:"end_time"`   // unix milliseconds
	Yes          int64  `json:"yes"`        // aggregate YES position count
	No           int64  `json:"no"`         // aggregate NO position count
	Balance      uint64 `json:"balance"`    // collateral pool, USDC base units
	OracleConfig string `json:"oracle_config"`

	// Scaled prices (1.0 == pricing.PriceScale). Zero means the price read
	// failed or has not happened yet; callers must not trade against it.
	YesPrice uint64 `json:"yes_price,omitempty"`
	NoPrice  uint64 `json:"no_price,omitempty"`
}

// Ended reports whether the market's resolution window has closed at the
// given wall-clock time (unix milliseconds). The boundary is closed: a
// market ending exactly at now counts as ended.
func (m Market) Ended(nowMs int64) bool {
	return m.EndTime <= nowMs
}

// MarketCreate is a request to create a market. The relayer builds and signs
// the creation transaction (including sharing the oracle objects); the new
// market appears in listings on the next refresh cycle.
type MarketCreate struct {
	Creator     string `json:"creator"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
	StartTime   int64  `json:"start_time"` // unix milliseconds
	EndTime     int64  `json:"end_time"`   // unix milliseconds
}

package domain

// UserCoins describes a wallet's USDC holdings: the coin object IDs the
// wallet can spend from plus the summed balance across them.
type UserCoins struct {
	Address      string   `json:"address"`
	CoinIDs      []string `json:"coin_ids"`
	TotalBalance uint64   `json:"total_balance"`
}

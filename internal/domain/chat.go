package domain

import "time"

// ChatMessage is a single message in a market's chat room.
type ChatMessage struct {
	ID        string    `json:"id"`
	MarketID  string    `json:"market_id"`
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

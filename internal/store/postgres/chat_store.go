package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// ChatStore implements domain.ChatStore using PostgreSQL.
type ChatStore struct {
	pool *pgxpool.Pool
}

// NewChatStore creates a new ChatStore backed by the given connection pool.
func NewChatStore(pool *pgxpool.Pool) *ChatStore {
	return &ChatStore{pool: pool}
}

// Insert persists a chat message.
func (s *ChatStore) Insert(ctx context.Context, msg domain.ChatMessage) error {
	const query = `
		INSERT INTO chat_messages (id, market_id, address, message, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.pool.Exec(ctx, query,
		msg.ID, msg.MarketID, msg.Address, msg.Message, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert chat message %s: %w", msg.ID, err)
	}
	return nil
}

// ListByMarket returns a market's messages, newest first.
func (s *ChatStore) ListByMarket(ctx context.Context, marketID string, opts domain.ListOpts) ([]domain.ChatMessage, error) {
	query := `
		SELECT id, market_id, address, message, created_at
		FROM chat_messages
		WHERE market_id = $1
		ORDER BY created_at DESC`
	args := []any{marketID}
	argIdx := 2

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list chat messages %s: %w", marketID, err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.MarketID, &m.Address, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list chat messages rows %s: %w", marketID, err)
	}
	return messages, nil
}

// Compile-time interface check.
var _ domain.ChatStore = (*ChatStore)(nil)

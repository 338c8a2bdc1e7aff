package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// MarketStore implements domain.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *pgxpool.Pool
}

// NewMarketStore creates a new MarketStore backed by the given connection pool.
func NewMarketStore(pool *pgxpool.Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

const upsertMarketQuery = `
	INSERT INTO markets (
		address, topic, description, category,
		start_time, end_time, yes, no, balance,
		oracle_config, yes_price, no_price, updated_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8, $9,
		$10, $11, $12, NOW()
	)
	ON CONFLICT (address) DO UPDATE SET
		topic         = EXCLUDED.topic,
		description   = EXCLUDED.description,
		category      = EXCLUDED.category,
		start_time    = EXCLUDED.start_time,
		end_time      = EXCLUDED.end_time,
		yes           = EXCLUDED.yes,
		no            = EXCLUDED.no,
		balance       = EXCLUDED.balance,
		oracle_config = EXCLUDED.oracle_config,
		yes_price     = EXCLUDED.yes_price,
		no_price      = EXCLUDED.no_price,
		updated_at    = NOW()`

// UpsertBatch inserts or updates market snapshots in a single batch
// operation. A market whose price read failed keeps a zero price; the
// previous value is overwritten so stale prices never survive a refresh.
func (s *MarketStore) UpsertBatch(ctx context.Context, markets []domain.Market) error {
	if len(markets) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, m := range markets {
		batch.Queue(upsertMarketQuery,
			m.Address, m.Topic, m.Description, m.Category,
			m.StartTime, m.EndTime, m.Yes, m.No, m.Balance,
			m.OracleConfig, m.YesPrice, m.NoPrice,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range markets {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert market batch item %d: %w", i, err)
		}
	}
	return nil
}

const marketCols = `address, topic, description, category,
	start_time, end_time, yes, no, balance,
	oracle_config, yes_price, no_price`

// scanMarket scans a single market row into a domain.Market.
func scanMarket(row pgx.Row) (domain.Market, error) {
	var m domain.Market
	err := row.Scan(
		&m.Address, &m.Topic, &m.Description, &m.Category,
		&m.StartTime, &m.EndTime, &m.Yes, &m.No, &m.Balance,
		&m.OracleConfig, &m.YesPrice, &m.NoPrice,
	)
	if err != nil {
		return domain.Market{}, err
	}
	return m, nil
}

// GetByAddress retrieves a market snapshot by its object address.
func (s *MarketStore) GetByAddress(ctx context.Context, address string) (domain.Market, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+marketCols+` FROM markets WHERE address = $1`, address)
	m, err := scanMarket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Market{}, domain.ErrNotFound
		}
		return domain.Market{}, fmt.Errorf("postgres: get market %s: %w", address, err)
	}
	return m, nil
}

// List returns market snapshots with pagination. Active markets come first
// in end-time ascending order, then ended markets in end-time descending
// order, matching the display order served by the API.
func (s *MarketStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	query := `SELECT ` + marketCols + ` FROM markets
		ORDER BY
			(end_time <= (EXTRACT(EPOCH FROM NOW()) * 1000)::BIGINT),
			CASE WHEN end_time > (EXTRACT(EPOCH FROM NOW()) * 1000)::BIGINT THEN end_time END ASC,
			CASE WHEN end_time <= (EXTRACT(EPOCH FROM NOW()) * 1000)::BIGINT THEN end_time END DESC`
	args := []any{}
	argIdx := 1

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
		return nil, fmt.Errorf("postgres: list markets: %w", err)
	}
	defer rows.Close()

	var markets []domain.Market
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan market: %w", err)
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list markets rows: %w", err)
	}
	return markets, nil
}

// Count returns the total number of market snapshots.
func (s *MarketStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM markets").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count markets: %w", err)
	}
	return count, nil
}

// Compile-time interface check.
var _ domain.MarketStore = (*MarketStore)(nil)

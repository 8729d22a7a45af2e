package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/PxPatel/pair-matching-engine/internal/types"
)

const insertFill = `
	INSERT INTO fills (pair, maker_order_id, taker_order_id, taker_side, price, size, executed_at)
	VALUES ($1, $2::text::uuid, $3::text::uuid, $4, $5::text::numeric, $6::text::numeric, $7)
`

// FillStore implements storage.FillStore using PostgreSQL
type FillStore struct {
	pool *pgxpool.Pool
}

// NewFillStore creates a new PostgreSQL-backed fill store and applies the schema
func NewFillStore(cfg PostgresConfig) (*FillStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &FillStore{pool: pool}, nil
}

func fillArgs(fill types.Fill) []any {
	// decimals and uuids are sent as text and cast in insertFill
	return []any{
		fill.Pair,
		fill.MakerOrderID.String(),
		fill.TakerOrderID.String(),
		fill.TakerSide.String(),
		fill.Price.String(),
		fill.Size.String(),
		fill.Timestamp,
	}
}

func (s *FillStore) Save(fill types.Fill) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, insertFill, fillArgs(fill)...)
	return err
}

func (s *FillStore) SaveBatch(fills []types.Fill) error {
	if len(fills) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use pgx batch for efficient batch inserts
	batch := &pgx.Batch{}
	for _, fill := range fills {
		batch.Queue(insertFill, fillArgs(fill)...)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range fills {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert failed at index %d: %w", i, err)
		}
	}
	return nil
}

func (s *FillStore) GetRecent(limit int) ([]types.Fill, error) {
	return s.query(`
		SELECT pair, maker_order_id::text, taker_order_id::text, taker_side, price::text, size::text, executed_at
		FROM fills
		ORDER BY executed_at DESC, fill_id DESC
		LIMIT $1
	`, normalizeLimit(limit))
}

func (s *FillStore) GetRecentByPair(pair string, limit int) ([]types.Fill, error) {
	return s.query(`
		SELECT pair, maker_order_id::text, taker_order_id::text, taker_side, price::text, size::text, executed_at
		FROM fills
		WHERE pair = $2
		ORDER BY executed_at DESC, fill_id DESC
		LIMIT $1
	`, normalizeLimit(limit), pair)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	return limit
}

// query returns rows oldest first to match the other stores
func (s *FillStore) query(sql string, args ...any) ([]types.Fill, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fills []types.Fill
	for rows.Next() {
		fill, err := scanFill(rows)
		if err != nil {
			return nil, err
		}
		fills = append(fills, fill)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(fills)-1; i < j; i, j = i+1, j-1 {
		fills[i], fills[j] = fills[j], fills[i]
	}
	return fills, nil
}

func scanFill(rows pgx.Rows) (types.Fill, error) {
	var (
		fill               types.Fill
		maker, taker, side string
		price, size        string
	)
	if err := rows.Scan(&fill.Pair, &maker, &taker, &side, &price, &size, &fill.Timestamp); err != nil {
		return types.Fill{}, err
	}

	var err error
	if fill.MakerOrderID, err = uuid.Parse(maker); err != nil {
		return types.Fill{}, fmt.Errorf("scan maker_order_id: %w", err)
	}
	if fill.TakerOrderID, err = uuid.Parse(taker); err != nil {
		return types.Fill{}, fmt.Errorf("scan taker_order_id: %w", err)
	}
	if fill.TakerSide, err = types.ParseSide(side); err != nil {
		return types.Fill{}, err
	}
	if fill.Price, err = decimal.NewFromString(price); err != nil {
		return types.Fill{}, fmt.Errorf("scan price: %w", err)
	}
	if fill.Size, err = decimal.NewFromString(size); err != nil {
		return types.Fill{}, fmt.Errorf("scan size: %w", err)
	}
	return fill, nil
}

func (s *FillStore) Close() error {
	s.pool.Close()
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"dexquote/internal/storage"
)

// Store provides Postgres persistence for the swap simulation audit
// trail.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var _ storage.Recorder = (*Store)(nil)

// EnsureSchema creates the audit table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS swap_simulations (
			id BIGSERIAL PRIMARY KEY,
			from_token TEXT NOT NULL,
			to_token TEXT NOT NULL,
			protocol TEXT NOT NULL,
			fee_tier INTEGER NOT NULL DEFAULT 0,
			amount_in_raw TEXT NOT NULL,
			amount_out_raw TEXT NOT NULL,
			minimum_out_raw TEXT NOT NULL,
			estimated_gas TEXT NOT NULL,
			price_impact TEXT NOT NULL,
			simulated_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// RecordSwap inserts one served swap simulation.
func (s *Store) RecordSwap(ctx context.Context, record storage.SwapRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO swap_simulations (
			from_token, to_token, protocol, fee_tier,
			amount_in_raw, amount_out_raw, minimum_out_raw,
			estimated_gas, price_impact, simulated_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
	`,
		record.FromToken,
		record.ToToken,
		record.Protocol,
		record.FeeTier,
		record.AmountInRaw,
		record.AmountOutRaw,
		record.MinimumOutRaw,
		record.EstimatedGas,
		record.PriceImpact,
		record.SimulatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert swap record: %w", err)
	}
	return nil
}

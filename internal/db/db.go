package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// RunMigrations creates the settlement archive tables.
func (db *DB) RunMigrations(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS settlements (
			id UUID PRIMARY KEY,
			game_type TEXT NOT NULL DEFAULT '',
			settled_at TIMESTAMPTZ NOT NULL,
			player_count INTEGER NOT NULL,
			total_owed NUMERIC NOT NULL,
			total_received NUMERIC NOT NULL,
			balanced BOOLEAN NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_settlements_settled_at ON settlements(settled_at DESC);
		CREATE TABLE IF NOT EXISTS settlement_balances (
			settlement_id UUID NOT NULL REFERENCES settlements(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			player_name TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			PRIMARY KEY (settlement_id, position)
		);
	`)
	return err
}

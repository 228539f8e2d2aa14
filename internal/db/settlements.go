package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("settlement not found")

type Settlement struct {
	ID            uuid.UUID           `json:"id"`
	GameType      string              `json:"game_type"`
	SettledAt     time.Time           `json:"settled_at"`
	PlayerCount   int                 `json:"player_count"`
	TotalOwed     decimal.Decimal     `json:"total_owed"`
	TotalReceived decimal.Decimal     `json:"total_received"`
	Balanced      bool                `json:"balanced"`
	Balances      []SettlementBalance `json:"balances"`
}

type SettlementBalance struct {
	PlayerID string          `json:"player_id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

// SaveSettlement stores a finished settlement and its balances in one transaction.
func (db *DB) SaveSettlement(ctx context.Context, s Settlement) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO settlements (id, game_type, settled_at, player_count, total_owed, total_received, balanced)
		 VALUES ($1::uuid, $2, $3, $4, $5::numeric, $6::numeric, $7)`,
		s.ID.String(), s.GameType, s.SettledAt, s.PlayerCount, s.TotalOwed.String(), s.TotalReceived.String(), s.Balanced,
	); err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}

	for i, b := range s.Balances {
		if _, err := tx.Exec(ctx,
			`INSERT INTO settlement_balances (settlement_id, position, player_id, player_name, amount)
			 VALUES ($1::uuid, $2, $3, $4, $5::numeric)`,
			s.ID.String(), i, b.PlayerID, b.Name, b.Amount.String(),
		); err != nil {
			return fmt.Errorf("insert balance: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListSettlements returns the most recent settlements, newest first.
func (db *DB) ListSettlements(ctx context.Context, limit int) ([]Settlement, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id::text, game_type, settled_at, player_count, total_owed::text, total_received::text, balanced
		 FROM settlements
		 ORDER BY settled_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	out, err := scanSettlements(rows)
	if err != nil {
		return nil, err
	}

	for i := range out {
		balances, err := db.settlementBalances(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Balances = balances
	}
	return out, nil
}

func (db *DB) GetSettlement(ctx context.Context, id uuid.UUID) (*Settlement, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT game_type, settled_at, player_count, total_owed::text, total_received::text, balanced
		 FROM settlements
		 WHERE id = $1::uuid`,
		id.String(),
	)
	s := Settlement{ID: id}
	var owed, received string
	if err := row.Scan(&s.GameType, &s.SettledAt, &s.PlayerCount, &owed, &received, &s.Balanced); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var err error
	if s.TotalOwed, err = decimal.NewFromString(owed); err != nil {
		return nil, fmt.Errorf("decode total_owed: %w", err)
	}
	if s.TotalReceived, err = decimal.NewFromString(received); err != nil {
		return nil, fmt.Errorf("decode total_received: %w", err)
	}
	if s.Balances, err = db.settlementBalances(ctx, s.ID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (db *DB) settlementBalances(ctx context.Context, id uuid.UUID) ([]SettlementBalance, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT player_id, player_name, amount::text
		 FROM settlement_balances
		 WHERE settlement_id = $1::uuid
		 ORDER BY position`,
		id.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SettlementBalance
	for rows.Next() {
		var b SettlementBalance
		var amount string
		if err := rows.Scan(&b.PlayerID, &b.Name, &amount); err != nil {
			return nil, err
		}
		if b.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("decode amount: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanSettlements(rows pgx.Rows) ([]Settlement, error) {
	defer rows.Close()
	var out []Settlement
	for rows.Next() {
		var s Settlement
		var id, owed, received string
		if err := rows.Scan(&id, &s.GameType, &s.SettledAt, &s.PlayerCount, &owed, &received, &s.Balanced); err != nil {
			return nil, err
		}
		var err error
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("decode id: %w", err)
		}
		if s.TotalOwed, err = decimal.NewFromString(owed); err != nil {
			return nil, fmt.Errorf("decode total_owed: %w", err)
		}
		if s.TotalReceived, err = decimal.NewFromString(received); err != nil {
			return nil, fmt.Errorf("decode total_received: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

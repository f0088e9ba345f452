package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbPostgresLedger struct {
	db *pgxpool.Pool
}

func NewPostgresLedger(db *pgxpool.Pool) LedgerRepository {
	return &dbPostgresLedger{
		db: db,
	}
}

func (that *dbPostgresLedger) GetBalance(ctx context.Context, participant string) (int64, error) {
	var balance int64

	err := that.db.QueryRow(ctx,
		`SELECT balance FROM balances WHERE participant = $1`,
		participant,
	).Scan(&balance)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

func (that *dbPostgresLedger) AdjustBalance(ctx context.Context, participant string, amount int64) (int64, error) {
	var balance int64

	err := that.db.QueryRow(ctx,
		`INSERT INTO balances (participant, balance)
		 VALUES ($1, GREATEST($2::BIGINT, 0))
		 ON CONFLICT (participant) DO UPDATE
		 SET balance = GREATEST(balances.balance + $2::BIGINT, 0), updated_at = now()
		 RETURNING balance`,
		participant,
		amount,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}

	return balance, nil
}

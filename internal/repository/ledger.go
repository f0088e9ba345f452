package repository

import (
	"context"
	"sync"
)

// LedgerRepository is a balance store. Balances never go below zero.
type LedgerRepository interface {
	GetBalance(ctx context.Context, participant string) (int64, error)
	AdjustBalance(ctx context.Context, participant string, amount int64) (int64, error)
}

type memoryLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

// NewMemoryLedger - process-local ledger for local runs and tests.
func NewMemoryLedger() LedgerRepository {
	return &memoryLedger{
		balances: make(map[string]int64),
	}
}

func (that *memoryLedger) GetBalance(_ context.Context, participant string) (int64, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.balances[participant], nil
}

func (that *memoryLedger) AdjustBalance(_ context.Context, participant string, amount int64) (int64, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	balance := max(that.balances[participant]+amount, 0)
	that.balances[participant] = balance

	return balance, nil
}

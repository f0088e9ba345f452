package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/rocketscienceinc/minigames-backend/internal/repository/storage"
	"github.com/rocketscienceinc/minigames-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLedger runs the shared ledger contract against one implementation.
func testLedger(ctx context.Context, t *testing.T, ledger LedgerRepository) {
	t.Helper()

	t.Run("Unknown participant has zero balance", func(t *testing.T) {
		balance, err := ledger.GetBalance(ctx, "nobody")

		require.NoError(t, err)
		assert.Zero(t, balance)
	})

	t.Run("AdjustBalance adds and subtracts", func(t *testing.T) {
		// Given: alice earns 70
		balance, err := ledger.AdjustBalance(ctx, "alice", 70)
		require.NoError(t, err)
		require.Equal(t, int64(70), balance)

		// When: 20 is taken away
		balance, err = ledger.AdjustBalance(ctx, "alice", -20)

		// Then: the new balance is returned and stored
		require.NoError(t, err)
		assert.Equal(t, int64(50), balance)

		stored, err := ledger.GetBalance(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(50), stored)
	})

	t.Run("Balance is clamped at zero", func(t *testing.T) {
		_, err := ledger.AdjustBalance(ctx, "bob", 10)
		require.NoError(t, err)

		balance, err := ledger.AdjustBalance(ctx, "bob", -500)
		require.NoError(t, err)
		assert.Zero(t, balance)

		balance, err = ledger.AdjustBalance(ctx, "carol", -5)
		require.NoError(t, err)
		assert.Zero(t, balance)
	})

	t.Run("Concurrent credits are not lost", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ledger.AdjustBalance(ctx, "dave", 10)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		balance, err := ledger.GetBalance(ctx, "dave")
		require.NoError(t, err)
		assert.Equal(t, int64(200), balance)
	})
}

func TestMemoryLedger(t *testing.T) {
	testLedger(context.Background(), t, NewMemoryLedger())
}

func TestRedisLedger(t *testing.T) {
	ctx, st := suite.New(t)

	testLedger(ctx, t, NewRedisLedger(st.Storage))
}

func TestPostgresLedger(t *testing.T) {
	ctx, st := suite.NewPostgres(t)

	postgres := &storage.PostgresStorage{Connection: st.Postgres}
	require.NoError(t, postgres.Init(ctx))

	testLedger(ctx, t, NewPostgresLedger(st.Postgres))
}

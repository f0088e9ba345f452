package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// adjustScript adds ARGV[1] to the balance at KEYS[1] and clamps the result at zero.
var adjustScript = redis.NewScript(`
local balance = tonumber(redis.call("GET", KEYS[1]) or "0") + tonumber(ARGV[1])
if balance < 0 then
	balance = 0
end
redis.call("SET", KEYS[1], balance)
return balance
`)

type dbRedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(client *redis.Client) LedgerRepository {
	return &dbRedisLedger{
		client: client,
	}
}

func balanceKey(participant string) string {
	return "balance:" + participant
}

func (that *dbRedisLedger) GetBalance(ctx context.Context, participant string) (int64, error) {
	balance, err := that.client.Get(ctx, balanceKey(participant)).Int64()

	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

func (that *dbRedisLedger) AdjustBalance(ctx context.Context, participant string, amount int64) (int64, error) {
	balance, err := adjustScript.Run(ctx, that.client, []string{balanceKey(participant)}, amount).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}

	return balance, nil
}

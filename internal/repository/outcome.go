package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
	"github.com/rocketscienceinc/minigames-backend/internal/entity"
)

// OutcomeRepository keeps finished outcomes for a while so they can be shown after
// the session is gone.
type OutcomeRepository interface {
	Save(ctx context.Context, outcome *entity.Outcome) error
	GetByKey(ctx context.Context, key string) (*entity.Outcome, error)
}

type dbOutcome struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOutcomeRepository(client *redis.Client, ttl time.Duration) OutcomeRepository {
	return &dbOutcome{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbOutcome) Save(ctx context.Context, outcome *entity.Outcome) error {
	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("could not marshal outcome: %w", err)
	}

	outcomeKey := "outcome:" + outcome.SessionKey
	err = that.client.Set(ctx, outcomeKey, outcomeJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set outcome: %w", err)
	}

	return nil
}

func (that *dbOutcome) GetByKey(ctx context.Context, key string) (*entity.Outcome, error) {
	outcomeKey := "outcome:" + key

	response, err := that.client.Get(ctx, outcomeKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: outcome %s", apperror.ErrNotFound, key)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}

	var outcome entity.Outcome
	if err = json.Unmarshal([]byte(response), &outcome); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outcome: %w", err)
	}

	return &outcome, nil
}

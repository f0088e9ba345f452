package reward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
	"github.com/rocketscienceinc/minigames-backend/internal/entity"
)

// Ledger is the external balance store.
type Ledger interface {
	GetBalance(ctx context.Context, participant string) (int64, error)
	// AdjustBalance adds a signed amount; the balance never drops below zero.
	AdjustBalance(ctx context.Context, participant string, amount int64) (int64, error)
}

// Reporter delivers the rewards of a finished session to the ledger.
type Reporter struct {
	logger *slog.Logger
	ledger Ledger
}

func NewReporter(logger *slog.Logger, ledger Ledger) *Reporter {
	return &Reporter{
		logger: logger.With("component", "reward"),
		ledger: ledger,
	}
}

// Report - credits every instruction of the outcome once. Delivery is best-effort: a failed
// instruction does not stop the others and nothing is retried.
func (that *Reporter) Report(ctx context.Context, outcome *entity.Outcome) error {
	log := that.logger.With("method", "Report", "session", outcome.SessionKey, "result", outcome.Result)

	var errs []error
	for _, instruction := range outcome.Rewards {
		balance, err := that.ledger.AdjustBalance(ctx, instruction.Participant, instruction.Amount)
		if err != nil {
			log.Error("failed to adjust balance", "participant", instruction.Participant, "amount", instruction.Amount, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", instruction.Participant, err))
			continue
		}

		log.Info("reward delivered", "participant", instruction.Participant, "amount", instruction.Amount, "balance", balance)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", apperror.ErrRewardDelivery, errors.Join(errs...))
	}

	return nil
}

func (that *Reporter) Balance(ctx context.Context, participant string) (int64, error) {
	balance, err := that.ledger.GetBalance(ctx, participant)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

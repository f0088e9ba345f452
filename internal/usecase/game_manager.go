package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
	"github.com/rocketscienceinc/minigames-backend/internal/config"
	"github.com/rocketscienceinc/minigames-backend/internal/entity"
	"github.com/rocketscienceinc/minigames-backend/internal/metrics"
	"github.com/rocketscienceinc/minigames-backend/internal/pkg"
	"github.com/rocketscienceinc/minigames-backend/internal/reward"
	"github.com/rocketscienceinc/minigames-backend/internal/session"
	"github.com/rocketscienceinc/minigames-backend/internal/supervisor"
)

type outcomeRepo interface {
	Save(ctx context.Context, outcome *entity.Outcome) error
	GetByKey(ctx context.Context, key string) (*entity.Outcome, error)
}

// CreateRequest describes a new session. Key, Timeout and Word are optional.
type CreateRequest struct {
	Key          string        `json:"key,omitempty"`
	Kind         entity.Kind   `json:"kind"`
	Participants []string      `json:"participants"`
	Timeout      time.Duration `json:"timeout,omitempty"`
	Word         string        `json:"word,omitempty"`
}

// MoveResult is the state after a move. Outcome is set when the move finished the session.
type MoveResult struct {
	Snapshot session.Snapshot `json:"snapshot"`
	Outcome  *entity.Outcome  `json:"outcome,omitempty"`
}

type GameManager struct {
	logger *slog.Logger
	conf   config.Games

	registry    *session.Registry
	supervisor  *supervisor.Supervisor
	reporter    *reward.Reporter
	outcomeRepo outcomeRepo
	metrics     *metrics.Metrics
	random      session.Random

	rewards reward.Table

	listenersMu sync.RWMutex
	listeners   []func(*entity.Outcome)
}

// NewGameManager - outcomeRepo may be nil, finished outcomes are then not kept.
func NewGameManager(
	logger *slog.Logger,
	conf config.Games,
	registry *session.Registry,
	supervisor *supervisor.Supervisor,
	reporter *reward.Reporter,
	outcomeRepo outcomeRepo,
	metrics *metrics.Metrics,
	random session.Random,
) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),
		conf:   conf,

		registry:    registry,
		supervisor:  supervisor,
		reporter:    reporter,
		outcomeRepo: outcomeRepo,
		metrics:     metrics,
		random:      random,

		rewards: conf.RewardTable(),
	}
}

// CreateSession - binds a new session to a key and arms its deadline.
func (that *GameManager) CreateSession(ctx context.Context, req CreateRequest) (*session.Snapshot, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownKind, req.Kind)
	}

	key := req.Key
	if key == "" {
		key = pkg.GenerateSessionKey()
	}

	log := that.logger.With("method", "CreateSession", "session", key, "kind", req.Kind)

	board, err := session.NewBoard(req.Kind, session.BoardOptions{
		Word:   that.pickWord(req),
		Width:  that.conf.Snake.Width,
		Height: that.conf.Snake.Height,
		Random: that.random,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidOptions, err)
	}

	s, err := session.New(key, board, req.Participants, that.supervisor.Now(), session.Options{
		RandomFirstTurn: that.conf.TicTacToe.FirstTurn == config.FirstTurnRandom,
		Random:          that.random,
		Rewarder:        that.rewards,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err = that.registry.Create(s); err != nil {
		return nil, err
	}

	that.metrics.Created(req.Kind)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = that.conf.Timeout(req.Kind)
		if s.Status() == entity.StatusPending {
			timeout = that.conf.JoinTimeout
		}
	}
	that.watch(s, timeout)

	snapshot := s.Snapshot()
	log.Info("session created", "participants", req.Participants, "status", snapshot.Status, "deadline", snapshot.Deadline)

	return &snapshot, nil
}

func (that *GameManager) pickWord(req CreateRequest) string {
	if req.Kind != entity.KindHangman || req.Word != "" {
		return req.Word
	}

	words := that.conf.Hangman.Words
	if len(words) == 0 {
		return ""
	}

	return words[that.random.Intn(len(words))]
}

// JoinSession - takes the open seat of a pending session.
func (that *GameManager) JoinSession(ctx context.Context, key, participant string) (*session.Snapshot, error) {
	log := that.logger.With("method", "JoinSession", "session", key, "participant", participant)

	s, err := that.registry.Get(key)
	if err != nil {
		return nil, err
	}

	if _, err = s.Join(participant); err != nil {
		return nil, fmt.Errorf("failed to join session: %w", err)
	}

	that.watch(s, that.conf.Timeout(s.Kind))

	snapshot := s.Snapshot()
	log.Info("participant joined", "turn", snapshot.Turn)

	return &snapshot, nil
}

// SubmitMove - applies one move. Only one move per session is processed at a time; a
// concurrent one fails with ErrSessionBusy. When the move finishes the session and the
// reward cannot be delivered, the result is returned together with ErrRewardDelivery.
func (that *GameManager) SubmitMove(ctx context.Context, move entity.Move) (*MoveResult, error) {
	log := that.logger.With("method", "SubmitMove", "session", move.SessionKey, "participant", move.Participant)

	s, err := that.registry.Get(move.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidSession, move.SessionKey)
	}

	if !s.TryBegin() {
		that.metrics.Move(s.Kind, apperror.Code(apperror.ErrSessionBusy))
		return nil, apperror.ErrSessionBusy
	}
	defer s.End()

	step, err := s.Apply(move.Participant, move.Payload, that.supervisor.Now())
	if err != nil {
		that.metrics.Move(s.Kind, apperror.Code(err))
		log.Debug("move rejected", "error", err)
		return nil, err
	}

	that.metrics.Move(s.Kind, "applied")

	if step.Outcome != nil {
		result := &MoveResult{Snapshot: step.Snapshot, Outcome: step.Outcome}
		return result, that.finalize(ctx, s, step.Outcome)
	}

	that.watch(s, that.conf.Timeout(s.Kind))

	return &MoveResult{Snapshot: s.Snapshot()}, nil
}

// GetSnapshot - read-only view of a live session.
func (that *GameManager) GetSnapshot(_ context.Context, key string) (*session.Snapshot, error) {
	s, err := that.registry.Get(key)
	if err != nil {
		return nil, err
	}

	snapshot := s.Snapshot()

	return &snapshot, nil
}

// Abandon - cancels a live session. It ends with an abandoned outcome and pays nothing.
func (that *GameManager) Abandon(ctx context.Context, key string) error {
	s, err := that.registry.Get(key)
	if err != nil {
		return err
	}

	outcome, ok := s.Abandon(that.supervisor.Now())
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidSession, key)
	}

	return that.finalize(ctx, s, outcome)
}

// GetOutcome - outcome of a finished session, while it is still archived.
func (that *GameManager) GetOutcome(ctx context.Context, key string) (*entity.Outcome, error) {
	if that.outcomeRepo == nil {
		return nil, fmt.Errorf("%w: outcome %s", apperror.ErrNotFound, key)
	}

	outcome, err := that.outcomeRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}

	return outcome, nil
}

// OnFinish - registers fn to be called with every finished outcome, timeouts included.
func (that *GameManager) OnFinish(fn func(*entity.Outcome)) {
	that.listenersMu.Lock()
	defer that.listenersMu.Unlock()

	that.listeners = append(that.listeners, fn)
}

func (that *GameManager) Balance(ctx context.Context, participant string) (int64, error) {
	return that.reporter.Balance(ctx, participant)
}

func (that *GameManager) watch(s *session.Session, timeout time.Duration) {
	log := that.logger.With("method", "watch", "session", s.Key)

	that.supervisor.Watch(s, timeout, func(outcome *entity.Outcome) {
		if err := that.finalize(context.Background(), s, outcome); err != nil {
			log.Error("failed to finalize timed out session", "error", err)
		}
	})
}

// finalize - runs once per session, right after its Finished transition.
func (that *GameManager) finalize(ctx context.Context, s *session.Session, outcome *entity.Outcome) error {
	log := that.logger.With("method", "finalize", "session", s.Key)

	that.registry.Remove(s.Key, s)
	that.metrics.Finished(outcome)

	log.Info("session finished", "result", outcome.Result, "participant", outcome.Participant, "score", outcome.Score)

	if that.outcomeRepo != nil {
		if err := that.outcomeRepo.Save(ctx, outcome); err != nil {
			log.Error("failed to archive outcome", "error", err)
		}
	}

	that.listenersMu.RLock()
	for _, fn := range that.listeners {
		fn(outcome)
	}
	that.listenersMu.RUnlock()

	if err := that.reporter.Report(ctx, outcome); err != nil {
		that.metrics.RewardFailed()
		return err
	}

	return nil
}

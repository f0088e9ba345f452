package session

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
	"github.com/rocketscienceinc/minigames-backend/internal/entity"
	"github.com/rocketscienceinc/minigames-backend/internal/hangman"
	"github.com/rocketscienceinc/minigames-backend/internal/snake"
	"github.com/rocketscienceinc/minigames-backend/internal/tictactoe"
)

// Timer is a scheduled deadline that can be cancelled.
type Timer interface {
	Stop() bool
}

// Rewarder turns a finished outcome into reward instructions.
type Rewarder interface {
	Instructions(outcome entity.Outcome) []entity.RewardInstruction
}

// Random - uniform choice over [0, n).
type Random interface {
	Intn(n int) int
}

type Options struct {
	// RandomFirstTurn gives the X mark to a random participant on activation.
	RandomFirstTurn bool
	Random          Random
	Rewarder        Rewarder
}

// Session is one live game. All fields below mu are guarded by it.
type Session struct {
	Key       string
	Kind      entity.Kind
	CreatedAt time.Time

	opts Options

	// inFlight is set while a move is being processed.
	inFlight atomic.Bool

	mu           sync.Mutex
	participants []string
	marks        map[string]string
	status       entity.Status
	turn         string
	deadline     time.Time
	board        Board
	outcome      *entity.Outcome

	timer Timer
	gen   uint64
}

// Step is the result of an applied move.
type Step struct {
	Snapshot Snapshot
	Outcome  *entity.Outcome
}

// New - creates a session. A multiplayer kind with a single participant starts pending,
// waiting for someone to join.
func New(key string, board Board, participants []string, now time.Time, opts Options) (*Session, error) {
	if err := validateParticipants(board.Kind, participants); err != nil {
		return nil, err
	}

	that := &Session{
		Key:          key,
		Kind:         board.Kind,
		CreatedAt:    now,
		opts:         opts,
		participants: slices.Clone(participants),
		marks:        make(map[string]string),
		status:       entity.StatusPending,
		board:        board,
	}

	if len(participants) == board.Kind.Seats() {
		that.activate()
	}

	return that, nil
}

func validateParticipants(kind entity.Kind, participants []string) error {
	if len(participants) == 0 || len(participants) > kind.Seats() {
		return fmt.Errorf("%w: %s takes up to %d participants, got %d",
			apperror.ErrInvalidParticipants, kind, kind.Seats(), len(participants))
	}

	for i, id := range participants {
		if id == "" {
			return fmt.Errorf("%w: empty participant id", apperror.ErrInvalidParticipants)
		}
		if slices.Contains(participants[:i], id) {
			return fmt.Errorf("%w: %w: %s", apperror.ErrInvalidParticipants, apperror.ErrSelfJoin, id)
		}
	}

	return nil
}

// activate - Pending -> Active. Caller holds mu or owns the session exclusively.
func (that *Session) activate() {
	that.status = entity.StatusActive

	if that.Kind != entity.KindTicTacToe {
		that.turn = that.participants[0]
		return
	}

	first := 0
	if that.opts.RandomFirstTurn && that.opts.Random != nil {
		first = that.opts.Random.Intn(len(that.participants))
	}

	that.marks[that.participants[first]] = tictactoe.MarkX
	that.marks[that.participants[1-first]] = tictactoe.MarkO
	that.turn = that.participants[first]
}

// TryBegin - claims the session for one move. Returns false if another move is in flight.
func (that *Session) TryBegin() bool {
	return that.inFlight.CompareAndSwap(false, true)
}

func (that *Session) End() {
	that.inFlight.Store(false)
}

// Join - takes the free seat of a pending session.
func (that *Session) Join(participant string) (Snapshot, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch {
	case participant == "":
		return Snapshot{}, fmt.Errorf("%w: empty participant id", apperror.ErrInvalidParticipants)
	case slices.Contains(that.participants, participant):
		return Snapshot{}, apperror.ErrSelfJoin
	case that.status == entity.StatusActive:
		return Snapshot{}, apperror.ErrSessionFull
	case that.status != entity.StatusPending:
		return Snapshot{}, apperror.ErrInvalidSession
	}

	that.participants = append(that.participants, participant)
	that.activate()
	that.disarm()

	return that.snapshot(), nil
}

// Apply - authorizes and applies a move. Checks run in order: session active, participant,
// turn, payload. Nothing is mutated when an error is returned.
func (that *Session) Apply(participant string, payload entity.Payload, now time.Time) (Step, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status != entity.StatusActive {
		return Step{}, fmt.Errorf("%w: %s is %s", apperror.ErrInvalidSession, that.Key, that.status)
	}

	if !slices.Contains(that.participants, participant) {
		return Step{}, apperror.ErrNotAParticipant
	}

	if that.turn != participant {
		return Step{}, apperror.ErrNotYourTurn
	}

	if err := that.board.validate(payload); err != nil {
		return Step{}, err
	}

	result, err := that.board.apply(that.marks[participant], payload)
	if err != nil {
		return Step{}, err
	}

	that.disarm()

	switch result {
	case won:
		that.finish(entity.OutcomeWin, participant, now)
	case lost:
		that.finish(entity.OutcomeLoss, participant, now)
	case draw:
		that.finish(entity.OutcomeDraw, "", now)
	default:
		that.passTurn(participant)
	}

	step := Step{Snapshot: that.snapshot()}
	if that.outcome != nil {
		outcome := *that.outcome
		step.Outcome = &outcome
	}

	return step, nil
}

func (that *Session) passTurn(current string) {
	if len(that.participants) < 2 {
		return
	}

	for _, id := range that.participants {
		if id != current {
			that.turn = id
			return
		}
	}
}

// Arm - installs a new deadline, cancelling the previous one. schedule receives the
// generation the timer must present to Expire. Returns false on a finished session.
func (that *Session) Arm(deadline time.Time, schedule func(gen uint64) Timer) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status == entity.StatusFinished {
		return false
	}

	that.disarm()
	that.deadline = deadline
	that.timer = schedule(that.gen)

	return true
}

// disarm - cancels the current deadline. A timer that already fired sees a stale
// generation and does nothing.
func (that *Session) disarm() {
	if that.timer != nil {
		that.timer.Stop()
		that.timer = nil
	}
	that.gen++
}

// Expire - forces a timeout if gen is still the current deadline.
func (that *Session) Expire(gen uint64, now time.Time) (*entity.Outcome, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status == entity.StatusFinished || gen != that.gen {
		return nil, false
	}

	that.timer = nil
	that.gen++
	that.finish(entity.OutcomeTimeout, "", now)

	outcome := *that.outcome

	return &outcome, true
}

// Abandon - cancels a session that has not finished yet.
func (that *Session) Abandon(now time.Time) (*entity.Outcome, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status == entity.StatusFinished {
		return nil, false
	}

	that.disarm()
	that.finish(entity.OutcomeAbandoned, "", now)

	outcome := *that.outcome

	return &outcome, true
}

// finish - the single Finished transition. Caller holds mu.
func (that *Session) finish(result entity.OutcomeKind, participant string, now time.Time) {
	that.status = entity.StatusFinished
	that.turn = ""

	outcome := entity.Outcome{
		SessionKey:   that.Key,
		Game:         that.Kind,
		Result:       result,
		Participant:  participant,
		Participants: slices.Clone(that.participants),
		Score:        that.board.score(),
		FinishedAt:   now,
	}
	if that.opts.Rewarder != nil {
		outcome.Rewards = that.opts.Rewarder.Instructions(outcome)
	}

	that.outcome = &outcome
}

func (that *Session) Status() entity.Status {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.status
}

func (that *Session) Snapshot() Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshot()
}

func (that *Session) snapshot() Snapshot {
	snap := Snapshot{
		Key:       that.Key,
		Kind:      that.Kind,
		Status:    that.status,
		Turn:      that.turn,
		CreatedAt: that.CreatedAt,
		Deadline:  that.deadline,
	}

	for _, id := range that.participants {
		snap.Participants = append(snap.Participants, entity.Player{ID: id, Mark: that.marks[id]})
	}

	finished := that.status == entity.StatusFinished
	switch that.Kind {
	case entity.KindTicTacToe:
		view := that.board.TicTacToe.View()
		snap.TicTacToe = &view
	case entity.KindHangman:
		view := that.board.Hangman.View(finished)
		snap.Hangman = &view
	case entity.KindSnake:
		view := that.board.Snake.View()
		snap.Snake = &view
	}

	if that.outcome != nil {
		outcome := *that.outcome
		snap.Outcome = &outcome
	}

	return snap
}

// Snapshot is a read-only view of a session for display.
type Snapshot struct {
	Key          string          `json:"key"`
	Kind         entity.Kind     `json:"kind"`
	Status       entity.Status   `json:"status"`
	Participants []entity.Player `json:"participants"`
	Turn         string          `json:"turn,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Deadline     time.Time       `json:"deadline"`

	TicTacToe *tictactoe.View `json:"tictactoe,omitempty"`
	Hangman   *hangman.View   `json:"hangman,omitempty"`
	Snake     *snake.View     `json:"snake,omitempty"`

	Outcome *entity.Outcome `json:"outcome,omitempty"`
}

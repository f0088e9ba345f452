package session

import (
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
	"github.com/rocketscienceinc/minigames-backend/internal/entity"
	"github.com/rocketscienceinc/minigames-backend/internal/snake"
	"github.com/rocketscienceinc/minigames-backend/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixedRandom int

func (that fixedRandom) Intn(n int) int {
	return int(that) % n
}

type stubTimer struct {
	stopped bool
}

func (that *stubTimer) Stop() bool {
	was := !that.stopped
	that.stopped = true
	return was
}

type flatRewarder int64

func (that flatRewarder) Instructions(outcome entity.Outcome) []entity.RewardInstruction {
	if outcome.Result != entity.OutcomeWin {
		return nil
	}
	return []entity.RewardInstruction{{Participant: outcome.Participant, Amount: int64(that)}}
}

func cell(row, col int) entity.Payload {
	return entity.Payload{Cell: &entity.Cell{Row: row, Col: col}}
}

func newTicTacToe(t *testing.T, participants ...string) *Session {
	t.Helper()

	board, err := NewBoard(entity.KindTicTacToe, BoardOptions{})
	require.NoError(t, err)

	session, err := New("ttt", board, participants, now, Options{Rewarder: flatRewarder(50)})
	require.NoError(t, err)

	return session
}

func newHangman(t *testing.T, word string) *Session {
	t.Helper()

	board, err := NewBoard(entity.KindHangman, BoardOptions{Word: word})
	require.NoError(t, err)

	session, err := New("hangman", board, []string{"alice"}, now, Options{})
	require.NoError(t, err)

	return session
}

func TestNew(t *testing.T) {
	t.Run("Two players start active with the first one on X", func(t *testing.T) {
		session := newTicTacToe(t, "alice", "bob")

		snap := session.Snapshot()

		assert.Equal(t, entity.StatusActive, snap.Status)
		assert.Equal(t, "alice", snap.Turn)
		assert.Equal(t, []entity.Player{{ID: "alice", Mark: tictactoe.MarkX}, {ID: "bob", Mark: tictactoe.MarkO}}, snap.Participants)
		require.NotNil(t, snap.TicTacToe)
		assert.Nil(t, snap.Hangman)
	})

	t.Run("Random first turn", func(t *testing.T) {
		board, err := NewBoard(entity.KindTicTacToe, BoardOptions{})
		require.NoError(t, err)

		session, err := New("ttt", board, []string{"alice", "bob"}, now, Options{RandomFirstTurn: true, Random: fixedRandom(1)})
		require.NoError(t, err)

		snap := session.Snapshot()
		assert.Equal(t, "bob", snap.Turn)
		assert.Equal(t, tictactoe.MarkX, snap.Participants[1].Mark)
	})

	t.Run("One player waits for an opponent", func(t *testing.T) {
		session := newTicTacToe(t, "alice")

		assert.Equal(t, entity.StatusPending, session.Status())
		assert.Empty(t, session.Snapshot().Turn)
	})

	t.Run("Invalid participants", func(t *testing.T) {
		board, err := NewBoard(entity.KindHangman, BoardOptions{Word: "GO"})
		require.NoError(t, err)

		_, err = New("h", board, nil, now, Options{})
		require.ErrorIs(t, err, apperror.ErrInvalidParticipants)

		_, err = New("h", board, []string{"alice", "bob"}, now, Options{})
		require.ErrorIs(t, err, apperror.ErrInvalidParticipants)

		ttt, err := NewBoard(entity.KindTicTacToe, BoardOptions{})
		require.NoError(t, err)
		_, err = New("t", ttt, []string{"alice", "alice"}, now, Options{})
		require.ErrorIs(t, err, apperror.ErrSelfJoin)
	})

	t.Run("Unknown kind", func(t *testing.T) {
		_, err := NewBoard(entity.Kind("chess"), BoardOptions{})

		require.ErrorIs(t, err, apperror.ErrUnknownKind)
	})
}

func TestSession_Join(t *testing.T) {
	t.Run("Second player activates the session", func(t *testing.T) {
		session := newTicTacToe(t, "alice")

		snap, err := session.Join("bob")

		require.NoError(t, err)
		assert.Equal(t, entity.StatusActive, snap.Status)
		assert.Equal(t, "alice", snap.Turn)
	})

	t.Run("Join rules", func(t *testing.T) {
		session := newTicTacToe(t, "alice")

		_, err := session.Join("alice")
		require.ErrorIs(t, err, apperror.ErrSelfJoin)

		_, err = session.Join("bob")
		require.NoError(t, err)

		_, err = session.Join("carol")
		require.ErrorIs(t, err, apperror.ErrSessionFull)

		_, ok := session.Abandon(now)
		require.True(t, ok)

		_, err = session.Join("dave")
		require.ErrorIs(t, err, apperror.ErrInvalidSession)
	})
}

func TestSession_Apply(t *testing.T) {
	t.Run("Authorization order", func(t *testing.T) {
		// Given: a pending session
		session := newTicTacToe(t, "alice")

		// Then: nothing is accepted before the opponent joins
		_, err := session.Apply("alice", cell(0, 0), now)
		require.ErrorIs(t, err, apperror.ErrInvalidSession)

		_, err = session.Join("bob")
		require.NoError(t, err)

		// a stranger with a bad payload is rejected as a stranger
		_, err = session.Apply("mallory", entity.Payload{}, now)
		require.ErrorIs(t, err, apperror.ErrNotAParticipant)

		// a participant out of turn with a bad payload is rejected for the turn
		_, err = session.Apply("bob", entity.Payload{}, now)
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)

		// the turn owner with a bad payload gets IllegalMove
		_, err = session.Apply("alice", entity.Payload{Letter: "A"}, now)
		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		_, err = session.Apply("alice", cell(3, 3), now)
		require.ErrorIs(t, err, apperror.ErrIllegalMove)

		assert.Equal(t, "alice", session.Snapshot().Turn)
	})

	t.Run("Top row wins for the first player", func(t *testing.T) {
		// Given: alice (X) and bob (O)
		session := newTicTacToe(t, "alice", "bob")
		moves := []struct {
			who string
			at  entity.Payload
		}{
			{"alice", cell(0, 0)}, {"bob", cell(1, 1)}, {"alice", cell(0, 1)}, {"bob", cell(2, 2)},
		}
		for _, move := range moves {
			step, err := session.Apply(move.who, move.at, now)
			require.NoError(t, err)
			require.Nil(t, step.Outcome)
		}

		// When: alice completes the top row
		step, err := session.Apply("alice", cell(0, 2), now)

		// Then: the session is finished with a win for alice and a reward
		require.NoError(t, err)
		require.NotNil(t, step.Outcome)
		assert.Equal(t, entity.OutcomeWin, step.Outcome.Result)
		assert.Equal(t, "alice", step.Outcome.Participant)
		assert.Equal(t, []string{"alice", "bob"}, step.Outcome.Participants)
		assert.Equal(t, []entity.RewardInstruction{{Participant: "alice", Amount: 50}}, step.Outcome.Rewards)
		assert.Equal(t, entity.StatusFinished, step.Snapshot.Status)

		// and nothing else is accepted
		_, err = session.Apply("bob", cell(2, 0), now)
		require.ErrorIs(t, err, apperror.ErrInvalidSession)
	})

	t.Run("Occupied cell leaves the turn unchanged", func(t *testing.T) {
		session := newTicTacToe(t, "alice", "bob")
		_, err := session.Apply("alice", cell(1, 1), now)
		require.NoError(t, err)

		_, err = session.Apply("bob", cell(1, 1), now)

		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		assert.Equal(t, "bob", session.Snapshot().Turn)
	})

	t.Run("Hangman loss reveals the word", func(t *testing.T) {
		session := newHangman(t, "SKIN")

		var step Step
		for _, letter := range []string{"A", "B", "C", "D", "E", "F"} {
			var err error
			step, err = session.Apply("alice", entity.Payload{Letter: letter}, now)
			require.NoError(t, err)
		}

		require.NotNil(t, step.Outcome)
		assert.Equal(t, entity.OutcomeLoss, step.Outcome.Result)
		assert.Equal(t, "alice", step.Outcome.Participant)
		assert.Equal(t, "SKIN", step.Snapshot.Hangman.Word)
	})

	t.Run("Hangman keeps the turn with the only player", func(t *testing.T) {
		session := newHangman(t, "GAMING")

		step, err := session.Apply("alice", entity.Payload{Letter: "g"}, now)

		require.NoError(t, err)
		assert.Equal(t, "alice", step.Snapshot.Turn)
		assert.Empty(t, step.Snapshot.Hangman.Word)
	})

	t.Run("Snake carries the score into the outcome", func(t *testing.T) {
		board := Board{
			Kind:  entity.KindSnake,
			Snake: snake.Restore(4, 4, []snake.Point{{X: 3, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 1}}, snake.Right, &snake.Point{X: 0, Y: 0}, fixedRandom(0)),
		}
		board.Snake.Score = 4
		session, err := New("snake", board, []string{"alice"}, now, Options{})
		require.NoError(t, err)

		step, err := session.Apply("alice", entity.Payload{Direction: "right"}, now)

		require.NoError(t, err)
		require.NotNil(t, step.Outcome)
		assert.Equal(t, entity.OutcomeLoss, step.Outcome.Result)
		assert.Equal(t, 4, step.Outcome.Score)
	})
}

func TestSession_Deadline(t *testing.T) {
	t.Run("Expire finishes with a timeout", func(t *testing.T) {
		session := newTicTacToe(t, "alice", "bob")
		timer := &stubTimer{}
		var gen uint64
		armed := session.Arm(now.Add(time.Minute), func(g uint64) Timer {
			gen = g
			return timer
		})
		require.True(t, armed)
		assert.Equal(t, now.Add(time.Minute), session.Snapshot().Deadline)

		outcome, ok := session.Expire(gen, now.Add(time.Minute))

		require.True(t, ok)
		assert.Equal(t, entity.OutcomeTimeout, outcome.Result)
		assert.Empty(t, outcome.Rewards)
		assert.Equal(t, entity.StatusFinished, session.Status())

		_, ok = session.Expire(gen, now.Add(time.Minute))
		assert.False(t, ok)
		assert.False(t, session.Arm(now, func(uint64) Timer { return &stubTimer{} }))
	})

	t.Run("A move makes the old deadline stale", func(t *testing.T) {
		session := newTicTacToe(t, "alice", "bob")
		timer := &stubTimer{}
		var gen uint64
		session.Arm(now.Add(time.Minute), func(g uint64) Timer {
			gen = g
			return timer
		})

		_, err := session.Apply("alice", cell(0, 0), now)
		require.NoError(t, err)

		assert.True(t, timer.stopped)
		_, ok := session.Expire(gen, now.Add(time.Minute))
		assert.False(t, ok)
		assert.Equal(t, entity.StatusActive, session.Status())
	})

	t.Run("Abandon stops the deadline once", func(t *testing.T) {
		session := newTicTacToe(t, "alice", "bob")
		timer := &stubTimer{}
		session.Arm(now.Add(time.Minute), func(uint64) Timer { return timer })

		outcome, ok := session.Abandon(now)

		require.True(t, ok)
		assert.True(t, timer.stopped)
		assert.Equal(t, entity.OutcomeAbandoned, outcome.Result)

		_, ok = session.Abandon(now)
		assert.False(t, ok)
	})
}

func TestSession_TryBegin(t *testing.T) {
	session := newTicTacToe(t, "alice", "bob")

	require.True(t, session.TryBegin())
	assert.False(t, session.TryBegin())

	session.End()
	assert.True(t, session.TryBegin())
}

func TestSession_ConcurrentMoves(t *testing.T) {
	// Given: alice holds the turn
	session := newTicTacToe(t, "alice", "bob")

	// When: she sends two different moves at once
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, payload := range []entity.Payload{cell(0, 0), cell(2, 2)} {
		i, payload := i, payload
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = session.Apply("alice", payload, now)
		}()
	}
	wg.Wait()

	// Then: exactly one is applied and the other sees the turn already passed
	applied := 0
	for _, err := range errs {
		if err == nil {
			applied++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	}
	assert.Equal(t, 1, applied)

	marks := 0
	for _, row := range session.Snapshot().TicTacToe.Board {
		for _, c := range row {
			if c != tictactoe.EmptyCell {
				marks++
			}
		}
	}
	assert.Equal(t, 1, marks)
}

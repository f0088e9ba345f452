package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/minigames-backend/internal/config"
	"github.com/rocketscienceinc/minigames-backend/internal/entity"
	"github.com/rocketscienceinc/minigames-backend/internal/metrics"
	"github.com/rocketscienceinc/minigames-backend/internal/repository"
	"github.com/rocketscienceinc/minigames-backend/internal/reward"
	"github.com/rocketscienceinc/minigames-backend/internal/session"
	"github.com/rocketscienceinc/minigames-backend/internal/supervisor"
	"github.com/rocketscienceinc/minigames-backend/internal/usecase"
)

type firstRandom struct{}

func (firstRandom) Intn(int) int { return 0 }

type fixture struct {
	url   string
	clock *clock.Mock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	mockClock := clock.NewMock()

	manager := usecase.NewGameManager(
		logger,
		config.Games{
			JoinTimeout: 120 * time.Second,
			TicTacToe:   config.TicTacToe{Timeout: 300 * time.Second, FirstTurn: config.FirstTurnCreator},
			Hangman:     config.Hangman{Timeout: 300 * time.Second, Words: []string{"GO"}},
			Snake:       config.Snake{Timeout: 120 * time.Second, Width: 8, Height: 8},
		},
		session.NewRegistry(),
		supervisor.New(logger, mockClock),
		reward.NewReporter(logger, repository.NewMemoryLedger()),
		nil,
		metrics.New(prometheus.NewRegistry()),
		firstRandom{},
	)

	srv := httptest.NewServer(New(logger, manager))
	t.Cleanup(srv.Close)

	return &fixture{url: "ws" + strings.TrimPrefix(srv.URL, "http"), clock: mockClock}
}

func (that *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(that.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, payload Payload) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: raw}))
}

func receive(t *testing.T, conn *websocket.Conn) (string, ResponsePayload) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var message Message
	require.NoError(t, conn.ReadJSON(&message))

	var payload ResponsePayload
	require.NoError(t, json.Unmarshal(message.Payload, &payload))

	return message.Action, payload
}

func TestServer_Updates(t *testing.T) {
	t.Run("Opponent sees moves and the final outcome", func(t *testing.T) {
		// Given: alice created a game and bob is watching it
		f := newFixture(t)
		alice, bob := f.dial(t), f.dial(t)

		send(t, alice, actionCreate, Payload{Key: "k", Kind: "tictactoe", Participants: []string{"alice", "bob"}})
		action, resp := receive(t, alice)
		require.Equal(t, actionCreate, action)
		require.Empty(t, resp.Error)
		assert.Equal(t, entity.StatusActive, resp.Snapshot.Status)

		send(t, bob, actionGet, Payload{Key: "k"})
		action, _ = receive(t, bob)
		require.Equal(t, actionGet, action)

		// When: alice plays the center
		send(t, alice, actionMove, Payload{Key: "k", Participant: "alice", Move: &entity.Payload{Cell: &entity.Cell{Row: 1, Col: 1}}})

		// Then: alice gets the reply and bob gets the update
		action, resp = receive(t, alice)
		require.Equal(t, actionMove, action)
		assert.Equal(t, "bob", resp.Snapshot.Turn)

		action, resp = receive(t, bob)
		require.Equal(t, actionUpdate, action)
		assert.Equal(t, "X", resp.Snapshot.TicTacToe.Board[1][1])

		// When: the session is left idle past its deadline
		f.clock.Add(300 * time.Second)

		// Then: both connections are told it timed out
		for _, conn := range []*websocket.Conn{alice, bob} {
			action, resp = receive(t, conn)
			require.Equal(t, actionFinished, action)
			assert.Equal(t, entity.OutcomeTimeout, resp.Outcome.Result)
		}
	})
}

func TestServer_Errors(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	tests := []struct {
		name    string
		action  string
		payload Payload
		code    string
	}{
		{"unknown action", "session:dance", Payload{}, "bad_request"},
		{"missing move", actionMove, Payload{Key: "k", Participant: "alice"}, "bad_request"},
		{"missing session", actionGet, Payload{Key: "nope"}, "not_found"},
		{"unknown kind", actionCreate, Payload{Kind: "chess", Participants: []string{"alice"}}, "unknown_kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.action, tt.payload)

			_, resp := receive(t, conn)

			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

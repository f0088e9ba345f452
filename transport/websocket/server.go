package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/minigames-backend/internal/entity"
	"github.com/rocketscienceinc/minigames-backend/internal/session"
	"github.com/rocketscienceinc/minigames-backend/internal/usecase"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

type gameUseCase interface {
	CreateSession(ctx context.Context, req usecase.CreateRequest) (*session.Snapshot, error)
	JoinSession(ctx context.Context, key, participant string) (*session.Snapshot, error)
	SubmitMove(ctx context.Context, move entity.Move) (*usecase.MoveResult, error)
	GetSnapshot(ctx context.Context, key string) (*session.Snapshot, error)
	Abandon(ctx context.Context, key string) error
	OnFinish(fn func(*entity.Outcome))
}

type handlerFunc func(ctx context.Context, c *client, payload Payload) (ResponsePayload, error)

// Server - pushes session updates to every connection that touched the session.
type Server struct {
	logger   *slog.Logger
	game     gameUseCase
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc

	subscribersMutex sync.RWMutex
	subscribers      map[string]map[*client]struct{}
}

func New(logger *slog.Logger, game gameUseCase) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		game:   game,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers:    make(map[string]handlerFunc),
		subscribers: make(map[string]map[*client]struct{}),
	}

	server.handlers[actionCreate] = server.handleCreate
	server.handlers[actionJoin] = server.handleJoin
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionGet] = server.handleGet
	server.handlers[actionAbandon] = server.handleAbandon

	game.OnFinish(server.broadcastOutcome)

	return server
}

// ServeHTTP - upgrades the connection and serves its messages until it is closed.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	go c.writePump()

	log.Debug("WebSocket connection established", "remote", r.RemoteAddr)

	that.readPump(r.Context(), c)

	that.unsubscribeAll(c)
	c.close()
}

func (that *Server) readPump(ctx context.Context, c *client) {
	log := that.logger.With("method", "readPump")

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			that.reply(c, actionError, ResponsePayload{Error: "invalid message", Code: "bad_request"})
			continue
		}

		that.dispatch(ctx, c, &message)
	}
}

func (that *Server) dispatch(ctx context.Context, c *client, message *Message) {
	log := that.logger.With("method", "dispatch", "action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		that.reply(c, actionError, ResponsePayload{Error: "unknown action " + message.Action, Code: "bad_request"})
		return
	}

	var payload Payload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			that.reply(c, message.Action, ResponsePayload{Error: "invalid payload", Code: "bad_request"})
			return
		}
	}

	response, err := handler(ctx, c, payload)
	if err != nil {
		log.Debug("request rejected", "error", err)
		response.Error = err.Error()
		response.Code = errorCode(err)
	}

	that.reply(c, message.Action, response)
}

func (that *Server) reply(c *client, action string, payload ResponsePayload) {
	data, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode reply", "action", action, "error", err)
		return
	}

	if !c.enqueue(data) {
		that.logger.Warn("send buffer full, reply dropped", "action", action)
	}
}

func (that *Server) subscribe(c *client, key string) {
	that.subscribersMutex.Lock()
	defer that.subscribersMutex.Unlock()

	clients, ok := that.subscribers[key]
	if !ok {
		clients = make(map[*client]struct{})
		that.subscribers[key] = clients
	}

	clients[c] = struct{}{}
}

func (that *Server) unsubscribeAll(c *client) {
	that.subscribersMutex.Lock()
	defer that.subscribersMutex.Unlock()

	for key, clients := range that.subscribers {
		delete(clients, c)
		if len(clients) == 0 {
			delete(that.subscribers, key)
		}
	}
}

// publish - sends to every subscriber of key except the one that caused the change.
func (that *Server) publish(key string, except *client, action string, payload ResponsePayload) {
	data, err := encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode update", "action", action, "error", err)
		return
	}

	that.subscribersMutex.RLock()
	defer that.subscribersMutex.RUnlock()

	for c := range that.subscribers[key] {
		if c == except {
			continue
		}

		if !c.enqueue(data) {
			that.logger.Warn("send buffer full, update dropped", "session", key, "action", action)
		}
	}
}

// broadcastOutcome - final push for a session, then its subscribers are forgotten.
func (that *Server) broadcastOutcome(outcome *entity.Outcome) {
	that.publish(outcome.SessionKey, nil, actionFinished, ResponsePayload{Outcome: outcome})

	that.subscribersMutex.Lock()
	delete(that.subscribers, outcome.SessionKey)
	that.subscribersMutex.Unlock()
}

type client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// enqueue - never blocks, a slow connection loses messages instead of stalling a session.
func (that *client) enqueue(data []byte) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return false
	}

	select {
	case that.send <- data:
		return true
	default:
		return false
	}
}

func (that *client) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.closed {
		that.closed = true
		close(that.send)
	}
}

func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

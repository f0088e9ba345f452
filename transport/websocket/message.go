package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/minigames-backend/internal/entity"
	"github.com/rocketscienceinc/minigames-backend/internal/session"
)

const (
	actionCreate   = "session:create"
	actionJoin     = "session:join"
	actionMove     = "session:move"
	actionGet      = "session:get"
	actionAbandon  = "session:abandon"
	actionUpdate   = "session:update"
	actionFinished = "session:finished"
	actionError    = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is the request part of a message. Fields not used by the action are ignored.
type Payload struct {
	Key            string          `json:"key,omitempty"`
	Kind           string          `json:"kind,omitempty"`
	Participant    string          `json:"participant,omitempty"`
	Participants   []string        `json:"participants,omitempty"`
	Word           string          `json:"word,omitempty"`
	TimeoutSeconds int             `json:"timeout_seconds,omitempty"`
	Move           *entity.Payload `json:"move,omitempty"`
}

type ResponsePayload struct {
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Outcome  *entity.Outcome   `json:"outcome,omitempty"`
	Error    string            `json:"error,omitempty"`
	Code     string            `json:"code,omitempty"`
	Warning  string            `json:"warning,omitempty"`
}

func encode(action string, payload ResponsePayload) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

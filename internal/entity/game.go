package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
)

type Kind string

const (
	KindTicTacToe Kind = "tictactoe"
	KindHangman   Kind = "hangman"
	KindSnake     Kind = "snake"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// ParseKind - resolves a game kind from its name, case-insensitive.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownKind, name)
	}

	return kind, nil
}

func (that Kind) Valid() bool {
	switch that {
	case KindTicTacToe, KindHangman, KindSnake:
		return true
	default:
		return false
	}
}

// Seats - number of participants a session of this kind needs to be active.
func (that Kind) Seats() int {
	if that == KindTicTacToe {
		return 2
	}

	return 1
}

func (that Kind) IsMultiplayer() bool {
	return that.Seats() > 1
}

// Cell is a zero-based grid coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Payload carries the game-specific part of a move. Only the field that matches
// the session kind is read.
type Payload struct {
	Cell      *Cell  `json:"cell,omitempty"`
	Letter    string `json:"letter,omitempty"`
	Direction string `json:"direction,omitempty"`
}

type Move struct {
	SessionKey  string  `json:"session_key"`
	Participant string  `json:"participant"`
	Payload     Payload `json:"payload"`
}

package session

import (
	"fmt"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
	"github.com/rocketscienceinc/minigames-backend/internal/entity"
	"github.com/rocketscienceinc/minigames-backend/internal/hangman"
	"github.com/rocketscienceinc/minigames-backend/internal/snake"
	"github.com/rocketscienceinc/minigames-backend/internal/tictactoe"
)

// Board is the game state of a session. Exactly one field is set, the one matching Kind.
type Board struct {
	Kind      entity.Kind
	TicTacToe *tictactoe.State
	Hangman   *hangman.State
	Snake     *snake.State
}

type BoardOptions struct {
	Word   string
	Width  int
	Height int
	Random snake.Random
}

// NewBoard - builds the initial board for a game kind.
func NewBoard(kind entity.Kind, opts BoardOptions) (Board, error) {
	switch kind {
	case entity.KindTicTacToe:
		return Board{Kind: kind, TicTacToe: tictactoe.New()}, nil
	case entity.KindHangman:
		if err := hangman.ValidateWord(opts.Word); err != nil {
			return Board{}, err
		}
		return Board{Kind: kind, Hangman: hangman.New(opts.Word)}, nil
	case entity.KindSnake:
		state, err := snake.New(opts.Width, opts.Height, opts.Random)
		if err != nil {
			return Board{}, err
		}
		return Board{Kind: kind, Snake: state}, nil
	default:
		return Board{}, fmt.Errorf("%w: %q", apperror.ErrUnknownKind, kind)
	}
}

// validate - structural check of a payload before anything is mutated.
func (that Board) validate(payload entity.Payload) error {
	switch that.Kind {
	case entity.KindTicTacToe:
		if payload.Cell == nil {
			return fmt.Errorf("%w: cell is required", apperror.ErrIllegalMove)
		}
		return tictactoe.ValidateCell(payload.Cell.Row, payload.Cell.Col)
	case entity.KindHangman:
		_, err := hangman.ParseLetter(payload.Letter)
		return err
	case entity.KindSnake:
		_, err := snake.ParseDirection(payload.Direction)
		return err
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownKind, that.Kind)
	}
}

// verdict is what a rule engine reports after a move.
type verdict int

const (
	ongoing verdict = iota
	won
	lost
	draw
)

// apply - forwards the payload to the rule engine. mark is only used by tic-tac-toe.
func (that Board) apply(mark string, payload entity.Payload) (verdict, error) {
	switch that.Kind {
	case entity.KindTicTacToe:
		result, err := that.TicTacToe.MakeTurn(mark, payload.Cell.Row, payload.Cell.Col)
		if err != nil {
			return ongoing, err
		}
		switch result {
		case tictactoe.Won:
			return won, nil
		case tictactoe.Draw:
			return draw, nil
		default:
			return ongoing, nil
		}
	case entity.KindHangman:
		result, err := that.Hangman.Guess(payload.Letter)
		if err != nil {
			return ongoing, err
		}
		switch result {
		case hangman.Won:
			return won, nil
		case hangman.Lost:
			return lost, nil
		default:
			return ongoing, nil
		}
	case entity.KindSnake:
		result, err := that.Snake.Move(payload.Direction)
		if err != nil {
			return ongoing, err
		}
		switch result {
		case snake.Won:
			return won, nil
		case snake.Lost:
			return lost, nil
		default:
			return ongoing, nil
		}
	default:
		return ongoing, fmt.Errorf("%w: %q", apperror.ErrUnknownKind, that.Kind)
	}
}

func (that Board) score() int {
	if that.Snake != nil {
		return that.Snake.Score
	}

	return 0
}

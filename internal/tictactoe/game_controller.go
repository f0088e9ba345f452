package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
)

const (
	MarkX     = "X"
	MarkO     = "O"
	EmptyCell = ""

	size = 3
)

type Result int

const (
	Ongoing Result = iota
	Won
	Draw
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// State is a 3x3 board stored row by row.
type State struct {
	Board  [size * size]string `json:"board"`
	Turn   string              `json:"turn"`
	Winner string              `json:"winner,omitempty"`
}

// View is a read-only copy of the board for display.
type View struct {
	Board  [size][size]string `json:"board"`
	Turn   string             `json:"turn,omitempty"`
	Winner string             `json:"winner,omitempty"`
}

func New() *State {
	return &State{Turn: MarkX}
}

// ValidateCell - checks that the coordinate is on the board.
func ValidateCell(row, col int) error {
	if row < 0 || row >= size || col < 0 || col >= size {
		return fmt.Errorf("%w: cell %d,%d is out of the board", apperror.ErrIllegalMove, row, col)
	}

	return nil
}

// MakeTurn - places mark at (row, col) and reports whether the game is over.
// The board is left untouched when an error is returned.
func (that *State) MakeTurn(mark string, row, col int) (Result, error) {
	if err := ValidateCell(row, col); err != nil {
		return Ongoing, err
	}

	if that.Turn != mark {
		return Ongoing, apperror.ErrNotYourTurn
	}

	idx := row*size + col
	if that.Board[idx] != EmptyCell {
		return Ongoing, fmt.Errorf("%w: cell %d,%d is already occupied", apperror.ErrIllegalMove, row, col)
	}

	that.Board[idx] = mark

	return that.updateGameStatus(mark), nil
}

// updateGameStatus - checks the game status after a move.
func (that *State) updateGameStatus(mark string) Result {
	winner, full := checkGameStatus(that.Board)

	switch {
	// a completed line wins even on the last free cell
	case winner != EmptyCell:
		that.Winner = winner
		that.Turn = ""
		return Won
	case full:
		that.Turn = ""
		return Draw
	default:
		that.Turn = toggleMark(mark)
		return Ongoing
	}
}

func (that *State) View() View {
	var view View
	for i, cell := range that.Board {
		view.Board[i/size][i%size] = cell
	}
	view.Turn = that.Turn
	view.Winner = that.Winner

	return view
}

func toggleMark(currentMark string) string {
	if currentMark == MarkX {
		return MarkO
	}
	return MarkX
}

func checkGameStatus(board [size * size]string) (string, bool) {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a, false
		}
	}

	for _, cell := range board {
		if cell == EmptyCell {
			return EmptyCell, false
		}
	}

	return EmptyCell, true
}

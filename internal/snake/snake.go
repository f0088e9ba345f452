package snake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
)

const (
	DefaultSize = 8
	minSize     = 4
	startLength = 3
)

var ErrInvalidGrid = errors.New("invalid grid size")

type Direction string

const (
	Up    Direction = "up"
	Right Direction = "right"
	Down  Direction = "down"
	Left  Direction = "left"
)

var opposite = map[Direction]Direction{
	Up:    Down,
	Right: Left,
	Down:  Up,
	Left:  Right,
}

// y grows downwards, so up is y-1.
var vectors = map[Direction]Point{
	Up:    {X: 0, Y: -1},
	Right: {X: 1, Y: 0},
	Down:  {X: 0, Y: 1},
	Left:  {X: -1, Y: 0},
}

type Result int

const (
	Ongoing Result = iota
	Won
	Lost
)

// Random - uniform choice over [0, n).
type Random interface {
	Intn(n int) int
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// State is the grid, the snake body (head first) and the food cell.
// A nil Food means the grid is full.
type State struct {
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Body    []Point   `json:"body"`
	Heading Direction `json:"heading"`
	Food    *Point    `json:"food,omitempty"`
	Score   int       `json:"score"`

	rnd Random
}

type View struct {
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Body    []Point   `json:"body"`
	Heading Direction `json:"heading"`
	Food    *Point    `json:"food,omitempty"`
	Score   int       `json:"score"`
	Length  int       `json:"length"`
}

// New - a snake of length 3 in the middle of the grid heading right, with food on a random free cell.
func New(width, height int, rnd Random) (*State, error) {
	if width < minSize || height < minSize {
		return nil, fmt.Errorf("%w: %dx%d, minimum is %dx%d", ErrInvalidGrid, width, height, minSize, minSize)
	}

	cx, cy := width/2, height/2
	state := &State{
		Width:   width,
		Height:  height,
		Heading: Right,
		rnd:     rnd,
	}
	for i := 0; i < startLength; i++ {
		state.Body = append(state.Body, Point{X: cx - i, Y: cy})
	}
	state.Food = state.spawnFood()

	return state, nil
}

// Restore - rebuilds a state from an explicit layout.
func Restore(width, height int, body []Point, heading Direction, food *Point, rnd Random) *State {
	return &State{
		Width:   width,
		Height:  height,
		Body:    append([]Point(nil), body...),
		Heading: heading,
		Food:    food,
		rnd:     rnd,
	}
}

// ParseDirection - normalizes a requested heading.
func ParseDirection(raw string) (Direction, error) {
	dir := Direction(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := vectors[dir]; !ok {
		return "", fmt.Errorf("%w: unknown direction %q", apperror.ErrIllegalMove, raw)
	}

	return dir, nil
}

// Move - advances the snake one cell. Reversing is treated as going straight.
// On Lost the state is left as it was before the move.
func (that *State) Move(raw string) (Result, error) {
	dir, err := ParseDirection(raw)
	if err != nil {
		return Ongoing, err
	}

	if dir == opposite[that.Heading] {
		dir = that.Heading
	}

	head := that.Body[0]
	vec := vectors[dir]
	next := Point{X: head.X + vec.X, Y: head.Y + vec.Y}

	if !that.inside(next) || that.hitsBody(next) {
		return Lost, nil
	}

	that.Heading = dir
	that.Body = append([]Point{next}, that.Body...)

	if that.Food != nil && next == *that.Food {
		that.Score++
		that.Food = that.spawnFood()
		if that.Food == nil {
			return Won, nil
		}

		return Ongoing, nil
	}

	that.Body = that.Body[:len(that.Body)-1]

	return Ongoing, nil
}

func (that *State) View() View {
	view := View{
		Width:   that.Width,
		Height:  that.Height,
		Body:    append([]Point(nil), that.Body...),
		Heading: that.Heading,
		Score:   that.Score,
		Length:  len(that.Body),
	}
	if that.Food != nil {
		food := *that.Food
		view.Food = &food
	}

	return view
}

func (that *State) inside(p Point) bool {
	return p.X >= 0 && p.X < that.Width && p.Y >= 0 && p.Y < that.Height
}

// hitsBody - the tail is skipped because it moves away on this step.
func (that *State) hitsBody(p Point) bool {
	for _, cell := range that.Body[:len(that.Body)-1] {
		if cell == p {
			return true
		}
	}

	return false
}

func (that *State) spawnFood() *Point {
	occupied := make(map[Point]bool, len(that.Body))
	for _, cell := range that.Body {
		occupied[cell] = true
	}

	free := make([]Point, 0, max(0, that.Width*that.Height-len(that.Body)))
	for x := 0; x < that.Width; x++ {
		for y := 0; y < that.Height; y++ {
			p := Point{X: x, Y: y}
			if !occupied[p] {
				free = append(free, p)
			}
		}
	}

	if len(free) == 0 {
		return nil
	}

	food := free[that.rnd.Intn(len(free))]

	return &food
}

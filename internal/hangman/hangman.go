package hangman

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
)

const MaxMistakes = 6

var ErrInvalidWord = errors.New("invalid target word")

type Result int

const (
	Ongoing Result = iota
	Won
	Lost
)

// State holds one word-guessing game. Word and letters are stored uppercase.
type State struct {
	Word     string        `json:"word"`
	Guessed  map[rune]bool `json:"guessed"`
	Wrong    []rune        `json:"wrong"`
	Mistakes int           `json:"mistakes"`
}

type View struct {
	Masked      string   `json:"masked"`
	Guessed     []string `json:"guessed"`
	Wrong       []string `json:"wrong"`
	Mistakes    int      `json:"mistakes"`
	MaxMistakes int      `json:"max_mistakes"`
	Word        string   `json:"word,omitempty"`
}

func New(word string) *State {
	return &State{
		Word:    strings.ToUpper(strings.TrimSpace(word)),
		Guessed: make(map[rune]bool),
	}
}

// ValidateWord - a target word needs at least one letter and only letters or spaces.
func ValidateWord(word string) error {
	letters := 0
	for _, ch := range word {
		switch {
		case unicode.IsLetter(ch):
			letters++
		case ch == ' ':
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidWord, word, ch)
		}
	}

	if letters == 0 {
		return fmt.Errorf("%w: %q has no letters", ErrInvalidWord, word)
	}

	return nil
}

// ParseLetter - normalizes a guess to one uppercase letter.
func ParseLetter(raw string) (rune, error) {
	raw = strings.TrimSpace(raw)
	if utf8.RuneCountInString(raw) != 1 {
		return 0, fmt.Errorf("%w: %q is not a single letter", apperror.ErrIllegalMove, raw)
	}

	letter, _ := utf8.DecodeRuneInString(raw)
	if !unicode.IsLetter(letter) {
		return 0, fmt.Errorf("%w: %q is not a letter", apperror.ErrIllegalMove, raw)
	}

	return unicode.ToUpper(letter), nil
}

// Guess - applies a letter. Repeating a letter is rejected and changes nothing.
func (that *State) Guess(raw string) (Result, error) {
	letter, err := ParseLetter(raw)
	if err != nil {
		return Ongoing, err
	}

	if that.Guessed[letter] {
		return Ongoing, fmt.Errorf("%w: letter %c was already guessed", apperror.ErrIllegalMove, letter)
	}

	that.Guessed[letter] = true
	if !strings.ContainsRune(that.Word, letter) {
		that.Mistakes++
		that.Wrong = append(that.Wrong, letter)
	}

	switch {
	case that.IsSolved():
		return Won, nil
	case that.Mistakes >= MaxMistakes:
		return Lost, nil
	default:
		return Ongoing, nil
	}
}

// IsSolved - every non-space character of the word has been guessed.
func (that *State) IsSolved() bool {
	for _, ch := range that.Word {
		if ch != ' ' && !that.Guessed[ch] {
			return false
		}
	}

	return true
}

// Masked - the word with unknown letters replaced by underscores.
func (that *State) Masked() string {
	parts := make([]string, 0, len(that.Word))
	for _, ch := range that.Word {
		switch {
		case ch == ' ':
			parts = append(parts, " ")
		case that.Guessed[ch]:
			parts = append(parts, string(ch))
		default:
			parts = append(parts, "_")
		}
	}

	return strings.Join(parts, " ")
}

// View - snapshot for display; the word is only revealed when reveal is set.
func (that *State) View(reveal bool) View {
	guessed := make([]string, 0, len(that.Guessed))
	for letter := range that.Guessed {
		guessed = append(guessed, string(letter))
	}
	sort.Strings(guessed)

	wrong := make([]string, 0, len(that.Wrong))
	for _, letter := range that.Wrong {
		wrong = append(wrong, string(letter))
	}

	view := View{
		Masked:      that.Masked(),
		Guessed:     guessed,
		Wrong:       wrong,
		Mistakes:    that.Mistakes,
		MaxMistakes: MaxMistakes,
	}
	if reveal {
		view.Word = that.Word
	}

	return view
}

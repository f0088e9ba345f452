package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/minigames-backend/internal/apperror"
)

func TestParseKind(t *testing.T) {
	t.Run("Known kinds ignore case and spaces", func(t *testing.T) {
		kind, err := ParseKind(" Snake ")

		require.NoError(t, err)
		assert.Equal(t, KindSnake, kind)
		assert.Equal(t, 1, kind.Seats())
		assert.False(t, kind.IsMultiplayer())
	})

	t.Run("Tic-tac-toe needs two seats", func(t *testing.T) {
		kind, err := ParseKind("tictactoe")

		require.NoError(t, err)
		assert.Equal(t, 2, kind.Seats())
		assert.True(t, kind.IsMultiplayer())
	})

	t.Run("Unknown kind", func(t *testing.T) {
		_, err := ParseKind("chess")

		require.ErrorIs(t, err, apperror.ErrUnknownKind)
	})
}

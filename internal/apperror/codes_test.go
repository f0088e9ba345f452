package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"wrapped sentinel", fmt.Errorf("%w: cell 0,0 occupied", ErrIllegalMove), "illegal_move"},
		{"self join wins over invalid participants", fmt.Errorf("%w: %w", ErrInvalidParticipants, ErrSelfJoin), "self_join"},
		{"reward failure", fmt.Errorf("%w: %w", ErrRewardDelivery, errors.New("ledger down")), "reward_delivery"},
		{"unknown error", errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

package apperror

import "errors"

var codes = []struct {
	err  error
	code string
}{
	{ErrRewardDelivery, "reward_delivery"},
	{ErrDuplicateSession, "duplicate_session"},
	{ErrNotFound, "not_found"},
	{ErrSelfJoin, "self_join"},
	{ErrSessionFull, "session_full"},
	{ErrInvalidSession, "invalid_session"},
	{ErrNotAParticipant, "not_a_participant"},
	{ErrNotYourTurn, "not_your_turn"},
	{ErrIllegalMove, "illegal_move"},
	{ErrSessionBusy, "session_busy"},
	{ErrUnknownKind, "unknown_kind"},
	{ErrInvalidParticipants, "invalid_participants"},
	{ErrInvalidOptions, "invalid_options"},
}

// Code - stable machine-readable name of the first sentinel err wraps, "internal" otherwise.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return "internal"
}

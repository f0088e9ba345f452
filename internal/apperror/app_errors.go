package apperror

import "errors"

var (
	ErrDuplicateSession = errors.New("session already exists")
	ErrNotFound         = errors.New("session not found")
	ErrInvalidSession   = errors.New("session is not active")
	ErrNotAParticipant  = errors.New("you are not a participant of this session")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrIllegalMove      = errors.New("illegal move")
	ErrSessionBusy      = errors.New("session is processing another move")

	ErrSessionFull         = errors.New("session has no free slot")
	ErrSelfJoin            = errors.New("you can't play against yourself")
	ErrUnknownKind         = errors.New("unknown game kind")
	ErrInvalidParticipants = errors.New("invalid participants")
	ErrInvalidOptions      = errors.New("invalid game options")
	ErrRewardDelivery      = errors.New("reward delivery failed")
)

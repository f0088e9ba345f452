package entity

import "time"

type OutcomeKind string

const (
	OutcomeWin       OutcomeKind = "win"
	OutcomeLoss      OutcomeKind = "loss"
	OutcomeDraw      OutcomeKind = "draw"
	OutcomeTimeout   OutcomeKind = "timeout"
	OutcomeAbandoned OutcomeKind = "abandoned"
)

// Outcome is the final result of a session. It is produced once, at the finished transition.
type Outcome struct {
	SessionKey   string      `json:"session_key"`
	Game         Kind        `json:"game"`
	Result       OutcomeKind `json:"result"`
	Participant  string      `json:"participant,omitempty"`
	Participants []string    `json:"participants"`
	Score        int         `json:"score,omitempty"`
	FinishedAt   time.Time   `json:"finished_at"`

	Rewards []RewardInstruction `json:"rewards,omitempty"`
}

// IsForced - the session ended without a terminal move.
func (that *Outcome) IsForced() bool {
	return that.Result == OutcomeTimeout || that.Result == OutcomeAbandoned
}

type RewardInstruction struct {
	Participant string `json:"participant"`
	Amount      int64  `json:"amount"`
}

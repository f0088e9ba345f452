package reward

import (
	"github.com/rocketscienceinc/minigames-backend/internal/entity"
)

// Policy is the prize table of one game kind.
type Policy struct {
	WinPrize  int64
	DrawPrize int64
	LossPrize int64
	// PointMultiplier pays score x multiplier on top of the prize for a win or a loss.
	PointMultiplier int64
}

// Table holds a policy per game kind. Kinds without an entry pay nothing.
type Table map[entity.Kind]Policy

// Instructions - translates an outcome into reward instructions. Zero amounts are dropped,
// so a timeout or an abandoned session yields none.
func Instructions(outcome entity.Outcome, policy Policy) []entity.RewardInstruction {
	points := int64(outcome.Score) * policy.PointMultiplier

	var rewards []entity.RewardInstruction
	add := func(participant string, amount int64) {
		if participant == "" || amount == 0 {
			return
		}
		rewards = append(rewards, entity.RewardInstruction{Participant: participant, Amount: amount})
	}

	switch outcome.Result {
	case entity.OutcomeWin:
		add(outcome.Participant, policy.WinPrize+points)
		for _, id := range outcome.Participants {
			if id != outcome.Participant {
				add(id, policy.LossPrize)
			}
		}
	case entity.OutcomeLoss:
		add(outcome.Participant, policy.LossPrize+points)
	case entity.OutcomeDraw:
		for _, id := range outcome.Participants {
			add(id, policy.DrawPrize)
		}
	case entity.OutcomeTimeout, entity.OutcomeAbandoned:
	}

	return rewards
}

func (that Table) Instructions(outcome entity.Outcome) []entity.RewardInstruction {
	return Instructions(outcome, that[outcome.Game])
}

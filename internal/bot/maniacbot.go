package bot

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemtable/internal/game"
)

// ManiacBot bets and raises far more often than it should
type ManiacBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewManiacBot creates a new ManiacBot instance
func NewManiacBot(rng *rand.Rand, logger *log.Logger) *ManiacBot {
	return &ManiacBot{rng: rng, logger: logger}
}

func (m *ManiacBot) Decide(state game.State, self game.PlayerState, options []game.ActionOption) Decision {
	agg, canRaise := aggression(options)
	_, facingBet := find(options, game.Call)

	if !facingBet {
		if canRaise && m.rng.Float64() < 0.85 {
			if self.Chips <= 20*state.BigBlind || m.rng.Float64() < 0.3 {
				return Decision{Action: agg.Action, Amount: agg.Max, Reasoning: "maniac shove"}
			}
			size := agg.Min + (agg.Max-agg.Min)/4
			return Decision{Action: agg.Action, Amount: size, Reasoning: "maniac big bet"}
		}
		return first(options, "maniac checking", game.Check)
	}

	roll := m.rng.Float64()
	if roll < 0.4 && canRaise {
		return Decision{Action: agg.Action, Amount: agg.Max, Reasoning: "maniac shove over bet"}
	}
	if roll < 0.8 {
		return first(options, "maniac call", game.Call)
	}
	return Decision{Action: game.Fold, Reasoning: "maniac fold"}
}

package bot

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemtable/internal/game"
)

// RandBot picks a uniformly random legal action and amount
type RandBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: logger}
}

func (r *RandBot) Decide(state game.State, self game.PlayerState, options []game.ActionOption) Decision {
	if len(options) == 0 {
		return Decision{Action: game.Fold, Reasoning: "rand-bot no valid actions"}
	}
	opt := options[r.rng.IntN(len(options))]
	amount := opt.Min
	if opt.Max > opt.Min {
		amount += r.rng.IntN(opt.Max - opt.Min + 1)
	}
	return Decision{Action: opt.Action, Amount: amount, Reasoning: "rand-bot random action"}
}

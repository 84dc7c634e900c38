package bot

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/poker"
)

// TAGBot plays few hands and plays them hard
type TAGBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewTAGBot creates a new TAGBot instance
func NewTAGBot(rng *rand.Rand, logger *log.Logger) *TAGBot {
	return &TAGBot{rng: rng, logger: logger}
}

func (t *TAGBot) Decide(state game.State, self game.PlayerState, options []game.ActionOption) Decision {
	tier := poker.TierTrash
	if len(self.Hand) == 2 {
		tier = poker.ClassifyStartingHand(self.Hand[0], self.Hand[1])
	}

	if agg, ok := aggression(options); ok {
		switch tier {
		case poker.TierPremium:
			return Decision{Action: agg.Action, Amount: agg.Min + (agg.Max-agg.Min)/4, Reasoning: "TAG raise premium"}
		case poker.TierStrong:
			if state.Stage == game.StagePreFlop {
				return Decision{Action: agg.Action, Amount: agg.Min, Reasoning: "TAG open strong"}
			}
		}
	}

	if _, ok := find(options, game.Check); ok {
		return Decision{Action: game.Check, Reasoning: "TAG check"}
	}
	if tier >= poker.TierMedium || t.rng.Float64() < 0.1 {
		return first(options, "TAG call", game.Call)
	}

	t.logger.Debug("Folding", "player", self.ID, "tier", tier)
	return Decision{Action: game.Fold, Reasoning: "TAG fold"}
}

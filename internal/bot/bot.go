// Package bot provides scripted players for simulations and tests.
package bot

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/thoas/go-funk"

	"github.com/lox/holdemtable/internal/game"
)

// Decision is what a bot wants to do on its turn
type Decision struct {
	Action    game.Action
	Amount    int
	Reasoning string
}

// Bot picks an action from the legal options for the seat at turn
type Bot interface {
	Decide(state game.State, self game.PlayerState, options []game.ActionOption) Decision
}

// New builds a bot for one of the configured strategy names
func New(strategy string, rng *rand.Rand, logger *log.Logger) (Bot, error) {
	logger = logger.WithPrefix("bot").With("strategy", strategy)
	switch strategy {
	case "call":
		return NewCallBot(logger), nil
	case "fold":
		return NewFoldBot(logger), nil
	case "random":
		return NewRandBot(rng, logger), nil
	case "aggressive":
		return NewManiacBot(rng, logger), nil
	case "tight":
		return NewTAGBot(rng, logger), nil
	}
	return nil, fmt.Errorf("unknown bot strategy %q", strategy)
}

func find(options []game.ActionOption, action game.Action) (game.ActionOption, bool) {
	found := funk.Find(options, func(o game.ActionOption) bool { return o.Action == action })
	if found == nil {
		return game.ActionOption{}, false
	}
	return found.(game.ActionOption), true
}

// first returns the first of the preferred actions that is legal. Fold is
// always legal for the seat at turn, so it is the final fallback.
func first(options []game.ActionOption, reasoning string, preferred ...game.Action) Decision {
	for _, action := range preferred {
		if opt, ok := find(options, action); ok {
			return Decision{Action: action, Amount: opt.Min, Reasoning: reasoning}
		}
	}
	return Decision{Action: game.Fold, Reasoning: "fallback: " + reasoning}
}

// aggression returns the bet or raise option, whichever is open
func aggression(options []game.ActionOption) (game.ActionOption, bool) {
	if opt, ok := find(options, game.Bet); ok {
		return opt, true
	}
	return find(options, game.Raise)
}

package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/holdemtable/internal/game"
)

// FoldBot checks when it can and folds to any bet
type FoldBot struct {
	logger *log.Logger
}

// NewFoldBot creates a new FoldBot instance
func NewFoldBot(logger *log.Logger) *FoldBot {
	return &FoldBot{logger: logger}
}

func (f *FoldBot) Decide(state game.State, self game.PlayerState, options []game.ActionOption) Decision {
	return first(options, "fold-bot", game.Check, game.Fold)
}

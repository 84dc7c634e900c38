package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/holdemtable/internal/game"
)

// CallBot checks or calls every street and never raises
type CallBot struct {
	logger *log.Logger
}

// NewCallBot creates a new CallBot instance
func NewCallBot(logger *log.Logger) *CallBot {
	return &CallBot{logger: logger}
}

func (c *CallBot) Decide(state game.State, self game.PlayerState, options []game.ActionOption) Decision {
	d := first(options, "call-bot", game.Check, game.Call)
	c.logger.Debug("Decision", "player", self.ID, "stage", state.Stage, "action", d.Action)
	return d
}

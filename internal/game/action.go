package game

import (
	"fmt"
	"strings"
)

// Stage is the phase of the current hand
type Stage string

const (
	StageWaiting  Stage = "waiting_for_players"
	StagePreFlop  Stage = "pre-flop"
	StageFlop     Stage = "flop"
	StageTurn     Stage = "turn"
	StageRiver    Stage = "river"
	StageShowdown Stage = "showdown"
	StageHandOver Stage = "hand_over" // everyone but one player folded
	StageAborted  Stage = "aborted"
)

// Live reports whether betting can take place in this stage
func (s Stage) Live() bool {
	switch s {
	case StagePreFlop, StageFlop, StageTurn, StageRiver:
		return true
	}
	return false
}

func (s Stage) valid() bool {
	switch s {
	case StageWaiting, StagePreFlop, StageFlop, StageTurn, StageRiver,
		StageShowdown, StageHandOver, StageAborted:
		return true
	}
	return false
}

// Action represents a player decision
type Action int

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
)

var actionNames = [...]string{"fold", "check", "call", "bet", "raise"}

func (a Action) String() string {
	if a < Fold || a > Raise {
		return "unknown"
	}
	return actionNames[a]
}

// ParseAction converts a client action name into an Action
func ParseAction(s string) (Action, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// MarshalText encodes the action by name
func (a Action) MarshalText() ([]byte, error) {
	if a < Fold || a > Raise {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes an action name
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ActionOption describes one legal choice for the player at turn. For bets
// the amount is the chips put in; for raises it is the new total to match.
type ActionOption struct {
	Action Action `json:"action"`
	Min    int    `json:"min"`
	Max    int    `json:"max"`
}

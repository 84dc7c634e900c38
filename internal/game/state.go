package game

import (
	"slices"

	"github.com/lox/holdemtable/poker"
)

// State is the public view of a table. Hole cards are hidden except for
// players still in the hand once it reaches showdown.
type State struct {
	Pots           []Pot         `json:"pots"`
	CommunityCards []poker.Card  `json:"communityCards"`
	Stage          Stage         `json:"state"`
	HandNumber     int           `json:"handNumber"`
	CurrentBet     int           `json:"currentBet"`
	TurnPlayerID   string        `json:"turnUserId"`
	DealerID       string        `json:"dealerUserId"`
	SmallBlind     int           `json:"smallBlind"`
	BigBlind       int           `json:"bigBlind"`
	Players        []PlayerState `json:"players"`
}

// State returns the public view of the table
func (t *Table) State() State {
	return t.view("")
}

// StateFor returns the view for one seat: the public state plus that
// player's own hole cards.
func (t *Table) StateFor(viewerID string) State {
	return t.view(viewerID)
}

func (t *Table) view(viewerID string) State {
	s := State{
		Pots:           make([]Pot, 0, len(t.pots)),
		CommunityCards: append([]poker.Card{}, t.communityCards...),
		Stage:          t.stage,
		HandNumber:     t.handNumber,
		CurrentBet:     t.currentBet,
		TurnPlayerID:   t.TurnPlayerID(),
		DealerID:       t.DealerID(),
		SmallBlind:     t.cfg.SmallBlind,
		BigBlind:       t.cfg.BigBlind,
		Players:        make([]PlayerState, len(t.players)),
	}
	for _, pot := range t.pots {
		s.Pots = append(s.Pots, pot.clone())
	}
	for i, p := range t.players {
		reveal := p.id == viewerID || (t.stage == StageShowdown && p.inHand())
		s.Players[i] = p.state(reveal)
	}
	return s
}

// Player looks up a seat in the view
func (s State) Player(id string) (PlayerState, bool) {
	i := slices.IndexFunc(s.Players, func(p PlayerState) bool { return p.ID == id })
	if i < 0 {
		return PlayerState{}, false
	}
	return s.Players[i], true
}

// LegalActions lists what the player at turn may do. It is empty when no
// turn is active.
func (t *Table) LegalActions() []ActionOption {
	if !t.stage.Live() || t.turnIndex < 0 || t.turnIndex >= len(t.players) {
		return nil
	}
	p := t.players[t.turnIndex]
	opts := []ActionOption{{Action: Fold}}

	owed := t.currentBet - p.currentBet
	if owed <= 0 {
		opts = append(opts, ActionOption{Action: Check})
	} else {
		call := min(owed, p.chips)
		opts = append(opts, ActionOption{Action: Call, Min: call, Max: call})
	}

	stack := p.currentBet + p.chips
	switch {
	case t.currentBet == 0 && p.chips > 0:
		opts = append(opts, ActionOption{Action: Bet, Min: min(t.cfg.BigBlind, p.chips), Max: p.chips})
	case t.currentBet > 0 && stack > t.currentBet:
		opts = append(opts, ActionOption{Action: Raise, Min: min(t.currentBet+t.cfg.BigBlind, stack), Max: stack})
	}
	return opts
}

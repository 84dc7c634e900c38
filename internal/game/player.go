package game

import (
	"fmt"

	"github.com/lox/holdemtable/poker"
)

// Status is a seat's relationship to the current hand
type Status string

const (
	StatusWaiting  Status = "waiting"  // seated mid-hand, joins at the next deal
	StatusActive   Status = "active"   // in the hand and able to act
	StatusFolded   Status = "folded"   // gave up this hand
	StatusAllIn    Status = "all-in"   // in the hand with no chips behind
	StatusInactive Status = "inactive" // no chips, sits out
)

func (s Status) valid() bool {
	switch s {
	case StatusWaiting, StatusActive, StatusFolded, StatusAllIn, StatusInactive:
		return true
	}
	return false
}

// player is a seat at the table. Only the Table mutates it; callers see
// PlayerState copies.
type player struct {
	id         string
	chips      int
	currentBet int
	hand       []poker.Card
	status     Status
	isDealer   bool
	hasActed   bool
}

func newPlayer(id string, chips int) *player {
	p := &player{id: id, chips: chips, status: StatusWaiting}
	if chips == 0 {
		p.status = StatusInactive
	}
	return p
}

// inHand reports whether the player is still contesting the pot
func (p *player) inHand() bool {
	return p.status == StatusActive || p.status == StatusAllIn
}

// commitChips moves chips from the stack into the current round bet. It never
// commits more than the stack and returns what was actually committed.
func (p *player) commitChips(amount int) int {
	if amount > p.chips {
		amount = p.chips
	}
	if amount < 0 {
		amount = 0
	}
	p.chips -= amount
	p.currentBet += amount
	if p.chips == 0 && p.status == StatusActive {
		p.status = StatusAllIn
	}
	return amount
}

// fold gives up the hand and returns the round bet, which stays in the pot
func (p *player) fold() int {
	forfeited := p.currentBet
	p.currentBet = 0
	p.hand = nil
	p.status = StatusFolded
	p.hasActed = true
	return forfeited
}

// clearHand prepares the seat for a new deal
func (p *player) clearHand() {
	p.hand = nil
	p.currentBet = 0
	p.hasActed = false
	p.isDealer = false
	if p.chips > 0 {
		p.status = StatusActive
	} else {
		p.status = StatusInactive
	}
}

func (p *player) state(reveal bool) PlayerState {
	s := PlayerState{
		ID:         p.id,
		Chips:      p.chips,
		CurrentBet: p.currentBet,
		Hand:       []poker.Card{},
		Status:     p.status,
		IsDealer:   p.isDealer,
		HasActed:   p.hasActed,
	}
	if reveal && len(p.hand) > 0 {
		s.Hand = append(s.Hand, p.hand...)
	}
	return s
}

func (p *player) String() string {
	return fmt.Sprintf("%s(%d chips, bet %d, %s)", p.id, p.chips, p.currentBet, p.status)
}

// PlayerState is a read-only view of a seat
type PlayerState struct {
	ID         string       `json:"userId"`
	Chips      int          `json:"chips"`
	CurrentBet int          `json:"currentBet"`
	Hand       []poker.Card `json:"hand"`
	Status     Status       `json:"status"`
	IsDealer   bool         `json:"isDealer"`
	HasActed   bool         `json:"hasActed"`
}

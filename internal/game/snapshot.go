package game

import (
	"fmt"
	"maps"
	"slices"

	"github.com/lox/holdemtable/poker"
)

// SnapshotVersion is bumped whenever the snapshot layout changes
const SnapshotVersion = 1

// SeatSnapshot is the full record of one seat, hole cards included
type SeatSnapshot struct {
	ID         string       `json:"id"`
	Chips      int          `json:"chips"`
	CurrentBet int          `json:"currentBet"`
	Hand       []poker.Card `json:"hand,omitempty"`
	Status     Status       `json:"status"`
	IsDealer   bool         `json:"isDealer,omitempty"`
	HasActed   bool         `json:"hasActed,omitempty"`
}

// Snapshot is everything needed to rebuild a table exactly, including the
// undealt deck. It is private to the operator and must never be sent to
// players.
type Snapshot struct {
	Version        int            `json:"version"`
	Config         Config         `json:"config"`
	Stage          Stage          `json:"stage"`
	HandNumber     int            `json:"handNumber"`
	CurrentBet     int            `json:"currentBet"`
	DealerIndex    int            `json:"dealerIndex"`
	TurnIndex      int            `json:"turnIndex"`
	HeadsUp        bool           `json:"headsUp,omitempty"`
	Seats          []SeatSnapshot `json:"seats"`
	Deck           []poker.Card   `json:"deck,omitempty"`
	CommunityCards []poker.Card   `json:"communityCards,omitempty"`
	Pots           []Pot          `json:"pots,omitempty"`
	DeadChips      []int          `json:"deadChips,omitempty"`
	ChipTotal      int            `json:"chipTotal"`
	StartingStacks map[string]int `json:"startingStacks,omitempty"`
}

// Snapshot captures the complete table state
func (t *Table) Snapshot() Snapshot {
	s := Snapshot{
		Version:        SnapshotVersion,
		Config:         t.cfg,
		Stage:          t.stage,
		HandNumber:     t.handNumber,
		CurrentBet:     t.currentBet,
		DealerIndex:    t.dealerIndex,
		TurnIndex:      t.turnIndex,
		HeadsUp:        t.headsUp,
		Seats:          make([]SeatSnapshot, len(t.players)),
		CommunityCards: slices.Clone(t.communityCards),
		DeadChips:      slices.Clone(t.deadChips),
		ChipTotal:      t.chipTotal,
		StartingStacks: maps.Clone(t.startingStacks),
	}
	if t.deck != nil {
		s.Deck = t.deck.Cards()
	}
	for _, pot := range t.pots {
		s.Pots = append(s.Pots, pot.clone())
	}
	for i, p := range t.players {
		s.Seats[i] = SeatSnapshot{
			ID:         p.id,
			Chips:      p.chips,
			CurrentBet: p.currentBet,
			Hand:       slices.Clone(p.hand),
			Status:     p.status,
			IsDealer:   p.isDealer,
			HasActed:   p.hasActed,
		}
	}
	return s
}

// Restore rebuilds a table from a snapshot. The snapshot is checked for
// consistency, including chip conservation, before it is accepted.
func Restore(s Snapshot, opts ...Option) (*Table, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	t, err := NewTable(s.Config, opts...)
	if err != nil {
		return nil, err
	}
	if !s.Stage.valid() {
		return nil, fmt.Errorf("invalid stage %q", s.Stage)
	}
	if len(s.Seats) > t.cfg.MaxSeats {
		return nil, fmt.Errorf("%w: %d seats in snapshot", ErrTableFull, len(s.Seats))
	}
	if s.DealerIndex < -1 || s.DealerIndex >= len(s.Seats) {
		return nil, fmt.Errorf("dealer index %d out of range", s.DealerIndex)
	}
	if s.TurnIndex < -1 || s.TurnIndex >= len(s.Seats) {
		return nil, fmt.Errorf("turn index %d out of range", s.TurnIndex)
	}

	seen := make(map[poker.Card]bool)
	track := func(cards []poker.Card) error {
		for _, c := range cards {
			if !c.Valid() {
				return fmt.Errorf("invalid card %v", c)
			}
			if seen[c] {
				return fmt.Errorf("card %s appears twice", c)
			}
			seen[c] = true
		}
		return nil
	}
	if err := track(s.CommunityCards); err != nil {
		return nil, err
	}

	for _, seat := range s.Seats {
		if t.seatOf(seat.ID) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSeat, seat.ID)
		}
		if !seat.Status.valid() {
			return nil, fmt.Errorf("seat %s: invalid status %q", seat.ID, seat.Status)
		}
		if seat.Chips < 0 || seat.CurrentBet < 0 {
			return nil, fmt.Errorf("%w: seat %s", ErrInvalidAmount, seat.ID)
		}
		if err := track(seat.Hand); err != nil {
			return nil, fmt.Errorf("seat %s: %w", seat.ID, err)
		}
		t.players = append(t.players, &player{
			id:         seat.ID,
			chips:      seat.Chips,
			currentBet: seat.CurrentBet,
			hand:       slices.Clone(seat.Hand),
			status:     seat.Status,
			isDealer:   seat.IsDealer,
			hasActed:   seat.HasActed,
		})
	}

	if len(s.Deck) > 0 {
		if err := track(s.Deck); err != nil {
			return nil, fmt.Errorf("deck: %w", err)
		}
		t.deck, err = poker.NewDeckFromCards(t.rng, s.Deck)
		if err != nil {
			return nil, err
		}
	} else if s.Stage.Live() {
		t.deck, _ = poker.NewDeckFromCards(t.rng, nil)
	}

	t.stage = s.Stage
	t.handNumber = s.HandNumber
	t.currentBet = s.CurrentBet
	t.dealerIndex = s.DealerIndex
	t.turnIndex = s.TurnIndex
	t.headsUp = s.HeadsUp
	t.communityCards = slices.Clone(s.CommunityCards)
	t.deadChips = slices.Clone(s.DeadChips)
	t.chipTotal = s.ChipTotal
	t.startingStacks = maps.Clone(s.StartingStacks)
	for _, pot := range s.Pots {
		t.pots = append(t.pots, pot.clone())
	}

	if t.stage.Live() && t.turnIndex >= 0 && t.players[t.turnIndex].status != StatusActive {
		return nil, fmt.Errorf("turn index %d points at a %s seat", t.turnIndex, t.players[t.turnIndex].status)
	}
	if err := t.checkConservation(); err != nil {
		return nil, err
	}
	return t, nil
}

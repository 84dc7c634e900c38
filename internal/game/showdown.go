package game

import (
	"fmt"
	"slices"
	"sort"

	"github.com/lox/holdemtable/poker"
)

// RankedHand is a player's best hand at showdown
type RankedHand struct {
	PlayerID string       `json:"playerId"`
	Cards    []poker.Card `json:"cards"`
	Value    int          `json:"value"`
	HandName string       `json:"handName"`
}

// Payout is what one winner took from a pot
type Payout struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

// PotResult describes how a single pot was awarded
type PotResult struct {
	Name              string   `json:"name"`
	Amount            int      `json:"amount"`
	EligiblePlayerIDs []string `json:"eligiblePlayerIds"`
	Winners           []Payout `json:"winners"`
	HandName          string   `json:"handName"`
}

// Showdown is the result of a finished hand
type Showdown struct {
	HandNumber     int            `json:"handNumber"`
	CommunityCards []poker.Card   `json:"communityCards"`
	RankedHands    []RankedHand   `json:"rankedHands,omitempty"`
	Pots           []PotResult    `json:"pots"`
	Deltas         map[string]int `json:"deltas"`
}

func potName(i int) string {
	if i == 0 {
		return "Main Pot"
	}
	return fmt.Sprintf("Side Pot %d", i)
}

// finishByFold awards every chip to the last player standing without
// evaluating any hands
func (t *Table) finishByFold() (*Showdown, error) {
	t.settlePot()
	winner := -1
	for i, p := range t.players {
		if p.inHand() {
			winner = i
			break
		}
	}
	if winner < 0 {
		return nil, fmt.Errorf("%w: no player left to award the pot to", ErrHandAborted)
	}

	w := t.players[winner]
	var eligible []string
	for _, pot := range t.pots {
		for _, id := range pot.EligiblePlayerIDs {
			if !slices.Contains(eligible, id) {
				eligible = append(eligible, id)
			}
		}
	}
	total := Total(t.pots)
	w.chips += total
	t.pots = nil
	t.stage = StageHandOver
	t.turnIndex = -1

	sd := &Showdown{
		HandNumber:     t.handNumber,
		CommunityCards: slices.Clone(t.communityCards),
		Pots: []PotResult{{
			Name:              potName(0),
			Amount:            total,
			EligiblePlayerIDs: eligible,
			Winners:           []Payout{{PlayerID: w.id, Amount: total}},
			HandName:          FoldWinHandName,
		}},
		Deltas: t.deltas(),
	}
	t.lastShowdown = sd
	return sd, nil
}

// showdown evaluates every remaining hand and awards each pot to the best
// hand among its eligible players. Split pots share evenly; odd chips go one
// at a time to winners in seat order starting left of the button.
func (t *Table) showdown() (*Showdown, error) {
	var ranked []RankedHand
	for _, p := range t.players {
		if !p.inHand() {
			continue
		}
		cards := make([]poker.Card, 0, 7)
		cards = append(cards, p.hand...)
		cards = append(cards, t.communityCards...)
		hv, err := t.evaluator.EvaluateBestHand(cards)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrEvaluation, p.id, err)
		}
		ranked = append(ranked, RankedHand{
			PlayerID: p.id,
			Cards:    slices.Clone(p.hand),
			Value:    hv.Value,
			HandName: hv.Name,
		})
	}
	if len(ranked) == 0 {
		return nil, fmt.Errorf("%w: showdown with no hands", ErrHandAborted)
	}

	results := make([]PotResult, 0, len(t.pots))
	for i, pot := range t.pots {
		contenders := make([]RankedHand, 0, len(ranked))
		for _, h := range ranked {
			if slices.Contains(pot.EligiblePlayerIDs, h.PlayerID) {
				contenders = append(contenders, h)
			}
		}
		if len(contenders) == 0 {
			// Everyone who paid into this layer folded later; it goes to the
			// best hand still standing.
			contenders = ranked
		}

		best := contenders[0].Value
		for _, h := range contenders[1:] {
			best = max(best, h.Value)
		}
		var winners []int
		var handName string
		for _, h := range contenders {
			if h.Value == best {
				winners = append(winners, t.seatOf(h.PlayerID))
				handName = h.HandName
			}
		}
		t.orderFromButton(winners)

		share := pot.Amount / len(winners)
		remainder := pot.Amount % len(winners)
		payouts := make([]Payout, len(winners))
		for j, seat := range winners {
			amount := share
			if j < remainder {
				amount++
			}
			t.players[seat].chips += amount
			payouts[j] = Payout{PlayerID: t.players[seat].id, Amount: amount}
		}

		results = append(results, PotResult{
			Name:              potName(i),
			Amount:            pot.Amount,
			EligiblePlayerIDs: slices.Clone(pot.EligiblePlayerIDs),
			Winners:           payouts,
			HandName:          handName,
		})
	}

	t.pots = nil
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Value > ranked[j].Value })
	sd := &Showdown{
		HandNumber:     t.handNumber,
		CommunityCards: slices.Clone(t.communityCards),
		RankedHands:    ranked,
		Pots:           results,
		Deltas:         t.deltas(),
	}
	t.lastShowdown = sd
	return sd, nil
}

// orderFromButton sorts seats by distance clockwise from the button
func (t *Table) orderFromButton(seats []int) {
	n := len(t.players)
	dist := func(seat int) int {
		return (seat - t.dealerIndex - 1 + 2*n) % n
	}
	sort.Slice(seats, func(i, j int) bool { return dist(seats[i]) < dist(seats[j]) })
}

// deltas reports each dealt-in player's net chip change for the hand
func (t *Table) deltas() map[string]int {
	out := make(map[string]int, len(t.startingStacks))
	for id, start := range t.startingStacks {
		chips := 0
		if idx := t.seatOf(id); idx >= 0 {
			chips = t.players[idx].chips
		}
		out[id] = chips - start
	}
	return out
}

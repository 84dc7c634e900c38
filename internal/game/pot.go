package game

import (
	"slices"
	"sort"
)

// Pot is a share of the middle and the players who can win it
type Pot struct {
	Amount            int      `json:"amount"`
	EligiblePlayerIDs []string `json:"eligiblePlayerIds"`
}

func (p Pot) clone() Pot {
	p.EligiblePlayerIDs = slices.Clone(p.EligiblePlayerIDs)
	return p
}

// Total returns the chips in every pot
func Total(pots []Pot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}

// settlePot moves the round's bets into pots. Each distinct bet level among
// players still in the hand forms a layer that everyone who reached it is
// eligible for. Chips from players who folded this round are spread over the
// layers they reached; anything above the top layer joins it. A layer whose
// eligible set matches an existing pot is merged into that pot.
func (t *Table) settlePot() {
	var levels []int
	for _, p := range t.players {
		if p.inHand() && p.currentBet > 0 && !slices.Contains(levels, p.currentBet) {
			levels = append(levels, p.currentBet)
		}
	}
	sort.Ints(levels)

	prev := 0
	top := -1
	for _, level := range levels {
		var eligible []string
		for _, p := range t.players {
			if p.inHand() && p.currentBet >= level {
				eligible = append(eligible, p.id)
			}
		}
		amount := (level - prev) * len(eligible)
		for _, dead := range t.deadChips {
			amount += clamp(dead-prev, 0, level-prev)
		}
		top = t.addToPot(eligible, amount)
		prev = level
	}

	leftover := 0
	for _, dead := range t.deadChips {
		leftover += max(dead-prev, 0)
	}
	if leftover > 0 {
		if top >= 0 {
			t.pots[top].Amount += leftover
		} else {
			var eligible []string
			for _, p := range t.players {
				if p.inHand() {
					eligible = append(eligible, p.id)
				}
			}
			t.addToPot(eligible, leftover)
		}
	}

	for _, p := range t.players {
		p.currentBet = 0
	}
	t.deadChips = nil
	t.currentBet = 0
}

// addToPot merges chips into the pot with exactly these eligible players, or
// opens a new one. It returns the pot's index.
func (t *Table) addToPot(eligible []string, amount int) int {
	for i := range t.pots {
		if sameMembers(t.pots[i].EligiblePlayerIDs, eligible) {
			t.pots[i].Amount += amount
			return i
		}
	}
	t.pots = append(t.pots, Pot{Amount: amount, EligiblePlayerIDs: eligible})
	return len(t.pots) - 1
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, id := range b {
		if !slices.Contains(a, id) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/poker"
)

type seat struct {
	id    string
	chips int
}

// newTestTable seats players in order with blinds 1/2 and the button on
// seat 0 for the first hand
func newTestTable(t *testing.T, seats []seat, opts ...Option) *Table {
	t.Helper()
	opts = append([]Option{WithRand(randutil.New(42)), WithButton(0)}, opts...)
	tbl, err := NewTable(Config{SmallBlind: 1, BigBlind: 2}, opts...)
	require.NoError(t, err)
	for _, s := range seats {
		require.NoError(t, tbl.AddPlayer(s.id, s.chips))
	}
	return tbl
}

func stacked(t *testing.T, cards string) Option {
	t.Helper()
	order := poker.MustParseCards(cards)
	return WithDeck(func() *poker.Deck {
		d, err := poker.NewDeckFromCards(nil, order)
		require.NoError(t, err)
		return d
	})
}

// flatEvaluator scores every hand the same so every showdown is a tie
var flatEvaluator = poker.EvaluatorFunc(func(cards []poker.Card) (poker.HandValue, error) {
	return poker.HandValue{Value: 1, Name: "Anything"}, nil
})

func act(t *testing.T, tbl *Table, id string, action Action, amount int) ActionResult {
	t.Helper()
	res, err := tbl.HandleAction(id, action, amount)
	require.NoError(t, err, "%s %s %d", id, action, amount)
	return res
}

func chips(t *testing.T, tbl *Table, id string) int {
	t.Helper()
	p, ok := tbl.Player(id)
	require.True(t, ok, "player %s", id)
	return p.Chips
}

// tableChips counts every chip at the table
func tableChips(tbl *Table) int {
	total := Total(tbl.pots)
	for _, p := range tbl.players {
		total += p.chips + p.currentBet
	}
	for _, d := range tbl.deadChips {
		total += d
	}
	return total
}

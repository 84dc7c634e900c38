package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/internal/randutil"
)

func TestNewTableValidatesConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults to six seats", Config{SmallBlind: 1, BigBlind: 2}, true},
		{"heads-up table", Config{SmallBlind: 5, BigBlind: 10, MaxSeats: 2}, true},
		{"zero small blind", Config{SmallBlind: 0, BigBlind: 2}, false},
		{"big blind below small", Config{SmallBlind: 5, BigBlind: 2}, false},
		{"too many seats", Config{SmallBlind: 1, BigBlind: 2, MaxSeats: 9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewTable(tt.cfg)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidAmount)
			}
		})
	}
}

func TestAddPlayer(t *testing.T) {
	t.Parallel()

	tbl, err := NewTable(Config{SmallBlind: 1, BigBlind: 2, MaxSeats: 3})
	require.NoError(t, err)

	require.NoError(t, tbl.AddPlayer("alice", 100))
	require.NoError(t, tbl.AddPlayer("broke", 0))
	assert.ErrorIs(t, tbl.AddPlayer("alice", 50), ErrDuplicateSeat)
	assert.ErrorIs(t, tbl.AddPlayer("neg", -1), ErrInvalidAmount)
	assert.ErrorIs(t, tbl.AddPlayer("", 100), ErrInvalidPlayer)
	assert.NotErrorIs(t, tbl.AddPlayer("", 100), ErrInvalidAmount)
	require.NoError(t, tbl.AddPlayer("carol", 100))
	assert.ErrorIs(t, tbl.AddPlayer("dave", 100), ErrTableFull)

	alice, ok := tbl.Player("alice")
	require.True(t, ok)
	assert.Equal(t, StatusWaiting, alice.Status)
	broke, _ := tbl.Player("broke")
	assert.Equal(t, StatusInactive, broke.Status)

	_, ok = tbl.Player("nobody")
	assert.False(t, ok)
}

func TestInactivePlayersSitOut(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []seat{{"alice", 100}, {"broke", 0}, {"bob", 100}})
	res, err := tbl.StartNewHand()
	require.NoError(t, err)

	broke, _ := res.State.Player("broke")
	assert.Equal(t, StatusInactive, broke.Status)
	assert.Zero(t, broke.CurrentBet)
	b, _ := tbl.Player("broke")
	assert.Empty(t, b.Hand)

	require.NoError(t, tbl.AddChips("broke", 50))
	b, _ = tbl.Player("broke")
	assert.Equal(t, StatusWaiting, b.Status)
	assert.Equal(t, 50, b.Chips)
}

func TestJoinMidHandWaits(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []seat{{"alice", 100}, {"bob", 100}})
	_, err := tbl.StartNewHand()
	require.NoError(t, err)

	require.NoError(t, tbl.AddPlayer("carol", 100))
	act(t, tbl, "alice", Call, 0)
	res := act(t, tbl, "bob", Check, 0)
	assert.Equal(t, "alice", res.State.TurnPlayerID, "the waiting player is skipped")

	carol, _ := res.State.Player("carol")
	assert.Equal(t, StatusWaiting, carol.Status)

	for res.Showdown == nil {
		res = act(t, tbl, res.State.TurnPlayerID, Check, 0)
	}
	res, err = tbl.StartNewHand()
	require.NoError(t, err)
	carol, _ = res.State.Player("carol")
	assert.NotEqual(t, StatusWaiting, carol.Status, "dealt in on the next hand")
}

func TestRemovePlayer(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []seat{{"alice", 100}, {"bob", 100}, {"carol", 100}, {"dave", 100}})
	_, err := tbl.RemovePlayer("nobody")
	require.ErrorIs(t, err, ErrPlayerNotFound)

	res, err := tbl.StartNewHand()
	require.NoError(t, err)
	require.Equal(t, "dave", res.State.TurnPlayerID)

	_, err = tbl.RemovePlayer("bob")
	require.ErrorIs(t, err, ErrPlayerInHand)
	assert.ErrorIs(t, tbl.AddChips("bob", 10), ErrPlayerInHand)

	act(t, tbl, "dave", Call, 0)
	act(t, tbl, "alice", Fold, 0)

	left, err := tbl.RemovePlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, 100, left)
	assert.Equal(t, "bob", tbl.TurnPlayerID(), "turn still points at the same player")
	assert.Empty(t, tbl.DealerID(), "the button left with alice")
	assert.Equal(t, 0, tbl.seatOf("bob"))

	res = act(t, tbl, "bob", Call, 0)
	assert.Equal(t, "carol", res.State.TurnPlayerID)
	res = act(t, tbl, "carol", Check, 0)
	assert.Equal(t, StageFlop, res.State.Stage)
	assert.Equal(t, 6, Total(res.State.Pots))
	assert.Equal(t, 300-6, chips(t, tbl, "bob")+chips(t, tbl, "carol")+chips(t, tbl, "dave"))
}

func TestLeaverKeepsHandDeltasBalanced(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []seat{{"alice", 100}, {"bob", 100}, {"carol", 100}, {"dave", 100}})
	_, err := tbl.StartNewHand()
	require.NoError(t, err)

	act(t, tbl, "dave", Call, 0)
	act(t, tbl, "alice", Fold, 0)
	act(t, tbl, "bob", Fold, 0)
	left, err := tbl.RemovePlayer("bob")
	require.NoError(t, err)
	assert.Equal(t, 99, left)

	res := act(t, tbl, "carol", Check, 0)
	require.Equal(t, StageFlop, res.State.Stage)
	act(t, tbl, "carol", Bet, 10)
	res = act(t, tbl, "dave", Fold, 0)
	require.NotNil(t, res.Showdown)

	assert.Equal(t, map[string]int{"alice": 0, "bob": -1, "carol": 3, "dave": -2}, res.Showdown.Deltas)
}

func TestRebase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, rebase(-1, 2, 4))
	assert.Equal(t, 1, rebase(1, 2, 4))
	assert.Equal(t, 2, rebase(3, 2, 4))
	assert.Equal(t, 1, rebase(2, 2, 4))
	assert.Equal(t, 3, rebase(0, 0, 4), "removing seat 0 wraps back to the last seat")
	assert.Equal(t, -1, rebase(0, 0, 0))
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []seat{{"alice", 100}, {"bob", 100}, {"carol", 100}})
	_, err := tbl.StartNewHand()
	require.NoError(t, err)
	act(t, tbl, "alice", Raise, 6)
	act(t, tbl, "bob", Fold, 0)

	data, err := json.Marshal(tbl.Snapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	restored, err := Restore(snap, WithRand(randutil.New(42)))
	require.NoError(t, err)
	assert.Equal(t, tbl.Snapshot(), restored.Snapshot())

	// both copies play out identically from here
	for tbl.Stage().Live() {
		action := Call
		for _, opt := range tbl.LegalActions() {
			if opt.Action == Check {
				action = Check
			}
		}
		want, err := tbl.HandleAction(tbl.TurnPlayerID(), action, 0)
		require.NoError(t, err)
		got, err := restored.HandleAction(restored.TurnPlayerID(), action, 0)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.NotNil(t, tbl.LastShowdown())
}

func TestRestoreRejectsInconsistentSnapshots(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []seat{{"alice", 100}, {"bob", 100}})
	_, err := tbl.StartNewHand()
	require.NoError(t, err)

	snap := tbl.Snapshot()
	snap.ChipTotal++
	_, err = Restore(snap)
	assert.ErrorIs(t, err, ErrChipConservation)

	snap = tbl.Snapshot()
	snap.Seats[1].Hand = snap.Seats[0].Hand
	_, err = Restore(snap)
	assert.Error(t, err, "duplicate cards")

	snap = tbl.Snapshot()
	snap.Version = 99
	_, err = Restore(snap)
	assert.Error(t, err)

	snap = tbl.Snapshot()
	snap.TurnIndex = 5
	_, err = Restore(snap)
	assert.Error(t, err)
}

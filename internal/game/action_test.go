package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	t.Parallel()

	for _, a := range []Action{Fold, Check, Call, Bet, Raise} {
		got, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	got, err := ParseAction(" RAISE ")
	require.NoError(t, err)
	assert.Equal(t, Raise, got)

	_, err = ParseAction("allin")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, "unknown", Action(9).String())
}

func TestActionJSON(t *testing.T) {
	t.Parallel()

	var decoded struct {
		Action Action `json:"action"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"action":"call"}`), &decoded))
	assert.Equal(t, Call, decoded.Action)

	data, err := json.Marshal(ActionOption{Action: Bet, Min: 2, Max: 50})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"bet","min":2,"max":50}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"action":"shove"}`), &decoded))
}

func TestStageLive(t *testing.T) {
	t.Parallel()

	assert.True(t, StagePreFlop.Live())
	assert.True(t, StageRiver.Live())
	assert.False(t, StageWaiting.Live())
	assert.False(t, StageShowdown.Live())
	assert.False(t, StageHandOver.Live())
	assert.False(t, StageAborted.Live())
}

func TestStateJSONShape(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, []seat{{"alice", 100}, {"bob", 100}})
	_, err := tbl.StartNewHand()
	require.NoError(t, err)

	data, err := json.Marshal(tbl.State())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"pots", "communityCards", "state", "handNumber", "currentBet", "turnUserId", "players"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "pre-flop", raw["state"])
	assert.Equal(t, "alice", raw["turnUserId"])

	players := raw["players"].([]any)
	first := players[0].(map[string]any)
	assert.Equal(t, "alice", first["userId"])
	assert.Equal(t, []any{}, first["hand"])
}

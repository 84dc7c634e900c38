package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/internal/config"
	"github.com/lox/holdemtable/internal/game"
)

const simulation = `
server {
  next_hand_delay = "0s"
  seed            = 7
}

table "low" {
  small_blind = 1
  big_blind   = 2
  hand_limit  = 5
}

table "high" {
  small_blind = 5
  big_blind   = 10
  hand_limit  = 5
}

bot "a" {
  strategy = "call"
  tables   = ["low"]
}

bot "b" {
  strategy = "call"
  tables   = ["low"]
}

bot "c" {
  strategy = "fold"
  tables   = ["low"]
}

bot "d" {
  strategy = "call"
  tables   = ["high"]
}

bot "e" {
  strategy = "fold"
  tables   = ["high"]
}
`

func TestManagerRunsConfiguredTables(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cfg, err := config.Parse([]byte(simulation), "sim.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	var mu sync.Mutex
	finished := make(map[string]int)
	last := make(map[string]game.State)
	record := func(e Event) {
		if e.Kind != EventHandFinished {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		finished[e.TableID]++
		last[e.TableID] = e.State
	}

	m := NewManager(quiet)
	setups, err := m.CreateFromConfig(ctx, cfg, WithEventHandler(record))
	require.NoError(t, err)
	require.Len(t, setups, 2)

	errc := make(chan error, 1)
	go func() { errc <- m.Run(ctx) }()

	for _, s := range setups {
		require.NoError(t, SeatBots(ctx, s, cfg.Server.Seed, quiet))
	}

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("simulation did not finish")
	}

	ids := m.TableIDs()
	require.Len(t, ids, 2)
	for _, id := range ids {
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	wantChips := map[string]int{"low": 600, "high": 2000}
	for _, s := range setups {
		id := s.Runner.ID()
		assert.Equal(t, 5, finished[id], s.Runner.Name())

		total := 0
		for _, p := range last[id].Players {
			total += p.Chips
		}
		assert.Equal(t, wantChips[s.Runner.Name()], total, "chips at %s", s.Runner.Name())
	}
}

func TestManagerRejectsDuplicateTables(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewManager(quiet)
	rc := RunnerConfig{ID: "main", Game: game.Config{SmallBlind: 1, BigBlind: 2}}
	_, err := m.CreateTable(ctx, rc)
	require.NoError(t, err)
	_, err = m.CreateTable(ctx, rc)
	assert.ErrorIs(t, err, ErrTableExists)

	r, ok := m.Table("main")
	require.True(t, ok)
	assert.Equal(t, "main", r.ID())
}

func TestManagerShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(quiet)
	r, err := m.CreateTable(ctx, RunnerConfig{Game: game.Config{SmallBlind: 1, BigBlind: 2}, AutoStart: true})
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- m.Run(ctx) }()

	_, err = r.State(ctx, "")
	require.NoError(t, err)

	// Tables created while running start straight away
	late, err := m.CreateTable(ctx, RunnerConfig{Game: game.Config{SmallBlind: 1, BigBlind: 2}})
	require.NoError(t, err)
	_, err = late.State(ctx, "")
	require.NoError(t, err)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop")
	}

	_, err = r.State(context.Background(), "")
	assert.ErrorIs(t, err, ErrRunnerStopped)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/lox/holdemtable/internal/config"
	"github.com/lox/holdemtable/internal/server"
)

// SimulateCmd plays a fixed number of bot-only hands
type SimulateCmd struct {
	Hands int    `short:"n" default:"100" env:"HOLDEM_HANDS" help:"Hands to play at each table"`
	Seed  *int64 `env:"HOLDEM_SEED" help:"Deterministic seed (overrides config)"`
}

func (c *SimulateCmd) Run(cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	if err := c.prepare(cfg); err != nil {
		return err
	}
	logger := setupLogger(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t := newTally()
	if err := serve(ctx, cfg, logger, server.WithEventHandler(t.record)); err != nil {
		return err
	}
	t.report(os.Stdout)
	return nil
}

// prepare turns a configuration into a finite, bot-only run
func (c *SimulateCmd) prepare(cfg *config.Config) error {
	if c.Hands <= 0 {
		return fmt.Errorf("hands must be positive")
	}
	for i := range cfg.Tables {
		if n := len(cfg.BotsFor(cfg.Tables[i].Name)); n < 2 {
			return fmt.Errorf("table %s: needs at least 2 bots to simulate, has %d", cfg.Tables[i].Name, n)
		}
		cfg.Tables[i].HandLimit = c.Hands
	}
	cfg.Server.NextHandDelay = "0s"
	cfg.Server.SnapshotDir = ""
	if c.Seed != nil {
		cfg.Server.Seed = c.Seed
	}
	return nil
}

type tableTally struct {
	hands int
	net   map[string]int
	won   map[string]int
}

// tally accumulates hand results from every table
type tally struct {
	mu     sync.Mutex
	tables map[string]*tableTally
}

func newTally() *tally {
	return &tally{tables: make(map[string]*tableTally)}
}

func (t *tally) record(e server.Event) {
	if e.Kind != server.EventHandFinished || e.Showdown == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	name := e.TableName
	tt, ok := t.tables[name]
	if !ok {
		tt = &tableTally{net: make(map[string]int), won: make(map[string]int)}
		t.tables[name] = tt
	}
	tt.hands++
	for id, delta := range e.Showdown.Deltas {
		tt.net[id] += delta
		if delta > 0 {
			tt.won[id]++
		}
	}
}

func (t *tally) report(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.tables))
	for name := range t.tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tt := t.tables[name]
		fmt.Fprintf(w, "Table %s: %d hands\n", name, tt.hands)

		players := make([]string, 0, len(tt.net))
		for p := range tt.net {
			players = append(players, p)
		}
		sort.Slice(players, func(i, j int) bool {
			if tt.net[players[i]] != tt.net[players[j]] {
				return tt.net[players[i]] > tt.net[players[j]]
			}
			return players[i] < players[j]
		})
		for _, p := range players {
			fmt.Fprintf(w, "  %-16s %+8d chips  %4d hands won\n", p, tt.net[p], tt.won[p])
		}
	}
}

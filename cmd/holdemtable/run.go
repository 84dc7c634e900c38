package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemtable/internal/config"
	"github.com/lox/holdemtable/internal/ledger"
	"github.com/lox/holdemtable/internal/server"
	"github.com/lox/holdemtable/internal/store"
)

// RunCmd serves the configured tables
type RunCmd struct{}

func (c *RunCmd) Run(cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting table server", "tables", len(cfg.Tables), "bots", len(cfg.Bots))
	return serve(ctx, cfg, logger)
}

// serve runs every configured table with its bots until the tables finish
// or ctx is cancelled
func serve(ctx context.Context, cfg *config.Config, logger *log.Logger, extra ...server.RunnerOption) error {
	chipValue, err := cfg.Server.ChipValueDecimal()
	if err != nil {
		return err
	}
	bank := ledger.NewMemory(chipValue, nil)

	opts := []server.RunnerOption{server.WithLedger(bank)}
	if dir := cfg.Server.SnapshotDir; dir != "" {
		repo, err := store.NewFile(dir, logger)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithRepository(repo))
		logger.Info("Persisting tables", "dir", dir)
	}

	m := server.NewManager(logger, opts...)
	setups, err := m.CreateFromConfig(ctx, cfg, extra...)
	if err != nil {
		return err
	}

	// Bots are funded with exactly what their buy-ins cost
	for _, b := range cfg.Bots {
		if _, err := bank.Deposit(ctx, b.Name, bank.Value(b.BuyIn*len(b.Tables))); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.Run(gctx) })
	for _, s := range setups {
		g.Go(func() error { return server.SeatBots(gctx, s, cfg.Server.Seed, logger) })
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	for _, b := range cfg.Bots {
		if bal, err := bank.Balance(context.Background(), b.Name); err == nil {
			logger.Debug("Bot balance", "bot", b.Name, "balance", bal)
		}
	}
	return nil
}

// CheckConfigCmd validates a configuration file without running it
type CheckConfigCmd struct{}

func (c *CheckConfigCmd) Run(cli *CLI) error {
	cfg, err := cli.load()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Server.LogLevel)
	for _, t := range cfg.Tables {
		logger.Info("Table",
			"name", t.Name,
			"stakes", fmt.Sprintf("%d/%d", t.SmallBlind, t.BigBlind),
			"maxPlayers", t.MaxPlayers,
			"buyIn", fmt.Sprintf("%d-%d", t.BuyInMin, t.BuyInMax),
			"bots", len(cfg.BotsFor(t.Name)))
	}
	fmt.Printf("%s: ok (%d tables, %d bots)\n", cli.Config, len(cfg.Tables), len(cfg.Bots))
	return nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/thoas/go-funk"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemtable/internal/bot"
	"github.com/lox/holdemtable/internal/config"
	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/randutil"
)

var ErrTableExists = errors.New("table already exists")

// Manager runs many tables in parallel. Tables share nothing but the
// repository and ledger, which are safe for concurrent use.
type Manager struct {
	logger *log.Logger
	opts   []RunnerOption

	mu      sync.RWMutex
	runners map[string]*TableRunner
	group   *errgroup.Group
	gctx    context.Context
}

// NewManager creates a manager. opts are applied to every runner it creates.
func NewManager(logger *log.Logger, opts ...RunnerOption) *Manager {
	return &Manager{
		logger:  logger.WithPrefix("manager"),
		opts:    opts,
		runners: make(map[string]*TableRunner),
	}
}

// CreateTable registers a runner. An empty cfg.ID is replaced with a new
// UUID. When the manager is already running the table starts immediately.
func (m *Manager) CreateTable(ctx context.Context, cfg RunnerConfig, opts ...RunnerOption) (*TableRunner, error) {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runners[cfg.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrTableExists, cfg.ID)
	}

	all := append([]RunnerOption{WithLogger(m.logger)}, m.opts...)
	r, err := NewTableRunner(ctx, cfg, append(all, opts...)...)
	if err != nil {
		return nil, err
	}
	m.runners[cfg.ID] = r
	m.logger.Info("Created table", "id", cfg.ID, "name", cfg.Name)

	if m.group != nil {
		gctx := m.gctx
		m.group.Go(func() error { return r.Run(gctx) })
	}
	return r, nil
}

// Table returns a runner by id
func (m *Manager) Table(id string) (*TableRunner, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runners[id]
	return r, ok
}

// TableIDs returns the ids of every table, sorted
func (m *Manager) TableIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := funk.Keys(m.runners).([]string)
	sort.Strings(ids)
	return ids
}

// Run starts every runner and blocks until they have all stopped. A runner
// error cancels the others. Cancelling ctx is a clean shutdown.
func (m *Manager) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	m.mu.Lock()
	if m.group != nil {
		m.mu.Unlock()
		return fmt.Errorf("manager already running")
	}
	m.group, m.gctx = g, gctx
	for _, r := range m.runners {
		g.Go(func() error { return r.Run(gctx) })
	}
	m.mu.Unlock()

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Setup pairs a runner with the bots configured for its table
type Setup struct {
	Runner *TableRunner
	Bots   []config.Bot
}

// CreateFromConfig creates a runner for every table in cfg. Bots are not
// seated; call SeatBots once the manager is running.
func (m *Manager) CreateFromConfig(ctx context.Context, cfg *config.Config, opts ...RunnerOption) ([]Setup, error) {
	turnTimeout, err := cfg.Server.TurnTimeoutDuration()
	if err != nil {
		return nil, err
	}
	nextHand, err := cfg.Server.NextHandDelayDuration()
	if err != nil {
		return nil, err
	}

	var setups []Setup
	for i, t := range cfg.Tables {
		bots := cfg.BotsFor(t.Name)
		rc := RunnerConfig{
			Name:          t.Name,
			Game:          t.GameConfig(),
			TurnTimeout:   turnTimeout,
			NextHandDelay: nextHand,
			BuyInMin:      t.BuyInMin,
			BuyInMax:      t.BuyInMax,
			HandLimit:     t.HandLimit,
			AutoStart:     true,
			ExitWhenIdle:  len(bots) > 0 && t.HandLimit > 0,
		}

		tableOpts := append([]RunnerOption{}, opts...)
		if cfg.Server.Seed != nil {
			seed := *cfg.Server.Seed + int64(i)
			tableOpts = append(tableOpts, WithTableOptions(game.WithRand(randutil.New(seed))))
		}

		r, err := m.CreateTable(ctx, rc, tableOpts...)
		if err != nil {
			return nil, err
		}
		setups = append(setups, Setup{Runner: r, Bots: bots})
	}
	return setups, nil
}

// SeatBots joins the configured bots to their table in a single step, so
// the first hand is dealt to all of them. A bot whose seat was restored from
// a snapshot is reattached without a new buy-in. seed, when non-nil, makes
// each bot's choices reproducible.
func SeatBots(ctx context.Context, s Setup, seed *int64, logger *log.Logger) error {
	players := make([]bot.Bot, len(s.Bots))
	for i, b := range s.Bots {
		rng := randutil.NewSecure()
		if seed != nil {
			rng = randutil.New(*seed + int64(i) + 1)
		}
		player, err := bot.New(b.Strategy, rng, logger)
		if err != nil {
			return fmt.Errorf("bot %s: %w", b.Name, err)
		}
		players[i] = player
	}

	r := s.Runner
	return r.do(ctx, func() error {
		for i, b := range s.Bots {
			if _, seated := r.table.Player(b.Name); !seated {
				if err := r.join(ctx, b.Name, b.BuyIn); err != nil {
					return fmt.Errorf("seat bot %s at %s: %w", b.Name, r.Name(), err)
				}
			}
			r.bots[b.Name] = players[i]
		}
		if r.table.Stage().Live() {
			r.armTurn()
		}
		return nil
	})
}

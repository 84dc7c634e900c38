// Package server runs tables: one goroutine per table, a turn clock that
// folds idle players, and a manager that runs many tables at once.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/thoas/go-funk"

	"github.com/lox/holdemtable/internal/bot"
	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/ledger"
	"github.com/lox/holdemtable/internal/store"
)

var (
	ErrRunnerStopped = errors.New("table runner stopped")
	ErrBuyIn         = errors.New("buy-in outside table limits")
)

// RunnerConfig describes one table and how its runner drives it
type RunnerConfig struct {
	ID            string
	Name          string
	Game          game.Config
	TurnTimeout   time.Duration
	NextHandDelay time.Duration
	BuyInMin      int
	BuyInMax      int
	// HandLimit stops the runner after this many completed hands (0 = no limit)
	HandLimit int
	// AutoStart deals the next hand whenever enough players are seated
	AutoStart bool
	// ExitWhenIdle stops the runner when, after at least one hand, fewer
	// than two players can continue. Used for bot-only tables.
	ExitWhenIdle bool
}

// RunnerOption configures a TableRunner
type RunnerOption func(*TableRunner)

// WithClock sets the clock used for turn and next-hand timers
func WithClock(clock quartz.Clock) RunnerOption {
	return func(r *TableRunner) { r.clock = clock }
}

// WithRepository persists a snapshot after every change
func WithRepository(repo store.Repository) RunnerOption {
	return func(r *TableRunner) { r.repo = repo }
}

// WithLedger moves buy-ins and cash-outs through a ledger and journals hands
func WithLedger(l ledger.Ledger) RunnerOption {
	return func(r *TableRunner) { r.ledger = l }
}

// WithEventHandler subscribes to table events
func WithEventHandler(h EventHandler) RunnerOption {
	return func(r *TableRunner) { r.handlers = append(r.handlers, h) }
}

// WithTableOptions passes options through to the engine
func WithTableOptions(opts ...game.Option) RunnerOption {
	return func(r *TableRunner) { r.tableOpts = append(r.tableOpts, opts...) }
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) RunnerOption {
	return func(r *TableRunner) { r.logger = logger }
}

type command struct {
	fn    func() error
	reply chan error
}

// turnKey identifies one turn. A timer armed for a key that is no longer
// current is stale and does nothing.
type turnKey struct {
	hand   int
	player string
	seq    int
}

// TableRunner owns a table and serialises every command on its own goroutine
type TableRunner struct {
	cfg       RunnerConfig
	table     *game.Table
	tableOpts []game.Option
	clock     quartz.Clock
	logger    *log.Logger
	repo      store.Repository
	ledger    ledger.Ledger
	handlers  []EventHandler
	bots      map[string]bot.Bot

	commands chan command
	internal chan func(context.Context)
	done     chan struct{}

	// Owned by the run goroutine
	pending     []func(context.Context)
	turnTimer   *quartz.Timer
	turn        turnKey
	seq         int
	handTimer   *quartz.Timer
	handsPlayed int
	finished    bool
	fault       error
}

// NewTableRunner builds a runner. When a repository holds a snapshot for
// cfg.ID the table is restored from it, otherwise a fresh table is created.
func NewTableRunner(ctx context.Context, cfg RunnerConfig, opts ...RunnerOption) (*TableRunner, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("table runner: id is required")
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}

	r := &TableRunner{
		cfg:      cfg,
		bots:     make(map[string]bot.Bot),
		commands: make(chan command),
		internal: make(chan func(context.Context)),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		r.clock = quartz.NewReal()
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	r.logger = r.logger.WithPrefix("table").With("table", cfg.Name)

	if err := r.loadTable(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *TableRunner) loadTable(ctx context.Context) error {
	if r.repo != nil {
		snap, err := r.repo.Load(ctx, r.cfg.ID)
		switch {
		case err == nil:
			table, err := game.Restore(snap, r.tableOpts...)
			if err != nil {
				return fmt.Errorf("restore table %s: %w", r.cfg.ID, err)
			}
			r.table = table
			r.logger.Info("Restored table", "hand", table.HandNumber(), "stage", table.Stage())
			return nil
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("load table %s: %w", r.cfg.ID, err)
		}
	}

	table, err := game.NewTable(r.cfg.Game, r.tableOpts...)
	if err != nil {
		return fmt.Errorf("create table %s: %w", r.cfg.ID, err)
	}
	r.table = table
	return nil
}

// ID returns the table id
func (r *TableRunner) ID() string { return r.cfg.ID }

// Name returns the configured table name
func (r *TableRunner) Name() string { return r.cfg.Name }

// Done is closed when Run returns
func (r *TableRunner) Done() <-chan struct{} { return r.done }

// Run processes commands until ctx is cancelled or the hand limit is
// reached. It must be called exactly once.
func (r *TableRunner) Run(ctx context.Context) error {
	defer close(r.done)
	defer r.stopTimers()

	r.logger.Info("Table running", "blinds", fmt.Sprintf("%d/%d", r.cfg.Game.SmallBlind, r.cfg.Game.BigBlind))

	if r.table.Stage().Live() {
		r.armTurn()
	} else if r.cfg.AutoStart {
		r.queue(r.tryStartHand)
	}

	for {
		if r.finished {
			if r.fault != nil {
				return fmt.Errorf("table %s: %w", r.cfg.Name, r.fault)
			}
			r.logger.Info("Table finished", "hands", r.handsPlayed)
			return nil
		}

		if len(r.pending) > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cmd := <-r.commands:
				cmd.reply <- cmd.fn()
			case fn := <-r.internal:
				fn(ctx)
			default:
				fn := r.pending[0]
				r.pending = r.pending[1:]
				fn(ctx)
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-r.commands:
			cmd.reply <- cmd.fn()
		case fn := <-r.internal:
			fn(ctx)
		}
	}
}

// queue runs fn on the runner goroutine after the current step
func (r *TableRunner) queue(fn func(context.Context)) {
	r.pending = append(r.pending, fn)
}

// post hands work from a timer goroutine to the runner goroutine
func (r *TableRunner) post(fn func(context.Context)) {
	select {
	case r.internal <- fn:
	case <-r.done:
	}
}

// do runs fn on the runner goroutine and waits for its result
func (r *TableRunner) do(ctx context.Context, fn func() error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case r.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrRunnerStopped
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		select {
		case err := <-cmd.reply:
			return err
		default:
			return ErrRunnerStopped
		}
	}
}

// Join seats a player, debiting the buy-in from their ledger account
func (r *TableRunner) Join(ctx context.Context, playerID string, buyIn int) error {
	return r.do(ctx, func() error { return r.join(ctx, playerID, buyIn) })
}

// JoinBot seats a bot that the runner will play itself
func (r *TableRunner) JoinBot(ctx context.Context, playerID string, buyIn int, b bot.Bot) error {
	return r.do(ctx, func() error {
		if err := r.join(ctx, playerID, buyIn); err != nil {
			return err
		}
		r.bots[playerID] = b
		return nil
	})
}

func (r *TableRunner) join(ctx context.Context, playerID string, buyIn int) error {
	if (r.cfg.BuyInMin > 0 && buyIn < r.cfg.BuyInMin) || (r.cfg.BuyInMax > 0 && buyIn > r.cfg.BuyInMax) {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrBuyIn, buyIn, r.cfg.BuyInMin, r.cfg.BuyInMax)
	}
	if r.ledger != nil {
		if _, err := r.ledger.Debit(ctx, playerID, r.cfg.ID, buyIn); err != nil {
			return fmt.Errorf("buy in: %w", err)
		}
	}
	if err := r.table.AddPlayer(playerID, buyIn); err != nil {
		if r.ledger != nil {
			if _, rerr := r.ledger.Credit(ctx, playerID, r.cfg.ID, buyIn); rerr != nil {
				r.logger.Error("Failed to refund buy-in", "player", playerID, "error", rerr)
			}
		}
		return err
	}

	r.logger.Info("Player joined", "player", playerID, "chips", buyIn)
	r.persist(ctx)
	r.emit(Event{Kind: EventPlayerJoined, PlayerID: playerID, Amount: buyIn})
	if r.cfg.AutoStart && !r.table.Stage().Live() && r.handTimer == nil {
		r.scheduleNextHand()
	}
	return nil
}

// Leave removes a player between hands (or after they folded) and credits
// their remaining stack back to their account
func (r *TableRunner) Leave(ctx context.Context, playerID string) (int, error) {
	var chips int
	err := r.do(ctx, func() error {
		var err error
		chips, err = r.table.RemovePlayer(playerID)
		if err != nil {
			return err
		}
		delete(r.bots, playerID)
		if r.ledger != nil && chips > 0 {
			if _, err := r.ledger.Credit(ctx, playerID, r.cfg.ID, chips); err != nil {
				r.logger.Error("Failed to credit cash-out", "player", playerID, "chips", chips, "error", err)
			}
		}
		r.logger.Info("Player left", "player", playerID, "chips", chips)
		r.persist(ctx)
		r.emit(Event{Kind: EventPlayerLeft, PlayerID: playerID, Amount: chips})
		return nil
	})
	return chips, err
}

// StartHand deals a new hand now
func (r *TableRunner) StartHand(ctx context.Context) (game.ActionResult, error) {
	var res game.ActionResult
	err := r.do(ctx, func() error {
		var err error
		res, err = r.startHand(ctx)
		return err
	})
	return res, err
}

// ResetAbortedHand refunds the chips committed to an aborted hand and lets
// play resume. Refunds owed to players who already left are credited to their
// ledger accounts.
func (r *TableRunner) ResetAbortedHand(ctx context.Context) error {
	return r.do(ctx, func() error {
		owed, err := r.table.ResetAbortedHand()
		if err != nil {
			return err
		}
		for playerID, chips := range owed {
			r.logger.Info("Refunding absent player", "player", playerID, "chips", chips)
			if r.ledger == nil {
				continue
			}
			if _, err := r.ledger.Credit(ctx, playerID, r.cfg.ID, chips); err != nil {
				r.logger.Error("Failed to credit refund", "player", playerID, "chips", chips, "error", err)
			}
		}
		r.logger.Info("Aborted hand reset", "hand", r.table.HandNumber())
		r.persist(ctx)
		r.emit(Event{Kind: EventHandReset})
		if r.cfg.AutoStart {
			r.scheduleNextHand()
		}
		return nil
	})
}

// Act submits an action for the player at turn
func (r *TableRunner) Act(ctx context.Context, playerID string, action game.Action, amount int) (game.ActionResult, error) {
	var res game.ActionResult
	err := r.do(ctx, func() error {
		var err error
		res, err = r.act(ctx, playerID, action, amount, EventAction)
		return err
	})
	return res, err
}

// State returns the table as seen by viewerID ("" for the public view)
func (r *TableRunner) State(ctx context.Context, viewerID string) (game.State, error) {
	var state game.State
	err := r.do(ctx, func() error {
		state = r.table.StateFor(viewerID)
		return nil
	})
	return state, err
}

// LegalActions returns the options open to the player at turn
func (r *TableRunner) LegalActions(ctx context.Context) ([]game.ActionOption, error) {
	var options []game.ActionOption
	err := r.do(ctx, func() error {
		options = r.table.LegalActions()
		return nil
	})
	return options, err
}

// Snapshot returns a full image of the table
func (r *TableRunner) Snapshot(ctx context.Context) (game.Snapshot, error) {
	var snap game.Snapshot
	err := r.do(ctx, func() error {
		snap = r.table.Snapshot()
		return nil
	})
	return snap, err
}

// Summary is a short description of a running table
type Summary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Stage       game.Stage `json:"stage"`
	HandNumber  int        `json:"handNumber"`
	HandsPlayed int        `json:"handsPlayed"`
	Players     []string   `json:"players"`
	Bots        []string   `json:"bots"`
}

// Summary describes the table
func (r *TableRunner) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	err := r.do(ctx, func() error {
		players := r.table.Players()
		ids := funk.Map(players, func(p game.PlayerState) string { return p.ID }).([]string)
		s = Summary{
			ID:          r.cfg.ID,
			Name:        r.cfg.Name,
			Stage:       r.table.Stage(),
			HandNumber:  r.table.HandNumber(),
			HandsPlayed: r.handsPlayed,
			Players:     ids,
			Bots:        funk.Filter(ids, func(id string) bool { return r.bots[id] != nil }).([]string),
		}
		return nil
	})
	return s, err
}

func (r *TableRunner) tryStartHand(ctx context.Context) {
	if r.table.Stage().Live() {
		return
	}
	if _, err := r.startHand(ctx); err != nil {
		if errors.Is(err, game.ErrNotEnoughPlayers) {
			r.logger.Debug("Waiting for players", "seated", len(r.table.Players()))
			if r.cfg.ExitWhenIdle && r.handsPlayed > 0 {
				r.finished = true
			}
			return
		}
		r.logger.Error("Failed to start hand", "error", err)
	}
}

func (r *TableRunner) startHand(ctx context.Context) (game.ActionResult, error) {
	if r.cfg.HandLimit > 0 && r.handsPlayed >= r.cfg.HandLimit {
		return game.ActionResult{}, fmt.Errorf("hand limit of %d reached", r.cfg.HandLimit)
	}
	r.cancelNextHand()

	res, err := r.table.StartNewHand()
	if err != nil {
		if game.IsFatal(err) {
			r.handleAbort(ctx, err)
		}
		return res, err
	}

	r.seq++
	r.logger.Debug("Hand started", "hand", res.State.HandNumber, "dealer", res.State.DealerID)
	r.emit(Event{Kind: EventHandStarted, State: res.State})
	r.afterChange(ctx, res)
	return res, nil
}

func (r *TableRunner) act(ctx context.Context, playerID string, action game.Action, amount int, kind EventKind) (game.ActionResult, error) {
	res, err := r.table.HandleAction(playerID, action, amount)
	if err != nil {
		if game.IsFatal(err) {
			r.handleAbort(ctx, err)
		}
		return res, err
	}

	r.seq++
	r.logger.Debug("Action", "player", playerID, "action", action, "amount", amount)
	r.emit(Event{Kind: kind, PlayerID: playerID, Action: action.String(), Amount: amount, State: res.State})
	r.afterChange(ctx, res)
	return res, nil
}

func (r *TableRunner) afterChange(ctx context.Context, res game.ActionResult) {
	r.persist(ctx)
	if res.Showdown != nil {
		r.finishHand(ctx, res)
		return
	}
	r.armTurn()
}

func (r *TableRunner) finishHand(ctx context.Context, res game.ActionResult) {
	r.stopTurn()
	sd := res.Showdown
	r.handsPlayed++

	if r.ledger != nil {
		if _, err := r.ledger.RecordHand(ctx, r.cfg.ID, sd.HandNumber, sd.Deltas); err != nil {
			r.logger.Error("Failed to journal hand", "hand", sd.HandNumber, "error", err)
		}
	}
	for _, pot := range sd.Pots {
		for _, w := range pot.Winners {
			r.logger.Info("Pot awarded", "hand", sd.HandNumber, "pot", pot.Name, "player", w.PlayerID, "amount", w.Amount, "hand_name", pot.HandName)
		}
	}
	r.emit(Event{Kind: EventHandFinished, State: res.State, Showdown: sd})

	if r.cfg.HandLimit > 0 && r.handsPlayed >= r.cfg.HandLimit {
		r.finished = true
		return
	}
	if r.cfg.AutoStart {
		r.scheduleNextHand()
	}
}

// handleAbort leaves the aborted hand in place for investigation. No new
// hand is dealt until ResetAbortedHand refunds it.
func (r *TableRunner) handleAbort(ctx context.Context, err error) {
	r.stopTurn()
	r.cancelNextHand()
	r.logger.Error("Hand aborted", "hand", r.table.HandNumber(), "error", err)
	r.persist(ctx)
	r.emit(Event{Kind: EventHandAborted, State: r.table.State(), Err: err})
	if r.cfg.ExitWhenIdle {
		r.fault = err
		r.finished = true
	}
}

func (r *TableRunner) scheduleNextHand() {
	r.cancelNextHand()
	if r.cfg.NextHandDelay <= 0 {
		r.queue(r.tryStartHand)
		return
	}
	r.handTimer = r.clock.AfterFunc(r.cfg.NextHandDelay, func() {
		r.post(func(ctx context.Context) {
			r.handTimer = nil
			r.tryStartHand(ctx)
		})
	}, "next-hand")
}

func (r *TableRunner) cancelNextHand() {
	if r.handTimer != nil {
		r.handTimer.Stop()
		r.handTimer = nil
	}
}

// armTurn starts the clock for whoever is at turn, or lets a bot play
func (r *TableRunner) armTurn() {
	r.stopTurn()
	playerID := r.table.TurnPlayerID()
	if playerID == "" {
		return
	}
	key := turnKey{hand: r.table.HandNumber(), player: playerID, seq: r.seq}
	r.turn = key

	if b, ok := r.bots[playerID]; ok {
		r.queue(func(ctx context.Context) { r.playBot(ctx, key, b) })
		return
	}
	if r.cfg.TurnTimeout <= 0 {
		return
	}
	r.turnTimer = r.clock.AfterFunc(r.cfg.TurnTimeout, func() {
		r.post(func(ctx context.Context) { r.expireTurn(ctx, key) })
	}, "turn")
}

func (r *TableRunner) stopTurn() {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
	r.turn = turnKey{}
}

func (r *TableRunner) stopTimers() {
	r.stopTurn()
	r.cancelNextHand()
}

func (r *TableRunner) expireTurn(ctx context.Context, key turnKey) {
	if key != r.turn {
		return
	}
	r.logger.Warn("Turn timed out", "player", key.player, "hand", key.hand, "timeout", r.cfg.TurnTimeout)
	if _, err := r.act(ctx, key.player, game.Fold, 0, EventTurnTimeout); err != nil {
		r.logger.Error("Failed to fold timed out player", "player", key.player, "error", err)
	}
}

func (r *TableRunner) playBot(ctx context.Context, key turnKey, b bot.Bot) {
	if key != r.turn {
		return
	}
	view := r.table.StateFor(key.player)
	self, ok := view.Player(key.player)
	if !ok {
		return
	}
	d := b.Decide(view, self, r.table.LegalActions())
	if _, err := r.act(ctx, key.player, d.Action, d.Amount, EventAction); err != nil {
		if game.IsFatal(err) {
			return
		}
		r.logger.Warn("Bot made an illegal move, folding", "player", key.player, "action", d.Action, "amount", d.Amount, "error", err)
		if _, err := r.act(ctx, key.player, game.Fold, 0, EventAction); err != nil {
			r.logger.Error("Failed to fold bot", "player", key.player, "error", err)
		}
	}
}

func (r *TableRunner) persist(ctx context.Context) {
	if r.repo == nil {
		return
	}
	if err := r.repo.Save(ctx, r.cfg.ID, r.table.Snapshot()); err != nil {
		r.logger.Error("Failed to save table", "error", err)
	}
}

func (r *TableRunner) emit(e Event) {
	if len(r.handlers) == 0 {
		return
	}
	e.TableID = r.cfg.ID
	e.TableName = r.cfg.Name
	if e.State.Stage == "" {
		e.State = r.table.State()
	}
	if e.HandNumber == 0 {
		e.HandNumber = e.State.HandNumber
	}
	for _, h := range r.handlers {
		h(e)
	}
}

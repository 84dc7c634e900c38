package game

import (
	"fmt"

	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/poker"
)

// DefaultMaxSeats is the largest table the engine deals to
const DefaultMaxSeats = 6

// FoldWinHandName is reported as the winning hand when everyone else folded
const FoldWinHandName = "All other players folded"

// Config holds the fixed table parameters
type Config struct {
	SmallBlind int `json:"smallBlind"`
	BigBlind   int `json:"bigBlind"`
	MaxSeats   int `json:"maxSeats"`
}

func (c Config) validate() error {
	if c.SmallBlind <= 0 {
		return fmt.Errorf("%w: small blind must be positive, got %d", ErrInvalidAmount, c.SmallBlind)
	}
	if c.BigBlind < c.SmallBlind {
		return fmt.Errorf("%w: big blind %d is below small blind %d", ErrInvalidAmount, c.BigBlind, c.SmallBlind)
	}
	if c.MaxSeats < 2 || c.MaxSeats > DefaultMaxSeats {
		return fmt.Errorf("%w: max seats must be between 2 and %d, got %d", ErrInvalidAmount, DefaultMaxSeats, c.MaxSeats)
	}
	return nil
}

// Option configures a Table during creation
type Option func(*Table)

// WithRand sets the randomness used for shuffles and the first button draw
func WithRand(rng poker.Source) Option {
	return func(t *Table) {
		t.rng = rng
	}
}

// WithEvaluator replaces the hand evaluator used at showdown
func WithEvaluator(e poker.Evaluator) Option {
	return func(t *Table) {
		t.evaluator = e
	}
}

// WithDeck makes every hand deal from decks built by newDeck instead of a
// freshly shuffled one. Used for replays and stacked test decks.
func WithDeck(newDeck func() *poker.Deck) Option {
	return func(t *Table) {
		t.newDeck = newDeck
	}
}

// WithButton puts the button on the given seat for the first hand instead of
// drawing it at random.
func WithButton(seat int) Option {
	return func(t *Table) {
		t.firstButton = seat
	}
}

// Table is a single No-Limit Hold'em table. It is not safe for concurrent
// use; callers serialise access (see the server package).
type Table struct {
	cfg       Config
	rng       poker.Source
	evaluator poker.Evaluator
	newDeck   func() *poker.Deck

	players        []*player
	deck           *poker.Deck
	communityCards []poker.Card
	pots           []Pot
	deadChips      []int

	stage       Stage
	handNumber  int
	currentBet  int
	dealerIndex int
	turnIndex   int
	headsUp     bool
	firstButton int

	// chipTotal is every chip owned by seated players or in the middle.
	chipTotal      int
	startingStacks map[string]int
	lastShowdown   *Showdown
}

// NewTable creates an empty table
func NewTable(cfg Config, opts ...Option) (*Table, error) {
	if cfg.MaxSeats == 0 {
		cfg.MaxSeats = DefaultMaxSeats
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	t := &Table{
		cfg:         cfg,
		evaluator:   poker.HandEvaluator{},
		stage:       StageWaiting,
		dealerIndex: -1,
		turnIndex:   -1,
		firstButton: -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		t.rng = randutil.NewSecure()
	}
	return t, nil
}

// Config returns the table parameters
func (t *Table) Config() Config { return t.cfg }

// Stage returns the current stage
func (t *Table) Stage() Stage { return t.stage }

// HandNumber returns how many hands have been started
func (t *Table) HandNumber() int { return t.handNumber }

// LastShowdown returns the result of the most recently finished hand
func (t *Table) LastShowdown() *Showdown { return t.lastShowdown }

// AddPlayer seats a new player. Players joining mid-hand wait for the next
// deal; players with no chips sit out until they add some.
func (t *Table) AddPlayer(id string, chips int) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPlayer)
	}
	if chips < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, chips)
	}
	if t.seatOf(id) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateSeat, id)
	}
	if len(t.players) >= t.cfg.MaxSeats {
		return fmt.Errorf("%w: %d seats", ErrTableFull, t.cfg.MaxSeats)
	}
	t.players = append(t.players, newPlayer(id, chips))
	t.chipTotal += chips
	return nil
}

// RemovePlayer unseats a player and returns their remaining stack. A player
// still contesting a live hand must fold first.
func (t *Table) RemovePlayer(id string) (int, error) {
	idx := t.seatOf(id)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	p := t.players[idx]
	if t.stage.Live() && p.inHand() {
		return 0, fmt.Errorf("%w: %s", ErrPlayerInHand, id)
	}

	t.players = append(t.players[:idx], t.players[idx+1:]...)
	t.chipTotal -= p.chips
	t.dealerIndex = rebase(t.dealerIndex, idx, len(t.players))
	t.turnIndex = rebase(t.turnIndex, idx, len(t.players))
	if _, dealt := t.startingStacks[id]; dealt && t.handUnsettled() {
		// Net the cash-out so the hand's deltas still sum to zero
		t.startingStacks[id] -= p.chips
	} else {
		delete(t.startingStacks, id)
	}
	return p.chips, nil
}

// rebase keeps a seat index pointing at the same player after removed is
// spliced out. An index on the removed seat moves back one so the next
// rotation lands on the seat that followed it.
func rebase(index, removed, remaining int) int {
	switch {
	case index < 0 || remaining == 0:
		return -1
	case index > removed:
		return index - 1
	case index == removed:
		return (index - 1 + remaining) % remaining
	}
	return index
}

// AddChips tops up a player who is not contesting the current hand
func (t *Table) AddChips(id string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	idx := t.seatOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	p := t.players[idx]
	if t.stage.Live() && p.inHand() {
		return fmt.Errorf("%w: %s", ErrPlayerInHand, id)
	}
	p.chips += amount
	t.chipTotal += amount
	if _, dealt := t.startingStacks[id]; dealt && t.handUnsettled() {
		t.startingStacks[id] += amount
	}
	if p.status == StatusInactive {
		p.status = StatusWaiting
	}
	return nil
}

// Player returns a copy of a seat. Hole cards are included.
func (t *Table) Player(id string) (PlayerState, bool) {
	idx := t.seatOf(id)
	if idx < 0 {
		return PlayerState{}, false
	}
	return t.players[idx].state(true), true
}

// Players returns every seat in seat order without hole cards
func (t *Table) Players() []PlayerState {
	out := make([]PlayerState, len(t.players))
	for i, p := range t.players {
		out[i] = p.state(false)
	}
	return out
}

// TurnPlayerID returns the id of the player due to act, or "" when nobody is
func (t *Table) TurnPlayerID() string {
	if t.turnIndex < 0 || t.turnIndex >= len(t.players) {
		return ""
	}
	return t.players[t.turnIndex].id
}

// DealerID returns the id of the button for the current hand, or "" before
// the first hand or when the button has left the table
func (t *Table) DealerID() string {
	for _, p := range t.players {
		if p.isDealer {
			return p.id
		}
	}
	return ""
}

func (t *Table) seatOf(id string) int {
	for i, p := range t.players {
		if p.id == id {
			return i
		}
	}
	return -1
}

// nextActive returns the first seat after from whose status is active,
// wrapping around to from itself. It returns -1 when nobody can act.
func (t *Table) nextActive(from int) int {
	n := len(t.players)
	for i := 1; i <= n; i++ {
		idx := (from + i + n) % n
		if t.players[idx].status == StatusActive {
			return idx
		}
	}
	return -1
}

// nextInHand is nextActive for players who are active or all-in
func (t *Table) nextInHand(from int) int {
	n := len(t.players)
	for i := 1; i <= n; i++ {
		idx := (from + i + n) % n
		if t.players[idx].inHand() {
			return idx
		}
	}
	return -1
}

func (t *Table) countStatus(statuses ...Status) int {
	count := 0
	for _, p := range t.players {
		for _, s := range statuses {
			if p.status == s {
				count++
				break
			}
		}
	}
	return count
}

// checkConservation verifies no chip was created or destroyed
func (t *Table) checkConservation() error {
	total := 0
	for _, p := range t.players {
		total += p.chips + p.currentBet
	}
	for _, pot := range t.pots {
		total += pot.Amount
	}
	for _, d := range t.deadChips {
		total += d
	}
	if total != t.chipTotal {
		return fmt.Errorf("%w: hand %d holds %d chips, expected %d", ErrChipConservation, t.handNumber, total, t.chipTotal)
	}
	return nil
}

// abort stops the hand after a fatal error. The middle is left as is so the
// state can be inspected.
func (t *Table) abort() {
	t.stage = StageAborted
	t.turnIndex = -1
}

// handUnsettled reports whether chips from the current hand are still in the
// middle
func (t *Table) handUnsettled() bool {
	return t.stage.Live() || t.stage == StageAborted
}

// ResetAbortedHand returns every chip committed to an aborted hand to the
// player who committed it and puts the table back to waiting. Seated players
// are refunded in place; the returned map holds what is owed to players who
// left the table after the abort.
func (t *Table) ResetAbortedHand() (map[string]int, error) {
	if t.stage != StageAborted {
		return nil, fmt.Errorf("%w: stage is %s", ErrNoAbortedHand, t.stage)
	}

	middle := 0
	for _, p := range t.players {
		middle += p.currentBet
	}
	for _, pot := range t.pots {
		middle += pot.Amount
	}
	for _, d := range t.deadChips {
		middle += d
	}

	refunds := make(map[string]int, len(t.startingStacks))
	owed := make(map[string]int)
	refunded := 0
	for id, start := range t.startingStacks {
		committed := start
		if idx := t.seatOf(id); idx >= 0 {
			committed -= t.players[idx].chips
		} else if committed > 0 {
			owed[id] = committed
		}
		if committed < 0 {
			return nil, fmt.Errorf("%w: %s committed %d chips", ErrChipConservation, id, committed)
		}
		refunds[id] = committed
		refunded += committed
	}
	if refunded != middle {
		return nil, fmt.Errorf("%w: refunds total %d, middle holds %d", ErrChipConservation, refunded, middle)
	}

	t.chipTotal = 0
	for _, p := range t.players {
		p.chips += refunds[p.id]
		p.currentBet = 0
		p.hand = nil
		p.hasActed = false
		if p.chips > 0 {
			p.status = StatusWaiting
		} else {
			p.status = StatusInactive
		}
		t.chipTotal += p.chips
	}
	t.pots = nil
	t.deadChips = nil
	t.communityCards = nil
	t.currentBet = 0
	t.startingStacks = nil
	t.turnIndex = -1
	t.stage = StageWaiting
	return owed, nil
}

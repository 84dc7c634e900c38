// Package ledger keeps the money side of a table: buy-ins debit a player's
// account, cash-outs credit it, and every finished hand is journalled as
// chip deltas.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrUnbalancedHand    = errors.New("hand deltas do not sum to zero")
)

// Kind classifies a journal entry
type Kind string

const (
	KindDeposit Kind = "deposit"
	KindBuyIn   Kind = "buy_in"
	KindCashOut Kind = "cash_out"
	KindHand    Kind = "hand"
)

// Entry is one line in the journal. Amount is signed from the account's
// point of view.
type Entry struct {
	ID         uuid.UUID       `json:"id"`
	Group      uuid.UUID       `json:"group"`
	Account    string          `json:"account"`
	Kind       Kind            `json:"kind"`
	Chips      int             `json:"chips"`
	Amount     decimal.Decimal `json:"amount"`
	TableID    string          `json:"tableId,omitempty"`
	HandNumber int             `json:"handNumber,omitempty"`
	At         time.Time       `json:"at"`
}

// Ledger is the bookkeeping collaborator used by table runners
type Ledger interface {
	Debit(ctx context.Context, account, tableID string, chips int) (Entry, error)
	Credit(ctx context.Context, account, tableID string, chips int) (Entry, error)
	RecordHand(ctx context.Context, tableID string, handNumber int, deltas map[string]int) ([]Entry, error)
	Balance(ctx context.Context, account string) (decimal.Decimal, error)
}

// Memory is an in-process Ledger
type Memory struct {
	mu        sync.Mutex
	chipValue decimal.Decimal
	clock     quartz.Clock
	balances  map[string]decimal.Decimal
	entries   []Entry
}

var _ Ledger = (*Memory)(nil)

// NewMemory returns an empty ledger where one chip is worth chipValue
func NewMemory(chipValue decimal.Decimal, clock quartz.Clock) *Memory {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Memory{
		chipValue: chipValue,
		clock:     clock,
		balances:  make(map[string]decimal.Decimal),
	}
}

// Value converts chips to currency
func (m *Memory) Value(chips int) decimal.Decimal {
	return m.chipValue.Mul(decimal.NewFromInt(int64(chips)))
}

// Deposit adds currency to an account
func (m *Memory) Deposit(ctx context.Context, account string, amount decimal.Decimal) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	if !amount.IsPositive() {
		return Entry{}, fmt.Errorf("%w: deposit of %s", ErrInvalidAmount, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.post(uuid.New(), Entry{Account: account, Kind: KindDeposit, Amount: amount}), nil
}

// Debit takes the currency value of a buy-in from the account
func (m *Memory) Debit(ctx context.Context, account, tableID string, chips int) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	if chips <= 0 {
		return Entry{}, fmt.Errorf("%w: buy-in of %d chips", ErrInvalidAmount, chips)
	}
	cost := m.Value(chips)

	m.mu.Lock()
	defer m.mu.Unlock()
	if bal := m.balances[account]; bal.LessThan(cost) {
		return Entry{}, fmt.Errorf("%w: %s has %s, buy-in costs %s", ErrInsufficientFunds, account, bal, cost)
	}
	return m.post(uuid.New(), Entry{
		Account: account,
		Kind:    KindBuyIn,
		Chips:   -chips,
		Amount:  cost.Neg(),
		TableID: tableID,
	}), nil
}

// Credit pays out the currency value of chips leaving a table
func (m *Memory) Credit(ctx context.Context, account, tableID string, chips int) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	if chips < 0 {
		return Entry{}, fmt.Errorf("%w: cash-out of %d chips", ErrInvalidAmount, chips)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.post(uuid.New(), Entry{
		Account: account,
		Kind:    KindCashOut,
		Chips:   chips,
		Amount:  m.Value(chips),
		TableID: tableID,
	}), nil
}

// RecordHand journals every player's chip change for one hand under a shared
// group id. Balances are unaffected: chips only turn into money on cash-out.
func (m *Memory) RecordHand(ctx context.Context, tableID string, handNumber int, deltas map[string]int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	net := 0
	for _, d := range deltas {
		net += d
	}
	if net != 0 {
		return nil, fmt.Errorf("%w: table %s hand %d nets %d", ErrUnbalancedHand, tableID, handNumber, net)
	}

	accounts := make([]string, 0, len(deltas))
	for id := range deltas {
		accounts = append(accounts, id)
	}
	slices.Sort(accounts)

	m.mu.Lock()
	defer m.mu.Unlock()
	group := uuid.New()
	out := make([]Entry, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, m.post(group, Entry{
			Account:    account,
			Kind:       KindHand,
			Chips:      deltas[account],
			Amount:     m.Value(deltas[account]),
			TableID:    tableID,
			HandNumber: handNumber,
		}))
	}
	return out, nil
}

// Balance returns an account's currency balance
func (m *Memory) Balance(ctx context.Context, account string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account], nil
}

// Entries returns the journal for one account, oldest first. An empty
// account returns every entry.
func (m *Memory) Entries(account string) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if account == "" || e.Account == account {
			out = append(out, e)
		}
	}
	return out
}

// post appends an entry; the caller holds mu
func (m *Memory) post(group uuid.UUID, e Entry) Entry {
	e.ID = uuid.New()
	e.Group = group
	e.At = m.clock.Now()
	if e.Kind != KindHand {
		m.balances[e.Account] = m.balances[e.Account].Add(e.Amount)
	}
	m.entries = append(m.entries, e)
	return e
}

package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) (*Memory, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	return NewMemory(decimal.RequireFromString("0.25"), clock), clock
}

func TestBuyInAndCashOut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, _ := newLedger(t)

	_, err := l.Deposit(ctx, "alice", decimal.NewFromInt(50))
	require.NoError(t, err)

	entry, err := l.Debit(ctx, "alice", "t1", 100)
	require.NoError(t, err)
	assert.Equal(t, KindBuyIn, entry.Kind)
	assert.Equal(t, -100, entry.Chips)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(-25)), entry.Amount.String())

	bal, err := l.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "25", bal.String())

	_, err = l.Debit(ctx, "alice", "t1", 101)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	_, err = l.Credit(ctx, "alice", "t1", 150)
	require.NoError(t, err)
	bal, err = l.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "62.5", bal.String())

	assert.Len(t, l.Entries("alice"), 3)
	assert.Empty(t, l.Entries("bob"))
}

func TestInvalidAmounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, _ := newLedger(t)

	_, err := l.Deposit(ctx, "alice", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = l.Debit(ctx, "alice", "t1", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = l.Credit(ctx, "alice", "t1", -5)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRecordHand(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, clock := newLedger(t)
	clock.Set(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))

	entries, err := l.RecordHand(ctx, "t1", 7, map[string]int{"bob": -3, "alice": 3})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].Account)
	assert.Equal(t, entries[0].Group, entries[1].Group, "one group per hand")
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
	assert.Equal(t, 7, entries[1].HandNumber)
	assert.Equal(t, "-0.75", entries[1].Amount.String())
	assert.Equal(t, clock.Now(), entries[0].At)

	bal, err := l.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, bal.IsZero(), "hand results do not move money")

	_, err = l.RecordHand(ctx, "t1", 8, map[string]int{"alice": 5, "bob": -3})
	assert.ErrorIs(t, err, ErrUnbalancedHand)
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	l, _ := newLedger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Debit(ctx, "alice", "t1", 10)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = l.Balance(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}

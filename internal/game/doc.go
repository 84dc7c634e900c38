// Package game implements a single No-Limit Texas Hold'em table.
//
// The main type is Table, which seats up to six players and runs hands from
// the blinds to the payout: dealing, turn order, bet validation, side pots
// and showdown.
//
// # Basic Usage
//
//	t, err := game.NewTable(game.Config{SmallBlind: 1, BigBlind: 2})
//	t.AddPlayer("alice", 200)
//	t.AddPlayer("bob", 200)
//	res, err := t.StartNewHand()
//	res, err = t.HandleAction(res.State.TurnPlayerID, game.Call, 0)
//	if res.Showdown != nil {
//	    // hand finished, res.Showdown.Pots has the payouts
//	}
//
// # Deterministic Testing
//
// Shuffles draw from an injected poker.Source. Tests and seeded simulations
// pass randutil.New(seed) via WithRand; WithDeck stacks the deck and
// WithButton fixes the first dealer.
//
// # Errors
//
// Validation errors (ErrNotYourTurn, ErrRaiseTooSmall, ...) leave the table
// untouched. Fatal errors (see IsFatal) abort the hand and put the table in
// StageAborted. The middle stays as it was until ResetAbortedHand refunds
// every committed chip; StartNewHand refuses to deal before that.
//
// A Table is not safe for concurrent use. The server package owns each table
// from a single goroutine.
package game

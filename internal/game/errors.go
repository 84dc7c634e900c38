package game

import (
	"errors"

	"github.com/lox/holdemtable/poker"
)

// Validation errors. These are returned before any state is touched, so the
// caller can report them to the acting client and carry on.
var (
	ErrNotEnoughPlayers = errors.New("at least 2 players with chips are needed to start a hand")
	ErrTableFull        = errors.New("table is full")
	ErrDuplicateSeat    = errors.New("player is already seated")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPlayerInHand     = errors.New("player is still contesting the current hand")
	ErrHandInProgress   = errors.New("a hand is already in progress")
	ErrInvalidAmount    = errors.New("invalid chip amount")
	ErrInvalidPlayer    = errors.New("invalid player id")
	ErrAbortedHand      = errors.New("the aborted hand must be reset before dealing")
	ErrNoAbortedHand    = errors.New("no aborted hand to reset")
	ErrNoActiveTurn     = errors.New("no active turn, the betting round is over")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrIllegalCheck     = errors.New("cannot check, there is a bet to call")
	ErrNothingToCall    = errors.New("nothing to call, check instead")
	ErrIllegalBet       = errors.New("cannot bet into an open bet, call or raise instead")
	ErrBetTooSmall      = errors.New("bet is below the minimum")
	ErrIllegalRaise     = errors.New("cannot raise without a bet, bet instead")
	ErrRaiseTooSmall    = errors.New("raise is below the minimum")
	ErrUnknownAction    = errors.New("unknown action")
)

// Fatal errors. They indicate a defect in the engine: the hand is aborted and
// the table must not continue as if nothing happened.
var (
	ErrChipConservation = errors.New("chip conservation violated")
	ErrHandAborted      = errors.New("hand aborted")
	ErrEvaluation       = errors.New("hand evaluation failed")
)

// IsFatal reports whether err means the current hand had to be aborted
func IsFatal(err error) bool {
	return errors.Is(err, ErrChipConservation) ||
		errors.Is(err, ErrHandAborted) ||
		errors.Is(err, ErrEvaluation) ||
		errors.Is(err, poker.ErrEmptyDeck)
}

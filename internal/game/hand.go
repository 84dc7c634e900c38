package game

import (
	"fmt"

	"github.com/lox/holdemtable/poker"
)

// ActionResult is returned by every operation that advances a hand. Showdown
// is set only when the operation finished the hand.
type ActionResult struct {
	State    State     `json:"state"`
	Showdown *Showdown `json:"showdown,omitempty"`
}

// StartNewHand shuffles a fresh deck, moves the button, posts blinds and deals
// hole cards. If nobody is left to act after the blinds the board is run out
// and the result is returned straight away.
func (t *Table) StartNewHand() (ActionResult, error) {
	if t.stage.Live() {
		return ActionResult{State: t.State()}, ErrHandInProgress
	}
	if t.stage == StageAborted {
		return ActionResult{State: t.State()}, ErrAbortedHand
	}

	eligible := 0
	for _, p := range t.players {
		if p.chips > 0 {
			eligible++
		}
	}
	if eligible < 2 {
		t.stage = StageWaiting
		t.turnIndex = -1
		return ActionResult{State: t.State()}, fmt.Errorf("%w: %d can play", ErrNotEnoughPlayers, eligible)
	}

	for _, p := range t.players {
		p.clearHand()
	}
	t.handNumber++
	t.pots = nil
	t.deadChips = nil
	t.communityCards = nil
	t.currentBet = 0
	t.lastShowdown = nil
	if t.newDeck != nil {
		t.deck = t.newDeck()
	} else {
		t.deck = poker.NewDeck(t.rng)
	}

	t.chipTotal = 0
	t.startingStacks = make(map[string]int, len(t.players))
	for _, p := range t.players {
		t.chipTotal += p.chips
		if p.status == StatusActive {
			t.startingStacks[p.id] = p.chips
		}
	}

	t.moveButton()
	t.players[t.dealerIndex].isDealer = true
	t.headsUp = len(t.startingStacks) == 2

	sb, bb, first := t.blindSeats()
	t.players[sb].commitChips(t.cfg.SmallBlind)
	t.players[bb].commitChips(t.cfg.BigBlind)
	t.currentBet = t.cfg.BigBlind
	t.stage = StagePreFlop

	if err := t.dealHoleCards(sb); err != nil {
		t.abort()
		return ActionResult{State: t.State()}, err
	}

	t.turnIndex = first
	if t.players[first].status != StatusActive {
		t.turnIndex = t.nextActive(first)
	}

	var showdown *Showdown
	if t.nobodyCanAct() {
		sd, err := t.advance()
		if err != nil {
			t.abort()
			return ActionResult{State: t.State()}, err
		}
		showdown = sd
	}
	if err := t.checkConservation(); err != nil {
		t.abort()
		return ActionResult{State: t.State()}, err
	}
	return ActionResult{State: t.State(), Showdown: showdown}, nil
}

// moveButton draws the first dealer uniformly from the active seats and
// rotates to the next active seat afterwards
func (t *Table) moveButton() {
	if t.dealerIndex < 0 {
		if t.firstButton >= 0 && t.firstButton < len(t.players) && t.players[t.firstButton].status == StatusActive {
			t.dealerIndex = t.firstButton
			return
		}
		var active []int
		for i, p := range t.players {
			if p.status == StatusActive {
				active = append(active, i)
			}
		}
		t.dealerIndex = active[t.rng.IntN(len(active))]
		return
	}
	t.dealerIndex = t.nextActive(t.dealerIndex)
}

// blindSeats returns the small blind, big blind and first pre-flop actor.
// Heads-up the dealer posts the small blind and acts first.
func (t *Table) blindSeats() (sb, bb, first int) {
	if t.headsUp {
		sb = t.dealerIndex
		bb = t.nextActive(sb)
		return sb, bb, sb
	}
	sb = t.nextActive(t.dealerIndex)
	bb = t.nextActive(sb)
	return sb, bb, t.nextActive(bb)
}

// dealHoleCards deals two passes of one card each, starting at the small blind
func (t *Table) dealHoleCards(start int) error {
	inHand := t.countStatus(StatusActive, StatusAllIn)
	for pass := 0; pass < 2; pass++ {
		idx := start
		for i := 0; i < inHand; i++ {
			card, err := t.deck.Draw()
			if err != nil {
				return fmt.Errorf("dealing hole cards: %w", err)
			}
			t.players[idx].hand = append(t.players[idx].hand, card)
			idx = t.nextInHand(idx)
		}
	}
	return nil
}

// nobodyCanAct reports whether betting is impossible: nobody active, or a lone
// active player who already matches the bet.
func (t *Table) nobodyCanAct() bool {
	active := 0
	matched := true
	for _, p := range t.players {
		if p.status == StatusActive {
			active++
			if p.currentBet < t.currentBet {
				matched = false
			}
		}
	}
	return active == 0 || (active == 1 && matched)
}

// HandleAction applies a decision from the player at turn. Validation errors
// leave the table untouched; fatal errors abort the hand (see IsFatal).
func (t *Table) HandleAction(playerID string, action Action, amount int) (ActionResult, error) {
	if !t.stage.Live() || t.turnIndex < 0 || t.turnIndex >= len(t.players) {
		return ActionResult{State: t.State()}, ErrNoActiveTurn
	}
	p := t.players[t.turnIndex]
	if p.id != playerID {
		return ActionResult{State: t.State()}, fmt.Errorf("%w: waiting on %s", ErrNotYourTurn, p.id)
	}

	mv, err := t.validate(p, action, amount)
	if err != nil {
		return ActionResult{State: t.State()}, err
	}
	t.apply(p, mv)

	showdown, err := t.progress()
	if err != nil {
		t.abort()
		return ActionResult{State: t.State()}, err
	}
	if err := t.checkConservation(); err != nil {
		t.abort()
		return ActionResult{State: t.State()}, err
	}
	return ActionResult{State: t.State(), Showdown: showdown}, nil
}

// move is a validated action ready to apply
type move struct {
	action Action
	commit int
	newBet int // table bet after the move
}

func (t *Table) validate(p *player, action Action, amount int) (move, error) {
	mv := move{action: action, newBet: t.currentBet}
	switch action {
	case Fold:
		return mv, nil

	case Check:
		if p.currentBet < t.currentBet {
			return mv, fmt.Errorf("%w: %d to call", ErrIllegalCheck, t.currentBet-p.currentBet)
		}
		return mv, nil

	case Call:
		owed := t.currentBet - p.currentBet
		if owed <= 0 {
			return mv, ErrNothingToCall
		}
		mv.commit = min(owed, p.chips)
		return mv, nil

	case Bet:
		if t.currentBet != 0 {
			return mv, fmt.Errorf("%w: current bet is %d", ErrIllegalBet, t.currentBet)
		}
		if amount <= 0 {
			return mv, fmt.Errorf("%w: %d", ErrBetTooSmall, amount)
		}
		if amount >= p.chips {
			mv.commit = p.chips
		} else {
			if amount < t.cfg.BigBlind {
				return mv, fmt.Errorf("%w: minimum is %d", ErrBetTooSmall, t.cfg.BigBlind)
			}
			mv.commit = amount
		}
		mv.newBet = p.currentBet + mv.commit
		return mv, nil

	case Raise:
		if t.currentBet == 0 {
			return mv, ErrIllegalRaise
		}
		stack := p.currentBet + p.chips
		if amount >= stack {
			// All-in. A short all-in counts as a call and never lowers the bet.
			mv.commit = p.chips
			mv.newBet = max(t.currentBet, stack)
			return mv, nil
		}
		if amount-t.currentBet < t.cfg.BigBlind {
			return mv, fmt.Errorf("%w: minimum raise is to %d", ErrRaiseTooSmall, t.currentBet+t.cfg.BigBlind)
		}
		mv.commit = amount - p.currentBet
		mv.newBet = amount
		return mv, nil
	}
	return mv, fmt.Errorf("%w: %d", ErrUnknownAction, int(action))
}

func (t *Table) apply(p *player, mv move) {
	if mv.action == Fold {
		if dead := p.fold(); dead > 0 {
			t.deadChips = append(t.deadChips, dead)
		}
		return
	}
	p.commitChips(mv.commit)
	p.hasActed = true
	t.currentBet = mv.newBet
}

// BettingRoundComplete reports whether every player who can still act has
// acted and matched the current bet. All-in players are always satisfied.
func (t *Table) BettingRoundComplete() bool {
	if !t.stage.Live() {
		return false
	}
	for _, p := range t.players {
		if p.status != StatusActive {
			continue
		}
		if !p.hasActed || p.currentBet != t.currentBet {
			return false
		}
	}
	return true
}

// progress moves the turn on after an action, advancing streets and settling
// the hand as needed
func (t *Table) progress() (*Showdown, error) {
	if t.countStatus(StatusActive, StatusAllIn) <= 1 {
		return t.finishByFold()
	}
	if t.BettingRoundComplete() {
		return t.advance()
	}
	next := t.nextActive(t.turnIndex)
	if next < 0 {
		return t.advance()
	}
	t.turnIndex = next
	return nil, nil
}

// advance closes the betting round and deals the next street. While at most
// one player can still bet, streets keep being dealt until the showdown.
func (t *Table) advance() (*Showdown, error) {
	for {
		t.settlePot()
		for _, p := range t.players {
			if p.status == StatusActive {
				p.hasActed = false
			}
		}

		var deal int
		switch t.stage {
		case StagePreFlop:
			t.stage, deal = StageFlop, 3
		case StageFlop:
			t.stage, deal = StageTurn, 1
		case StageTurn:
			t.stage, deal = StageRiver, 1
		case StageRiver:
			t.stage = StageShowdown
			t.turnIndex = -1
			return t.showdown()
		default:
			return nil, fmt.Errorf("%w: cannot advance from %s", ErrHandAborted, t.stage)
		}

		for i := 0; i < deal; i++ {
			card, err := t.deck.Draw()
			if err != nil {
				return nil, fmt.Errorf("dealing %s: %w", t.stage, err)
			}
			t.communityCards = append(t.communityCards, card)
		}

		if t.countStatus(StatusActive) > 1 {
			t.turnIndex = t.firstToActPostFlop()
			return nil, nil
		}
		t.turnIndex = -1
	}
}

// firstToActPostFlop is the dealer when heads-up, otherwise the first active
// seat after the button
func (t *Table) firstToActPostFlop() int {
	if t.headsUp && t.players[t.dealerIndex].status == StatusActive {
		return t.dealerIndex
	}
	return t.nextActive(t.dealerIndex)
}

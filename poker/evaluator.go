package poker

import (
	"fmt"

	ph "github.com/paulhankin/poker"
)

// HandValue is the result of evaluating a player's best five-card hand.
// Higher Value wins; equal values tie.
type HandValue struct {
	Value int    `json:"value"`
	Name  string `json:"handName"`
}

// Evaluator ranks a seven-card holding (two hole cards plus five board cards)
type Evaluator interface {
	EvaluateBestHand(cards []Card) (HandValue, error)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface
type EvaluatorFunc func(cards []Card) (HandValue, error)

// EvaluateBestHand calls f(cards)
func (f EvaluatorFunc) EvaluateBestHand(cards []Card) (HandValue, error) {
	return f(cards)
}

// HandEvaluator is the default Evaluator, backed by github.com/paulhankin/poker
type HandEvaluator struct{}

// EvaluateBestHand scores exactly seven cards
func (HandEvaluator) EvaluateBestHand(cards []Card) (HandValue, error) {
	if len(cards) != 7 {
		return HandValue{}, fmt.Errorf("evaluate: need 7 cards, got %d", len(cards))
	}

	var hand [7]ph.Card
	for i, c := range cards {
		converted, err := toEvaluatorCard(c)
		if err != nil {
			return HandValue{}, fmt.Errorf("evaluate: card %d: %w", i, err)
		}
		hand[i] = converted
	}

	name, err := ph.Describe(hand[:])
	if err != nil {
		return HandValue{}, fmt.Errorf("evaluate: describe: %w", err)
	}

	return HandValue{
		Value: int(ph.Eval7(&hand)),
		Name:  name,
	}, nil
}

// toEvaluatorCard maps our card to the evaluator's encoding, where aces are rank 1
func toEvaluatorCard(c Card) (ph.Card, error) {
	if !c.Valid() {
		var zero ph.Card
		return zero, fmt.Errorf("invalid card: rank %d suit %d", c.Rank, c.Suit)
	}

	var suit ph.Suit
	switch c.Suit {
	case Spades:
		suit = ph.Spade
	case Hearts:
		suit = ph.Heart
	case Diamonds:
		suit = ph.Diamond
	case Clubs:
		suit = ph.Club
	}

	rank := ph.Rank(c.Rank)
	if c.Rank == Ace {
		rank = 1
	}
	return ph.MakeCard(suit, rank)
}

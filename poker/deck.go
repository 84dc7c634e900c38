package poker

import (
	"errors"
	"fmt"
)

// DeckSize is the number of cards in a standard deck
const DeckSize = 52

// ErrEmptyDeck is returned when drawing from a deck with no cards left.
// With 52 cards and at most six seats this indicates a logic defect.
var ErrEmptyDeck = errors.New("deck is empty")

// Source is the randomness a Deck shuffles with. *math/rand/v2.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Deck represents a stack of playing cards. The top of the deck is index 0.
type Deck struct {
	cards []Card
	rng   Source
}

// NewDeck creates a full 52-card deck in canonical order and shuffles it
func NewDeck(rng Source) *Deck {
	d := &Deck{
		cards: make([]Card, 0, DeckSize),
		rng:   rng,
	}
	d.Reset()
	d.Shuffle()
	return d
}

// NewDeckFromCards rebuilds a deck from a saved card order (top first).
// Duplicate or invalid cards are rejected.
func NewDeckFromCards(rng Source, cards []Card) (*Deck, error) {
	if len(cards) > DeckSize {
		return nil, fmt.Errorf("deck has %d cards, at most %d allowed", len(cards), DeckSize)
	}
	seen := make(map[Card]bool, len(cards))
	for _, c := range cards {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid card in deck: %v", c)
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate card in deck: %s", c)
		}
		seen[c] = true
	}
	d := &Deck{
		cards: make([]Card, len(cards), DeckSize),
		rng:   rng,
	}
	copy(d.cards, cards)
	return d, nil
}

// Reset restores the deck to the canonical 52 cards in fixed order
func (d *Deck) Reset() {
	d.cards = d.cards[:0]
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
}

// Shuffle randomizes the remaining cards using Fisher-Yates
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, top first
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

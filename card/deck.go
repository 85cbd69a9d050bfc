package card

import "math/rand"

// Deck is an ordered pile of cards consumed from the back.
// It is never replenished; callers must treat an empty deck as
// "no more draws possible".
type Deck struct {
	cards []Card
}

// NewDeck builds the full 52-card set and shuffles it with rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{cards: make([]Card, len(FullDeck))}
	copy(d.cards, FullDeck)
	d.Shuffle(rng)
	return d
}

// Shuffle permutes the deck in place with an unbiased Fisher-Yates pass.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the last card. The second return value is
// false when the deck is empty.
func (d *Deck) Draw() (Card, bool) {
	n := len(d.cards)
	if n == 0 {
		return CardInvalid, false
	}
	c := d.cards[n-1]
	d.cards = d.cards[:n-1]
	return c, true
}

func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards in draw order.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

package deck

import (
	"holdem-server/internal/rng"
)

var suits = []Suit{Clubs, Diamonds, Hearts, Spades}

// Dealer deals cards at random with replacement
// There is no deck to exhaust, so the same card can be dealt more than once in a hand
type Dealer struct {
	rng rng.Generator
}

// NewDealer returns a dealer that draws from the supplied generator
func NewDealer(gen rng.Generator) *Dealer {
	if gen == nil {
		gen = rng.Crypto{}
	}

	return &Dealer{rng: gen}
}

// Card returns a random card
func (d *Dealer) Card() *Card {
	rank := d.rng.Intn(len(rankCodes)) + 2
	suit := suits[d.rng.Intn(len(suits))]

	return &Card{
		Rank: rank,
		Suit: suit,
	}
}

// Cards returns n random cards
func (d *Dealer) Cards(n int) Hand {
	cards := make(Hand, n)
	for i := range cards {
		cards[i] = d.Card()
	}

	return cards
}

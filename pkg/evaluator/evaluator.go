// Package evaluator scores a player's hole cards against the board
package evaluator

import (
	"errors"
	"fmt"
	"math"

	"holdem-server/pkg/deck"

	"github.com/paulhankin/poker"
)

// Fallback is the score returned when a hand cannot be evaluated
// It beats every real hand.
const Fallback = 1

// minCards is the smallest hand that makes a poker hand
const minCards = 5

var (
	errCardCount = errors.New("expected five to seven cards")
	errDuplicate = errors.New("duplicate cards")
)

var suitValues = map[deck.Suit]poker.Suit{
	deck.Clubs:    poker.Suit(0),
	deck.Diamonds: poker.Suit(1),
	deck.Hearts:   poker.Suit(2),
	deck.Spades:   poker.Suit(3),
}

// Evaluator scores the best five card hand out of the board and hole cards
// Lower scores are better.
type Evaluator struct{}

// New returns an evaluator
func New() *Evaluator {
	return &Evaluator{}
}

// Score returns the strength of hand on board, lower wins
// Fewer than five cards, unknown cards, or duplicates score Fallback.
func (e *Evaluator) Score(board, hand deck.Hand) int {
	cards, err := pokerCards(board, hand)
	if err != nil {
		return Fallback
	}

	eval := evaluate(cards)

	// evaluations are higher-is-better and never negative, so the smallest real score is 2
	return math.MaxInt16 - int(eval) + 2
}

// Describe returns a human readable name for the best hand, e.g. "two pair"
// An empty string is returned if the hand cannot be evaluated.
func (e *Evaluator) Describe(board, hand deck.Hand) string {
	cards, err := pokerCards(board, hand)
	if err != nil {
		return ""
	}

	// Describe takes five or seven cards
	if len(cards) == 6 {
		five, _ := bestOfSix(cards)
		cards = five[:]
	}

	desc, err := poker.Describe(cards)
	if err != nil {
		return ""
	}

	return desc
}

// evaluate returns the evaluation of the best five card hand, higher is better
// cards must hold five to seven cards.
func evaluate(cards []poker.Card) int16 {
	switch len(cards) {
	case 5:
		var five [5]poker.Card
		copy(five[:], cards)
		return poker.Eval5(&five)
	case 6:
		_, eval := bestOfSix(cards)
		return eval
	}

	var seven [7]poker.Card
	copy(seven[:], cards)
	return poker.Eval7(&seven)
}

// bestOfSix leaves each card out in turn and keeps the strongest five
func bestOfSix(cards []poker.Card) ([5]poker.Card, int16) {
	var best [5]poker.Card
	var top int16 = -1

	for skip := range cards {
		var five [5]poker.Card
		n := 0
		for i, c := range cards {
			if i != skip {
				five[n] = c
				n++
			}
		}

		if eval := poker.Eval5(&five); eval > top {
			top = eval
			best = five
		}
	}

	return best, top
}

func pokerCards(board, hand deck.Hand) ([]poker.Card, error) {
	all := make(deck.Hand, 0, len(board)+len(hand))
	all = append(all, board...)
	all = append(all, hand...)

	if len(all) < minCards || len(all) > 7 {
		return nil, errCardCount
	}

	if all.HasDuplicates() {
		return nil, errDuplicate
	}

	cards := make([]poker.Card, len(all))
	for i, c := range all {
		card, err := toPokerCard(c)
		if err != nil {
			return nil, err
		}

		cards[i] = card
	}

	return cards, nil
}

func toPokerCard(c *deck.Card) (poker.Card, error) {
	if !c.Valid() {
		var zero poker.Card
		return zero, fmt.Errorf("%w: %s", deck.ErrInvalidCard, c)
	}

	rank := c.Rank
	if rank == deck.Ace {
		rank = 1
	}

	return poker.MakeCard(suitValues[c.Suit], poker.Rank(rank))
}

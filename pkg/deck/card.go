package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidCard is returned when a card code cannot be parsed
var ErrInvalidCard = errors.New("invalid card code")

// Suit represents a card suit
type Suit string

// suit constants
const (
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
	Hearts   Suit = "hearts"
	Spades   Suit = "spades"
)

// face cards
const (
	Ten   = 10
	Jack  = 11
	Queen = 12
	King  = 13
	Ace   = 14
)

const rankCodes = "23456789TJQKA"

// Card is an individual playing card
type Card struct {
	Rank int
	Suit Suit
}

var cardRx = regexp.MustCompile(`^([2-9TJQKA])([cdhs])\z`)

// CardFromString returns a Card from its two character code, e.g. "Ah" or "7c"
func CardFromString(s string) (*Card, error) {
	match := cardRx.FindStringSubmatch(s)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	var suit Suit
	switch match[2] {
	case "c":
		suit = Clubs
	case "d":
		suit = Diamonds
	case "h":
		suit = Hearts
	case "s":
		suit = Spades
	}

	return &Card{
		Rank: strings.Index(rankCodes, match[1]) + 2,
		Suit: suit,
	}, nil
}

// MustCard is like CardFromString but panics on a bad code
// It is intended for tests and constants
func MustCard(s string) *Card {
	card, err := CardFromString(s)
	if err != nil {
		panic(err)
	}

	return card
}

// String returns the two character card code
func (c *Card) String() string {
	if c == nil || c.Rank < 2 || c.Rank > Ace {
		return "??"
	}

	var suit string
	switch c.Suit {
	case Clubs:
		suit = "c"
	case Diamonds:
		suit = "d"
	case Hearts:
		suit = "h"
	case Spades:
		suit = "s"
	default:
		suit = "?"
	}

	return string(rankCodes[c.Rank-2]) + suit
}

// Equal returns true if the cards are equal (matches suit and rank)
func (c *Card) Equal(card *Card) bool {
	return c.Suit == card.Suit && c.Rank == card.Rank
}

// Valid returns true if the card has a known rank and suit
func (c *Card) Valid() bool {
	if c == nil || c.Rank < 2 || c.Rank > Ace {
		return false
	}

	switch c.Suit {
	case Clubs, Diamonds, Hearts, Spades:
		return true
	}

	return false
}

// MarshalJSON encodes the card as its code
func (c *Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a card code
func (c *Card) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	card, err := CardFromString(s)
	if err != nil {
		return err
	}

	*c = *card
	return nil
}

// CardsFromString will return a slice of cards from a comma separated list of codes
func CardsFromString(s string) (Hand, error) {
	if s == "" {
		return Hand{}, nil
	}

	codes := strings.Split(s, ",")
	cards := make(Hand, len(codes))
	for i, code := range codes {
		card, err := CardFromString(code)
		if err != nil {
			return nil, err
		}

		cards[i] = card
	}

	return cards, nil
}

// CardsToString will convert a slice of cards to a string in the format of 2c,3h,4s,...
func CardsToString(cards Hand) string {
	c := make([]string, len(cards))
	for i, card := range cards {
		c[i] = card.String()
	}

	return strings.Join(c, ",")
}

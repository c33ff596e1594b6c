package deck

// Hand is a collection of cards, used for a player's hole cards and for the board
type Hand []*Card

// AddCard adds a card to the hand
func (h *Hand) AddCard(card *Card) {
	*h = append(*h, card)
}

// Clone returns a copy of the hand
func (h Hand) Clone() Hand {
	cp := make(Hand, len(h))
	for i, card := range h {
		c := *card
		cp[i] = &c
	}

	return cp
}

// HasDuplicates returns true if the same card appears twice
func (h Hand) HasDuplicates() bool {
	seen := make(map[Card]bool, len(h))
	for _, card := range h {
		if card == nil {
			continue
		}

		if seen[*card] {
			return true
		}

		seen[*card] = true
	}

	return false
}

func (h Hand) String() string {
	return CardsToString(h)
}

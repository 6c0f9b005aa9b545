package domain

import (
	"math/rand"
)

// NewDeck returns the canonical sorted deck, 52 cards or 54 with jokers.
func NewDeck(jokers bool) []Card {
	deck := make([]Card, 0, 54)
	for r := Rank3; r <= Rank2; r++ {
		for _, s := range Suits {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	if jokers {
		deck = append(deck, SmallJoker, BigJoker)
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Deal distributes the deck round-robin into n equal sorted hands. Cards that
// do not divide evenly are returned as the reserved bottom set.
func Deal(deck []Card, n int) (hands [][]Card, bottom []Card) {
	per := len(deck) / n
	hands = make([][]Card, n)
	for i := range hands {
		hands[i] = make([]Card, 0, per)
	}
	for i := 0; i < per*n; i++ {
		hands[i%n] = append(hands[i%n], deck[i])
	}
	for _, h := range hands {
		SortHand(h)
	}
	bottom = append([]Card{}, deck[per*n:]...)
	return hands, bottom
}

// LeaderIndex returns the index of the hand holding the seed card, or when the
// seed card was not dealt, the hand holding the lowest card.
func LeaderIndex(hands [][]Card) int {
	for i, h := range hands {
		for _, c := range h {
			if c == SeedCard {
				return i
			}
		}
	}
	best, bestCard := -1, Card{}
	for i, h := range hands {
		for _, c := range h {
			if best == -1 || c.Less(bestCard) {
				best, bestCard = i, c
			}
		}
	}
	if best == -1 {
		return 0
	}
	return best
}

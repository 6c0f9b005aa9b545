package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Rank orders cards by strength: 3 is weakest, the big joker strongest.
type Rank int

const (
	Rank3 Rank = iota
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
	Rank2
	RankSmallJoker
	RankBigJoker
)

// Suit identifies a card suit. Jokers carry SuitJoker.
type Suit string

const (
	SuitClubs    Suit = "C"
	SuitDiamonds Suit = "D"
	SuitHearts   Suit = "H"
	SuitSpades   Suit = "S"
	SuitJoker    Suit = "J"
)

var rankNames = [...]string{"3", "4", "5", "6", "7", "8", "9", "T", "J", "Q", "K", "A", "2", "SJ", "BJ"}

// Suits lists the four regular suits in ascending order.
var Suits = []Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}

var ErrUnknownCard = errors.New("unknown card")

// Card is an immutable playing card value.
type Card struct {
	Rank Rank
	Suit Suit
}

var (
	SmallJoker = Card{Rank: RankSmallJoker, Suit: SuitJoker}
	BigJoker   = Card{Rank: RankBigJoker, Suit: SuitJoker}
	// SeedCard is the card whose holder leads the first trick.
	SeedCard = Card{Rank: Rank3, Suit: SuitHearts}
)

func (r Rank) String() string {
	if r < Rank3 || r > RankBigJoker {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r]
}

// IsJoker reports whether the rank is one of the two jokers.
func (r Rank) IsJoker() bool {
	return r == RankSmallJoker || r == RankBigJoker
}

func (c Card) String() string {
	if c.Rank.IsJoker() {
		return c.Rank.String()
	}
	return c.Rank.String() + string(c.Suit)
}

// Valid reports whether the card exists in a 54-card deck.
func (c Card) Valid() bool {
	if c.Rank.IsJoker() {
		return c.Suit == SuitJoker
	}
	if c.Rank < Rank3 || c.Rank > Rank2 {
		return false
	}
	return suitOrder(c.Suit) >= 0
}

// Less orders cards by rank, then suit (C < D < H < S).
func (c Card) Less(o Card) bool {
	if c.Rank != o.Rank {
		return c.Rank < o.Rank
	}
	return suitOrder(c.Suit) < suitOrder(o.Suit)
}

func suitOrder(s Suit) int {
	switch s {
	case SuitClubs:
		return 0
	case SuitDiamonds:
		return 1
	case SuitHearts:
		return 2
	case SuitSpades:
		return 3
	case SuitJoker:
		return 4
	}
	return -1
}

// ParseCard builds a card from its wire rank and suit text.
func ParseCard(rank, suit string) (Card, error) {
	for i, name := range rankNames {
		if name != rank {
			continue
		}
		c := Card{Rank: Rank(i), Suit: Suit(suit)}
		if c.Rank.IsJoker() && suit == "" {
			c.Suit = SuitJoker
		}
		if !c.Valid() {
			return Card{}, fmt.Errorf("%w: rank=%q suit=%q", ErrUnknownCard, rank, suit)
		}
		return c, nil
	}
	return Card{}, fmt.Errorf("%w: rank=%q suit=%q", ErrUnknownCard, rank, suit)
}

type wireCard struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// MarshalJSON encodes the card as {"rank":"7","suit":"S"}.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCard{Rank: c.Rank.String(), Suit: string(c.Suit)})
}

// UnmarshalJSON decodes and validates the wire form.
func (c *Card) UnmarshalJSON(data []byte) error {
	var w wireCard
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parsed, err := ParseCard(w.Rank, w.Suit)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SortHand orders cards ascending by (rank, suit) in place.
func SortHand(cards []Card) {
	sort.Slice(cards, func(i, j int) bool { return cards[i].Less(cards[j]) })
}

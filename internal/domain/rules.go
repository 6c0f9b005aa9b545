package domain

import "errors"

// CombinationType represents the type of card combination.
type CombinationType int

const (
	Invalid CombinationType = iota
	Single
	Pair
	Triple
	TripleWithSingle
	TripleWithPair
	Straight      // 5+ consecutive ranks, 3..A
	StraightPairs // 3+ consecutive pairs
	Airplane      // 2+ consecutive triples
	AirplaneWithWings
	FourWithTwo
	Bomb
	Rocket
)

var combinationNames = map[CombinationType]string{
	Invalid:           "invalid",
	Single:            "single",
	Pair:              "pair",
	Triple:            "triple",
	TripleWithSingle:  "triple_with_single",
	TripleWithPair:    "triple_with_pair",
	Straight:          "straight",
	StraightPairs:     "straight_pairs",
	Airplane:          "airplane",
	AirplaneWithWings: "airplane_with_wings",
	FourWithTwo:       "four_with_two",
	Bomb:              "bomb",
	Rocket:            "rocket",
}

func (t CombinationType) String() string {
	if name, ok := combinationNames[t]; ok {
		return name
	}
	return "unknown"
}

// Kicker describes the cards attached to a core combination.
type Kicker int

const (
	KickerNone Kicker = iota
	KickerSingles
	KickerPairs
)

// ErrInvalidCombination is returned when a card set forms no legal combination.
var ErrInvalidCombination = errors.New("invalid combination")

// Combination is a classified set of cards.
type Combination struct {
	Type   CombinationType
	Kicker Kicker
	Rank   Rank   // rank of the lowest unit of the core
	Length int    // units in the core: 1 for non-chains, chain length otherwise
	Cards  []Card // sorted ascending
}

// Size returns the number of cards in the combination.
func (c Combination) Size() int { return len(c.Cards) }

// Name is the type name with the pair-kicker subtype spelled out.
func (c Combination) Name() string {
	if c.Type == FourWithTwo && c.Kicker == KickerPairs {
		return "four_with_two_pairs"
	}
	return c.Type.String()
}

// Classify determines whether the cards form a legal combination.
func Classify(cards []Card) (Combination, error) {
	n := len(cards)
	if n == 0 {
		return Combination{}, ErrInvalidCombination
	}

	sorted := append([]Card(nil), cards...)
	SortHand(sorted)
	for i, c := range sorted {
		if !c.Valid() || (i > 0 && c == sorted[i-1]) {
			return Combination{}, ErrInvalidCombination
		}
	}

	counts := make(map[Rank]int, n)
	for _, c := range sorted {
		counts[c.Rank]++
	}
	groups := groupByCount(counts)

	combo := func(t CombinationType, k Kicker, r Rank, length int) (Combination, error) {
		return Combination{Type: t, Kicker: k, Rank: r, Length: length, Cards: sorted}, nil
	}

	// Same-rank sets.
	if len(counts) == 1 {
		r := sorted[0].Rank
		switch n {
		case 1:
			return combo(Single, KickerNone, r, 1)
		case 2:
			return combo(Pair, KickerNone, r, 1)
		case 3:
			return combo(Triple, KickerNone, r, 1)
		case 4:
			return combo(Bomb, KickerNone, r, 1)
		}
	}

	if n == 2 && sorted[0] == SmallJoker && sorted[1] == BigJoker {
		return combo(Rocket, KickerNone, RankSmallJoker, 1)
	}

	// Triple with a kicker.
	if len(groups[3]) == 1 {
		if n == 4 && len(groups[1]) == 1 {
			return combo(TripleWithSingle, KickerSingles, groups[3][0], 1)
		}
		if n == 5 && len(groups[2]) == 1 {
			return combo(TripleWithPair, KickerPairs, groups[3][0], 1)
		}
	}

	// Four with two singles or two pairs. Two quads count as a quad plus two pairs.
	if quads := groups[4]; len(quads) > 0 {
		if n == 6 && len(quads) == 1 {
			return combo(FourWithTwo, KickerSingles, quads[0], 1)
		}
		if n == 8 && len(quads) == 2 {
			return combo(FourWithTwo, KickerPairs, quads[1], 1)
		}
		if n == 8 && len(quads) == 1 && len(groups[2]) == 2 {
			return combo(FourWithTwo, KickerPairs, quads[0], 1)
		}
	}

	// Chains.
	if n >= 5 && len(groups[1]) == n && isChain(groups[1]) {
		return combo(Straight, KickerNone, groups[1][0], n)
	}
	if n >= 6 && n%2 == 0 && len(groups[2]) == n/2 && isChain(groups[2]) {
		return combo(StraightPairs, KickerNone, groups[2][0], n/2)
	}
	if n >= 6 && n%3 == 0 && len(groups[3]) == n/3 && isChain(groups[3]) {
		return combo(Airplane, KickerNone, groups[3][0], n/3)
	}

	if start, length, kicker, ok := findWings(counts, n); ok {
		return combo(AirplaneWithWings, kicker, start, length)
	}

	return Combination{}, ErrInvalidCombination
}

// groupByCount maps a multiplicity to the ascending ranks having it.
func groupByCount(counts map[Rank]int) map[int][]Rank {
	groups := make(map[int][]Rank)
	for r := Rank3; r <= RankBigJoker; r++ {
		if c := counts[r]; c > 0 {
			groups[c] = append(groups[c], r)
		}
	}
	return groups
}

// isChain reports whether ascending ranks are consecutive and stay within 3..A.
func isChain(ranks []Rank) bool {
	if len(ranks) == 0 || ranks[len(ranks)-1] > RankA {
		return false
	}
	for i := 1; i < len(ranks); i++ {
		if ranks[i] != ranks[i-1]+1 {
			return false
		}
	}
	return true
}

// findWings looks for k consecutive triples carrying k singles (4k cards) or
// k pairs (5k cards). The highest qualifying chain wins.
func findWings(counts map[Rank]int, n int) (Rank, int, Kicker, bool) {
	for _, kicker := range []Kicker{KickerSingles, KickerPairs} {
		unit := 4
		if kicker == KickerPairs {
			unit = 5
		}
		if n%unit != 0 || n/unit < 2 {
			continue
		}
		k := n / unit
		for start := RankA - Rank(k-1); start >= Rank3; start-- {
			if wingsFit(counts, start, k, kicker) {
				return start, k, kicker, true
			}
		}
	}
	return 0, 0, KickerNone, false
}

func wingsFit(counts map[Rank]int, start Rank, k int, kicker Kicker) bool {
	rest := make(map[Rank]int, len(counts))
	for r, c := range counts {
		rest[r] = c
	}
	for r := start; r < start+Rank(k); r++ {
		if rest[r] < 3 {
			return false
		}
		rest[r] -= 3
	}
	if kicker == KickerSingles {
		return true
	}
	pairs := 0
	for _, c := range rest {
		if c%2 != 0 {
			return false
		}
		pairs += c / 2
	}
	return pairs == k
}

package domain

import (
	"fmt"
	"testing"
)

func mustCombo(t *testing.T, cards string) Combination {
	t.Helper()
	c, err := Classify(mustCards(t, cards))
	if err != nil {
		t.Fatalf("Classify(%q): %v", cards, err)
	}
	return c
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name       string
		challenger string
		table      string
		want       Verdict
	}{
		{name: "higher single", challenger: "4H", table: "3S", want: Verdict{Legal: true, Stronger: true}},
		{name: "equal single", challenger: "4H", table: "4S", want: Verdict{Legal: true}},
		{name: "joker over two", challenger: "SJ", table: "2S", want: Verdict{Legal: true, Stronger: true}},
		{name: "pair over single", challenger: "5H 5C", table: "3S", want: Verdict{}},
		{name: "straight length mismatch", challenger: "4H 5C 6D 7S 8H 9C", table: "3H 4C 5D 6S 7H", want: Verdict{}},
		{name: "higher straight", challenger: "4H 5C 6D 7S 8H", table: "3H 4C 5D 6S 7H", want: Verdict{Legal: true, Stronger: true}},
		{name: "kicker mismatch", challenger: "9H 9C 9D 3S 3H", table: "5H 5C 5D 4S", want: Verdict{}},
		{name: "bomb over straight", challenger: "3H 3C 3D 3S", table: "TH JC QD KS AH", want: Verdict{Legal: true, Stronger: true}},
		{name: "higher bomb", challenger: "4H 4C 4D 4S", table: "3H 3C 3D 3S", want: Verdict{Legal: true, Stronger: true}},
		{name: "lower bomb", challenger: "3H 3C 3D 3S", table: "4H 4C 4D 4S", want: Verdict{Legal: true}},
		{name: "single over bomb", challenger: "BJ", table: "3H 3C 3D 3S", want: Verdict{}},
		{name: "rocket over bomb", challenger: "SJ BJ", table: "2H 2C 2D 2S", want: Verdict{Legal: true, Stronger: true}},
		{name: "bomb against rocket", challenger: "2H 2C 2D 2S", table: "SJ BJ", want: Verdict{Legal: true}},
		{name: "pair against rocket", challenger: "2H 2C", table: "SJ BJ", want: Verdict{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := mustCombo(t, tt.table)
			got := Compare(mustCombo(t, tt.challenger), &table)
			if got != tt.want {
				t.Fatalf("Compare() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCompareEmptyTable(t *testing.T) {
	if !Beats(mustCombo(t, "3C"), nil) {
		t.Fatal("any valid combination leads an empty table")
	}
	if Compare(Combination{}, nil).Legal {
		t.Fatal("an invalid combination is never legal")
	}
}

func TestCompareSinglesStrictOrder(t *testing.T) {
	deck := NewDeck(true)
	for _, a := range deck {
		for _, b := range deck {
			ca, _ := Classify([]Card{a})
			cb, _ := Classify([]Card{b})
			ab, ba := Beats(ca, &cb), Beats(cb, &ca)
			switch {
			case a.Rank == b.Rank && (ab || ba):
				t.Fatalf("%v and %v share a rank but one beats the other", a, b)
			case a.Rank != b.Rank && ab == ba:
				t.Fatalf("exactly one of %v and %v must win", a, b)
			}
		}
	}
}

func TestRocketBeatsEverything(t *testing.T) {
	rocket := mustCombo(t, "SJ BJ")
	tables := []string{"2S", "2H 2C", "AH AC AD AS", "3H 4C 5D 6S 7H 8C 9D TS JH QC KD AS"}
	for _, table := range tables {
		tc := mustCombo(t, table)
		if !Beats(rocket, &tc) {
			t.Fatalf("rocket should beat %s", table)
		}
		if Beats(tc, &rocket) {
			t.Fatalf("%s should not beat rocket", table)
		}
	}
}

func classifyAs(t *testing.T, want CombinationType, cards []Card) Combination {
	t.Helper()
	c, err := Classify(cards)
	if err != nil || c.Type != want {
		t.Fatalf("Classify(%v) = %v, %v; want %v", cards, c.Type, err, want)
	}
	return c
}

// ranksExcept returns the n lowest non-joker ranks not listed in skip.
func ranksExcept(n int, skip ...Rank) []Rank {
	var out []Rank
	for r := Rank3; r <= Rank2 && len(out) < n; r++ {
		taken := false
		for _, s := range skip {
			taken = taken || s == r
		}
		if !taken {
			out = append(out, r)
		}
	}
	return out
}

// comboLadders builds, per combination family, combinations of ascending rank
// that only differ in the rank of their core.
func comboLadders(t *testing.T) map[string][]Combination {
	t.Helper()
	ladders := make(map[string][]Combination)

	for r := Rank3; r <= Rank2; r++ {
		ladders["pair"] = append(ladders["pair"], classifyAs(t, Pair, []Card{
			{Rank: r, Suit: SuitClubs}, {Rank: r, Suit: SuitDiamonds},
		}))
	}

	for _, length := range []int{5, 8, 11} {
		name := fmt.Sprintf("straight of %d", length)
		for start := Rank3; start+Rank(length-1) <= RankA; start++ {
			var cards []Card
			for i := 0; i < length; i++ {
				cards = append(cards, Card{Rank: start + Rank(i), Suit: Suits[i%len(Suits)]})
			}
			ladders[name] = append(ladders[name], classifyAs(t, Straight, cards))
		}
	}

	for start := Rank3; start+1 <= RankA; start++ {
		var cards []Card
		for _, r := range []Rank{start, start + 1} {
			for _, s := range Suits[:3] {
				cards = append(cards, Card{Rank: r, Suit: s})
			}
		}
		for _, r := range ranksExcept(2, start, start+1) {
			cards = append(cards, Card{Rank: r, Suit: SuitSpades})
		}
		ladders["airplane with wings"] = append(ladders["airplane with wings"], classifyAs(t, AirplaneWithWings, cards))
	}

	for r := Rank3; r <= Rank2; r++ {
		var cards []Card
		for _, s := range Suits {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
		for _, k := range ranksExcept(2, r) {
			cards = append(cards, Card{Rank: k, Suit: SuitHearts})
		}
		ladders["four with two"] = append(ladders["four with two"], classifyAs(t, FourWithTwo, cards))
	}
	return ladders
}

func TestCompareStrictOrderPerType(t *testing.T) {
	for name, ladder := range comboLadders(t) {
		t.Run(name, func(t *testing.T) {
			if len(ladder) < 2 {
				t.Fatalf("ladder has %d rungs", len(ladder))
			}
			for i := range ladder {
				for j := range ladder {
					lo, hi := ladder[i], ladder[j]
					switch {
					case i == j:
						if Beats(lo, &hi) {
							t.Fatalf("%v beats itself", lo.Cards)
						}
						if v := Compare(lo, &hi); !v.Legal {
							t.Fatalf("%v may not follow itself", lo.Cards)
						}
					case i < j:
						if !Beats(hi, &lo) {
							t.Fatalf("%v should beat %v", hi.Cards, lo.Cards)
						}
						if Beats(lo, &hi) {
							t.Fatalf("%v should not beat %v", lo.Cards, hi.Cards)
						}
					}
				}
			}
		})
	}
}

func TestBombBeatsEveryOtherType(t *testing.T) {
	bomb := mustCombo(t, "3H 3C 3D 3S")
	for name, ladder := range comboLadders(t) {
		t.Run(name, func(t *testing.T) {
			for _, c := range ladder {
				if !Beats(bomb, &c) {
					t.Fatalf("lowest bomb should beat %v", c.Cards)
				}
				if Beats(c, &bomb) {
					t.Fatalf("%v should not beat a bomb", c.Cards)
				}
			}
		})
	}
}

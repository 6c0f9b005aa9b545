package internal

import (
	"sort"

	"doudizhu/internal/domain"
)

// ValidMove represents a possible legal play.
type ValidMove struct {
	Cards []domain.Card
	Combo domain.Combination
}

// GetValidMoves returns the legal moves for a hand against the table. A nil
// table means the player leads and any combination is allowed. Moves are
// ordered cheapest first: non-bombs before bombs before the rocket, then by
// rank and size.
func GetValidMoves(hand []domain.Card, table *domain.Combination) []ValidMove {
	g := newGrouping(hand)

	var candidates [][]domain.Card
	candidates = append(candidates, g.sets(1)...)
	candidates = append(candidates, g.sets(2)...)
	candidates = append(candidates, g.sets(3)...)
	candidates = append(candidates, g.withKickers(3, 1, 1)...)
	candidates = append(candidates, g.withKickers(3, 1, 2)...)
	candidates = append(candidates, g.withKickers(4, 2, 1)...)
	candidates = append(candidates, g.withKickers(4, 2, 2)...)
	candidates = append(candidates, g.chains(1, 5)...)
	candidates = append(candidates, g.chains(2, 3)...)
	candidates = append(candidates, g.chains(3, 2)...)
	candidates = append(candidates, g.wings(1)...)
	candidates = append(candidates, g.wings(2)...)
	candidates = append(candidates, g.sets(4)...)
	if g.count[domain.RankSmallJoker] > 0 && g.count[domain.RankBigJoker] > 0 {
		candidates = append(candidates, []domain.Card{domain.SmallJoker, domain.BigJoker})
	}

	var moves []ValidMove
	for _, cards := range candidates {
		combo, err := domain.Classify(cards)
		if err != nil {
			continue
		}
		if !domain.Beats(combo, table) {
			continue
		}
		moves = append(moves, ValidMove{Cards: combo.Cards, Combo: combo})
	}

	sort.SliceStable(moves, func(i, j int) bool {
		ci, cj := cost(moves[i].Combo), cost(moves[j].Combo)
		if ci != cj {
			return ci < cj
		}
		if moves[i].Combo.Rank != moves[j].Combo.Rank {
			return moves[i].Combo.Rank < moves[j].Combo.Rank
		}
		return moves[i].Combo.Size() < moves[j].Combo.Size()
	})
	return moves
}

func cost(c domain.Combination) int {
	switch c.Type {
	case domain.Rocket:
		return 2
	case domain.Bomb:
		return 1
	}
	return 0
}

// grouping indexes a hand by rank, lowest suits first.
type grouping struct {
	byRank map[domain.Rank][]domain.Card
	count  map[domain.Rank]int
}

func newGrouping(hand []domain.Card) grouping {
	sorted := append([]domain.Card(nil), hand...)
	domain.SortHand(sorted)
	g := grouping{byRank: map[domain.Rank][]domain.Card{}, count: map[domain.Rank]int{}}
	for _, c := range sorted {
		g.byRank[c.Rank] = append(g.byRank[c.Rank], c)
		g.count[c.Rank]++
	}
	return g
}

func (g grouping) take(r domain.Rank, n int) []domain.Card {
	return append([]domain.Card(nil), g.byRank[r][:n]...)
}

// sets returns one n-of-a-kind per rank that has at least n cards.
func (g grouping) sets(n int) [][]domain.Card {
	var out [][]domain.Card
	for r := domain.Rank3; r <= domain.RankBigJoker; r++ {
		if g.count[r] >= n {
			out = append(out, g.take(r, n))
		}
	}
	return out
}

// kickers picks the lowest k units of width w whose ranks are not excluded.
func (g grouping) kickers(k, w int, exclude func(domain.Rank) bool) ([]domain.Card, bool) {
	var out []domain.Card
	for r := domain.Rank3; r <= domain.RankBigJoker && k > 0; r++ {
		if exclude(r) || g.count[r] < w {
			continue
		}
		out = append(out, g.take(r, w)...)
		k--
	}
	return out, k == 0
}

// withKickers builds an n-of-a-kind core with k kicker units of width w.
func (g grouping) withKickers(n, k, w int) [][]domain.Card {
	var out [][]domain.Card
	for r := domain.Rank3; r <= domain.Rank2; r++ {
		if g.count[r] < n {
			continue
		}
		core := r
		kick, ok := g.kickers(k, w, func(x domain.Rank) bool { return x == core })
		if !ok {
			continue
		}
		out = append(out, append(g.take(r, n), kick...))
	}
	return out
}

// chains returns every run of at least minLen consecutive ranks (3..A) that
// has width cards per rank.
func (g grouping) chains(width, minLen int) [][]domain.Card {
	var out [][]domain.Card
	for start := domain.Rank3; start <= domain.RankA; start++ {
		var run []domain.Card
		for r := start; r <= domain.RankA && g.count[r] >= width; r++ {
			run = append(run, g.take(r, width)...)
			if int(r-start)+1 >= minLen {
				out = append(out, append([]domain.Card(nil), run...))
			}
		}
	}
	return out
}

// wings attaches one kicker unit of width w per triple to each airplane.
func (g grouping) wings(w int) [][]domain.Card {
	var out [][]domain.Card
	for _, plane := range g.chains(3, 2) {
		lo, hi := plane[0].Rank, plane[len(plane)-1].Rank
		kick, ok := g.kickers(len(plane)/3, w, func(x domain.Rank) bool { return x >= lo && x <= hi })
		if !ok {
			continue
		}
		out = append(out, append(plane, kick...))
	}
	return out
}

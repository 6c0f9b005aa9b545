package bot

import (
	"doudizhu/internal/bot/internal"
	"doudizhu/internal/domain"
)

// PassBot passes whenever it may and otherwise leads its lowest card.
type PassBot struct{}

func (b *PassBot) CalculateMove(hand []domain.Card, table *domain.Combination) Move {
	if table != nil || len(hand) == 0 {
		return Move{Pass: true}
	}
	return Move{Cards: []domain.Card{lowest(hand)}}
}

// StandardBot plays the cheapest combination that beats the table. It keeps
// bombs and the rocket back unless they finish the hand.
type StandardBot struct{}

func (b *StandardBot) CalculateMove(hand []domain.Card, table *domain.Combination) Move {
	if len(hand) == 0 {
		return Move{Pass: true}
	}

	moves := internal.GetValidMoves(hand, table)
	if len(moves) == 0 {
		if table == nil {
			return Move{Cards: []domain.Card{lowest(hand)}}
		}
		return Move{Pass: true}
	}

	best := moves[0]
	isBomb := best.Combo.Type == domain.Bomb || best.Combo.Type == domain.Rocket
	if table != nil && isBomb && best.Combo.Size() != len(hand) {
		return Move{Pass: true}
	}
	return Move{Cards: best.Cards}
}

func lowest(hand []domain.Card) domain.Card {
	low := hand[0]
	for _, c := range hand[1:] {
		if c.Less(low) {
			low = c
		}
	}
	return low
}

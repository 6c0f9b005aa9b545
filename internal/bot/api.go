package bot

import (
	"doudizhu/internal/domain"
)

// Move represents the decision made on behalf of a player.
type Move struct {
	Pass  bool
	Cards []domain.Card
}

// Brain decides a move for a hand facing the table. A nil table means the
// player must lead, and a Brain never passes then.
type Brain interface {
	CalculateMove(hand []domain.Card, table *domain.Combination) Move
}

package domain

// FreePosition returns the first unoccupied seat, or PositionUnset if full.
func FreePosition(s *RoomState) Position {
	for _, pos := range Positions {
		taken := false
		for _, pl := range s.Players {
			if pl.Position == pos {
				taken = true
				break
			}
		}
		if !taken {
			return pos
		}
	}
	return PositionUnset
}

// SeatedPlayers returns players in seat order; unseated players come last.
func SeatedPlayers(s *RoomState) []*Player {
	out := make([]*Player, 0, len(s.Players))
	for _, pos := range Positions {
		for _, pl := range s.Players {
			if pl.Position == pos {
				out = append(out, pl)
			}
		}
	}
	for _, pl := range s.Players {
		if pl.Position == PositionUnset {
			out = append(out, pl)
		}
	}
	return out
}

// HasCards reports whether hand contains every card in cards, counting
// duplicates in cards separately.
func HasCards(hand []Card, cards []Card) bool {
	available := make(map[Card]int, len(hand))
	for _, c := range hand {
		available[c]++
	}
	for _, c := range cards {
		if available[c] == 0 {
			return false
		}
		available[c]--
	}
	return true
}

// RemoveCards removes the specified cards from a hand and returns the updated hand.
func RemoveCards(hand []Card, toRemove []Card) []Card {
	if len(toRemove) == 0 || len(hand) == 0 {
		return hand
	}

	removeCounts := make(map[Card]int, len(toRemove))
	for _, card := range toRemove {
		removeCounts[card]++
	}

	updated := make([]Card, 0, len(hand))
	for _, card := range hand {
		if count, ok := removeCounts[card]; ok && count > 0 {
			removeCounts[card] = count - 1
			continue
		}
		updated = append(updated, card)
	}

	return updated
}

// ResetGame returns the room to waiting. Players keep their seats.
func ResetGame(s *RoomState) {
	s.Phase = PhaseWaiting
	s.PlayerOrder = nil
	s.CurrentPlayerID = ""
	s.Table = nil
	s.LastPlayerID = ""
	s.ConsecutivePasses = 0
	s.ReadyCount = 0
	s.Bottom = nil
	for _, pl := range s.Players {
		pl.Hand = nil
		pl.Ready = false
	}
}

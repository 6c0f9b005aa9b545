package domain

// RotateOrder returns a copy of order starting at leader.
func RotateOrder(order []PlayerID, leader PlayerID) []PlayerID {
	idx := indexOf(order, leader)
	if idx < 0 {
		return append([]PlayerID(nil), order...)
	}
	out := make([]PlayerID, 0, len(order))
	out = append(out, order[idx:]...)
	return append(out, order[:idx]...)
}

// NextInOrder returns the player after current, wrapping around. An unknown
// current yields the first player.
func NextInOrder(order []PlayerID, current PlayerID) PlayerID {
	if len(order) == 0 {
		return ""
	}
	idx := indexOf(order, current)
	return order[(idx+1)%len(order)]
}

// RegisterPlay puts combo on the table and hands the turn to the next player.
func (s *RoomState) RegisterPlay(pid PlayerID, combo Combination) {
	c := combo
	s.Table = &c
	s.LastPlayerID = pid
	s.ConsecutivePasses = 0
	s.CurrentPlayerID = NextInOrder(s.PlayerOrder, pid)
}

// RegisterPass records a pass by the current player. When everyone but the
// last player to play has passed, the table clears and that player leads;
// trickOver reports that case.
func (s *RoomState) RegisterPass() (trickOver bool) {
	s.ConsecutivePasses++
	if s.ConsecutivePasses >= len(s.PlayerOrder)-1 {
		s.endTrick()
		return true
	}
	s.CurrentPlayerID = NextInOrder(s.PlayerOrder, s.CurrentPlayerID)
	return false
}

// endTrick clears the table and gives the lead to the last player to play,
// or to the next player when that one is gone.
func (s *RoomState) endTrick() {
	lead := s.LastPlayerID
	if indexOf(s.PlayerOrder, lead) < 0 {
		lead = NextInOrder(s.PlayerOrder, s.CurrentPlayerID)
	}
	s.Table = nil
	s.LastPlayerID = ""
	s.ConsecutivePasses = 0
	s.CurrentPlayerID = lead
}

// RemoveFromOrder drops pid from the turn order. If pid held the turn, the
// turn moves to the next still-present player after it in the previous order.
// turnMoved reports that; trickOver reports that the table had to be cleared
// because the departed player led the trick or the remaining players have
// all passed already. A departed player who passed this trick no longer
// counts toward ConsecutivePasses.
func (s *RoomState) RemoveFromOrder(pid PlayerID) (turnMoved, trickOver bool) {
	idx := indexOf(s.PlayerOrder, pid)
	if idx < 0 {
		return false, false
	}
	if s.Table != nil && s.ConsecutivePasses > 0 && s.passedThisTrick(pid) {
		s.ConsecutivePasses--
	}
	s.PlayerOrder = append(s.PlayerOrder[:idx:idx], s.PlayerOrder[idx+1:]...)

	if s.CurrentPlayerID == pid {
		s.CurrentPlayerID = s.nextPresent(idx)
		turnMoved = true
	}
	if len(s.PlayerOrder) == 0 {
		return turnMoved, false
	}

	if s.Table != nil {
		if s.LastPlayerID == pid {
			s.Table = nil
			s.LastPlayerID = ""
			s.ConsecutivePasses = 0
			return turnMoved, true
		}
		if s.CurrentPlayerID == s.LastPlayerID || s.ConsecutivePasses >= len(s.PlayerOrder)-1 {
			s.endTrick()
			return true, true
		}
	}
	return turnMoved, false
}

// passedThisTrick reports whether pid sits strictly between the last player
// to play and the current player, i.e. has already passed on the table.
func (s *RoomState) passedThisTrick(pid PlayerID) bool {
	n := len(s.PlayerOrder)
	last := indexOf(s.PlayerOrder, s.LastPlayerID)
	cur := indexOf(s.PlayerOrder, s.CurrentPlayerID)
	idx := indexOf(s.PlayerOrder, pid)
	if n == 0 || last < 0 || cur < 0 || idx == last || idx == cur {
		return false
	}
	return (idx-last+n)%n < (cur-last+n)%n
}

// nextPresent searches circularly from idx for a player still in the room.
func (s *RoomState) nextPresent(idx int) PlayerID {
	n := len(s.PlayerOrder)
	for i := 0; i < n; i++ {
		candidate := s.PlayerOrder[(idx+i)%n]
		if _, ok := s.Players[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func indexOf(order []PlayerID, pid PlayerID) int {
	for i, id := range order {
		if id == pid {
			return i
		}
	}
	return -1
}

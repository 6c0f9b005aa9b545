package domain

// Verdict is the outcome of comparing a challenger against the table.
type Verdict struct {
	Legal    bool // the challenger may be played over the table at all
	Stronger bool // the challenger beats the table
}

// Compare decides whether challenger may follow table and whether it wins.
// A nil table means the challenger leads the trick.
func Compare(challenger Combination, table *Combination) Verdict {
	if challenger.Type == Invalid {
		return Verdict{}
	}
	if table == nil || table.Type == Invalid {
		return Verdict{Legal: true, Stronger: true}
	}

	switch {
	case challenger.Type == Rocket:
		return Verdict{Legal: true, Stronger: true}
	case table.Type == Rocket:
		// Only a bomb is a playable answer, and it still loses.
		return Verdict{Legal: challenger.Type == Bomb}
	case challenger.Type == Bomb:
		if table.Type != Bomb {
			return Verdict{Legal: true, Stronger: true}
		}
		return Verdict{Legal: true, Stronger: challenger.Rank > table.Rank}
	case table.Type == Bomb:
		return Verdict{}
	case challenger.Type != table.Type,
		challenger.Kicker != table.Kicker,
		challenger.Size() != table.Size():
		return Verdict{}
	}

	return Verdict{Legal: true, Stronger: challenger.Rank > table.Rank}
}

// Beats reports whether challenger is both legal and stronger than table.
func Beats(challenger Combination, table *Combination) bool {
	v := Compare(challenger, table)
	return v.Legal && v.Stronger
}

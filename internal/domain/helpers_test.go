package domain

import (
	"reflect"
	"strings"
	"testing"
)

// mustCards parses a space separated list such as "3H TS SJ".
func mustCards(t *testing.T, text string) []Card {
	t.Helper()
	var out []Card
	for _, tok := range strings.Fields(text) {
		var (
			c   Card
			err error
		)
		if tok == "SJ" || tok == "BJ" {
			c, err = ParseCard(tok, "J")
		} else {
			c, err = ParseCard(tok[:len(tok)-1], tok[len(tok)-1:])
		}
		if err != nil {
			t.Fatalf("bad card %q: %v", tok, err)
		}
		out = append(out, c)
	}
	return out
}

func TestFreePosition(t *testing.T) {
	tests := []struct {
		name  string
		taken []Position
		want  Position
	}{
		{name: "all empty", taken: nil, want: PositionBottom},
		{name: "bottom taken", taken: []Position{PositionBottom}, want: PositionLeft},
		{name: "gap is reused", taken: []Position{PositionBottom, PositionTop}, want: PositionLeft},
		{name: "full", taken: Positions, want: PositionUnset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRoomState("1")
			for i, pos := range tt.taken {
				id := PlayerID(string(rune('a' + i)))
				s.Players[id] = &Player{ID: id, Position: pos}
			}
			if got := FreePosition(s); got != tt.want {
				t.Fatalf("FreePosition() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeatedPlayers(t *testing.T) {
	s := NewRoomState("1")
	s.Players["r"] = &Player{ID: "r", Position: PositionRight}
	s.Players["b"] = &Player{ID: "b", Position: PositionBottom}
	s.Players["t"] = &Player{ID: "t", Position: PositionTop}

	var got []PlayerID
	for _, pl := range SeatedPlayers(s) {
		got = append(got, pl.ID)
	}
	want := []PlayerID{"b", "t", "r"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SeatedPlayers() = %v, want %v", got, want)
	}
}

func TestHasCards(t *testing.T) {
	hand := mustCards(t, "3H 5C 7S SJ")
	tests := []struct {
		name  string
		cards string
		want  bool
	}{
		{name: "subset", cards: "3H SJ", want: true},
		{name: "missing card", cards: "5D", want: false},
		{name: "duplicate selection", cards: "3H 3H", want: false},
		{name: "empty selection", cards: "", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCards(hand, mustCards(t, tt.cards)); got != tt.want {
				t.Fatalf("HasCards() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemoveCards(t *testing.T) {
	hand := mustCards(t, "3S 4H 5D 6S")
	got := RemoveCards(hand, mustCards(t, "4H 6S"))
	want := mustCards(t, "3S 5D")

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RemoveCards() = %v, want %v", got, want)
	}
}

func TestResetGameKeepsSeats(t *testing.T) {
	s := NewRoomState("1")
	s.Players["a"] = &Player{ID: "a", Position: PositionLeft, Ready: true, Hand: mustCards(t, "3H")}
	s.Phase = PhaseStarted
	s.PlayerOrder = []PlayerID{"a"}
	s.CurrentPlayerID = "a"
	s.ReadyCount = 1
	s.ConsecutivePasses = 2

	ResetGame(s)

	pl := s.Players["a"]
	if s.Phase != PhaseWaiting || s.ReadyCount != 0 || s.PlayerOrder != nil || s.CurrentPlayerID != "" || s.ConsecutivePasses != 0 {
		t.Fatalf("room not reset: %+v", s)
	}
	if pl.Position != PositionLeft || pl.Ready || len(pl.Hand) != 0 {
		t.Fatalf("player not reset correctly: %+v", pl)
	}
}

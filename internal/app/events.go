package app

import "doudizhu/internal/domain"

// EventKind is the wire name of an outbound event.
type EventKind string

const (
	EventRoomList          EventKind = "room_list"
	EventJoinedRoom        EventKind = "joined_room"
	EventSeatAssigned      EventKind = "seat_assigned"
	EventPlayerListUpdated EventKind = "player_list_updated"
	EventPlayerReady       EventKind = "player_ready_status"
	EventGameStarted       EventKind = "game_started"
	EventYourHand          EventKind = "your_hand"
	EventCardsPlayed       EventKind = "cards_played"
	EventNextTurn          EventKind = "next_turn"
	EventPlayerPassed      EventKind = "player_passed"
	EventRoundEnded        EventKind = "round_ended"
	EventGameOver          EventKind = "game_over"
	EventPlayerLeft        EventKind = "player_left"
	EventGameReset         EventKind = "game_reset"
	EventSpectating        EventKind = "spectating"
	EventError             EventKind = "error"
	EventSession           EventKind = "session"
)

// Event is an outbound message. Empty Recipients means every player in RoomID.
type Event struct {
	Kind       EventKind
	RoomID     string
	Payload    any
	Recipients []domain.PlayerID
}

// Unicast reports whether the event targets specific players.
func (e Event) Unicast() bool {
	return len(e.Recipients) > 0
}

type RoomSummary struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
}

type JoinedRoomPayload struct {
	RoomID string `json:"roomId"`
}

type PlayerListEntry struct {
	ID       domain.PlayerID `json:"id"`
	Position domain.Position `json:"position"`
	Ready    bool            `json:"ready"`
}

type PlayerReadyPayload struct {
	PlayerID domain.PlayerID `json:"playerId"`
	Ready    bool            `json:"ready"`
}

type StartedPlayer struct {
	ID       domain.PlayerID `json:"id"`
	Position domain.Position `json:"position"`
	HandSize int             `json:"handSize"`
}

type GameStartedPayload struct {
	StartPlayerID domain.PlayerID   `json:"startPlayerId"`
	Players       []StartedPlayer   `json:"players"`
	PlayerOrder   []domain.PlayerID `json:"playerOrder"`
}

type CardsPlayedPayload struct {
	PlayerID domain.PlayerID `json:"playerId"`
	Play     []domain.Card   `json:"play"`
	HandSize int             `json:"handSize"`
}

type TurnPayload struct {
	PlayerID domain.PlayerID `json:"playerId"`
}

// GameOverPayload carries a nil WinnerID when the game ended without a winner.
type GameOverPayload struct {
	WinnerID *domain.PlayerID `json:"winnerId"`
	Message  string           `json:"message,omitempty"`
}

type PlayerLeftPayload struct {
	ID       domain.PlayerID `json:"id"`
	Position domain.Position `json:"position"`
}

type SpectatingPayload struct {
	Message string `json:"message"`
}

type SessionPayload struct {
	PlayerID domain.PlayerID `json:"playerId"`
	Token    string          `json:"token"`
}

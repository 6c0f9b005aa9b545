package ws

import (
	"encoding/json"
	"strconv"
	"strings"

	"doudizhu/internal/app"
	"doudizhu/internal/domain"
)

// Inbound event names.
const (
	InJoinRoom     = "join_room"
	InPlayerReady  = "player_ready"
	InPlayCards    = "play_cards"
	InPassTurn     = "pass_turn"
	InRequestReset = "request_reset"
)

var (
	ErrBadRequest   = &app.GameError{Code: "BadRequest", Message: "malformed request"}
	ErrUnknownEvent = &app.GameError{Code: "UnknownEvent", Message: "unknown event"}
)

// Envelope is one inbound frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event app.EventKind `json:"event"`
	Data  any           `json:"data"`
}

func encode(ev app.Event) ([]byte, error) {
	return json.Marshal(outbound{Event: ev.Kind, Data: ev.Payload})
}

// roomIDFrom accepts "2", 2 or {"roomId": "2"}.
func roomIDFrom(data json.RawMessage) (string, error) {
	if len(data) == 0 {
		return "", ErrBadRequest
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if _, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return n.String(), nil
		}
	}
	var obj struct {
		RoomID json.RawMessage `json:"roomId"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && len(obj.RoomID) > 0 && obj.RoomID[0] != '{' {
		return roomIDFrom(obj.RoomID)
	}
	return "", ErrBadRequest
}

// cardsFrom accepts a bare card array or {"cards": [...]}.
func cardsFrom(data json.RawMessage) ([]domain.Card, error) {
	var cards []domain.Card
	if err := json.Unmarshal(data, &cards); err == nil {
		return cards, nil
	}
	var obj struct {
		Cards []domain.Card `json:"cards"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, ErrBadRequest
	}
	return obj.Cards, nil
}

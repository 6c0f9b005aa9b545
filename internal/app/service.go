package app

import (
	"errors"
	"time"

	"doudizhu/internal/domain"
)

// Logger is the printf-style leveled logger the service writes to. Nakama's
// runtime.Logger satisfies it.
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Service contains the session use-cases transports call into.
type Service struct {
	rooms  *Registry
	logger Logger
}

// NewService constructs a Service over a registry.
func NewService(rooms *Registry, logger Logger) *Service {
	return &Service{rooms: rooms, logger: logger}
}

// RoomList returns the room_list event for a freshly connected player.
func (s *Service) RoomList(pid domain.PlayerID) Event {
	return Event{Kind: EventRoomList, Payload: s.Rooms(), Recipients: []domain.PlayerID{pid}}
}

// Rooms lists every room with its occupancy.
func (s *Service) Rooms() []RoomSummary {
	return s.rooms.List()
}

// Join seats pid in roomID.
func (s *Service) Join(pid domain.PlayerID, roomID string) ([]Event, error) {
	events, err := s.rooms.Join(pid, roomID)
	if err != nil {
		s.logRejected("Join", pid, err)
		return nil, err
	}
	s.logger.Info("Join: player %s joined room %s", pid, roomID)
	return events, nil
}

// Ready marks pid ready in its room.
func (s *Service) Ready(pid domain.PlayerID) ([]Event, error) {
	room, err := s.roomOf(pid)
	if err != nil {
		return nil, err
	}
	events, err := room.Ready(pid)
	if err != nil {
		s.logRejected("Ready", pid, err)
		return nil, err
	}
	if hasKind(events, EventGameStarted) {
		s.logger.Info("StartGame: room %s started", room.ID())
	}
	return events, nil
}

// Play plays cards for pid.
func (s *Service) Play(pid domain.PlayerID, cards []domain.Card) ([]Event, error) {
	room, err := s.roomOf(pid)
	if err != nil {
		return nil, err
	}
	events, err := room.PlayCards(pid, cards)
	if err != nil {
		s.logRejected("PlayCards", pid, err)
		return nil, err
	}
	if hasKind(events, EventGameOver) {
		s.logger.Info("PlayCards: player %s won in room %s", pid, room.ID())
	}
	return events, nil
}

// Pass passes pid's turn.
func (s *Service) Pass(pid domain.PlayerID) ([]Event, error) {
	room, err := s.roomOf(pid)
	if err != nil {
		return nil, err
	}
	events, err := room.PassTurn(pid)
	if err != nil {
		s.logRejected("PassTurn", pid, err)
		return nil, err
	}
	return events, nil
}

// Reset resets pid's room.
func (s *Service) Reset(pid domain.PlayerID) ([]Event, error) {
	room, err := s.roomOf(pid)
	if err != nil {
		return nil, err
	}
	events, err := room.Reset(pid)
	if err != nil {
		s.logRejected("Reset", pid, err)
		return nil, err
	}
	s.logger.Info("Reset: room %s reset by %s", room.ID(), pid)
	return events, nil
}

// Disconnect removes pid from whatever room it is in.
func (s *Service) Disconnect(pid domain.PlayerID) []Event {
	events := s.rooms.Leave(pid)
	if len(events) > 0 {
		s.logger.Info("Disconnect: player %s left room %s", pid, events[0].RoomID)
	}
	return events
}

// Tick runs expired turn deadlines in every room.
func (s *Service) Tick(now time.Time) []Event {
	var events []Event
	for _, room := range s.rooms.Rooms() {
		evs := room.Tick(now)
		if len(evs) > 0 {
			s.logger.Debug("Tick: turn timed out in room %s", room.ID())
			events = append(events, evs...)
		}
	}
	return events
}

// Members returns the audience of a room broadcast.
func (s *Service) Members(roomID string) []domain.PlayerID {
	return s.rooms.Members(roomID)
}

func (s *Service) roomOf(pid domain.PlayerID) (*Room, error) {
	room, ok := s.rooms.RoomOf(pid)
	if !ok {
		return nil, ErrNotInRoom
	}
	return room, nil
}

func (s *Service) logRejected(op string, pid domain.PlayerID, err error) {
	var gerr *GameError
	if errors.As(err, &gerr) {
		s.logger.Debug("%s: rejected for %s: %s", op, pid, gerr.Code)
		return
	}
	s.logger.Error("%s: failed for %s: %v", op, pid, err)
}

func hasKind(events []Event, kind EventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

package app

import (
	"sort"
	"strconv"
	"sync"

	"doudizhu/internal/domain"
)

// RoomFactory builds a room for the registry.
type RoomFactory func(id string, fixed bool) *Room

// Registry owns every room and remembers which room each player is in.
// Lock order is registry then room; rooms never call back into the registry.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	order      []string
	members    map[domain.PlayerID]string
	newRoom    RoomFactory
	allowAdhoc bool
}

// NewRegistry pre-creates the fixed pool "1".."count".
func NewRegistry(count int, allowAdhoc bool, factory RoomFactory) *Registry {
	reg := &Registry{
		rooms:      make(map[string]*Room, count),
		members:    make(map[domain.PlayerID]string),
		newRoom:    factory,
		allowAdhoc: allowAdhoc,
	}
	for i := 1; i <= count; i++ {
		id := strconv.Itoa(i)
		reg.rooms[id] = factory(id, true)
		reg.order = append(reg.order, id)
	}
	return reg
}

// Join places pid in roomID. Unknown ids create an ad hoc room when allowed.
func (g *Registry) Join(pid domain.PlayerID, roomID string) ([]Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.members[pid]; ok {
		return nil, ErrAlreadyInRoom
	}

	room, ok := g.rooms[roomID]
	created := false
	if !ok {
		if !g.allowAdhoc || roomID == "" {
			return nil, ErrInvalidRoom
		}
		room = g.newRoom(roomID, false)
		g.rooms[roomID] = room
		g.order = append(g.order, roomID)
		created = true
	}

	events, err := room.Join(pid)
	if err != nil {
		if created {
			g.evict(roomID)
		}
		return nil, err
	}
	g.members[pid] = roomID
	return events, nil
}

// Leave removes pid from its room and evicts an emptied ad hoc room.
func (g *Registry) Leave(pid domain.PlayerID) []Event {
	g.mu.Lock()
	defer g.mu.Unlock()

	roomID, ok := g.members[pid]
	if !ok {
		return nil
	}
	delete(g.members, pid)

	room, ok := g.rooms[roomID]
	if !ok {
		return nil
	}
	events, empty := room.Leave(pid)
	if empty && !room.Fixed() {
		g.evict(roomID)
	}
	return events
}

// RoomOf resolves the room pid is in.
func (g *Registry) RoomOf(pid domain.PlayerID) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	roomID, ok := g.members[pid]
	if !ok {
		return nil, false
	}
	room, ok := g.rooms[roomID]
	return room, ok
}

// Room looks a room up by id.
func (g *Registry) Room(roomID string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[roomID]
	return room, ok
}

// Rooms returns every room, fixed pool first in numeric order.
func (g *Registry) Rooms() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Room, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.rooms[id])
	}
	return out
}

// List summarises every room for the room_list event.
func (g *Registry) List() []RoomSummary {
	rooms := g.Rooms()
	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Summary())
	}
	return out
}

// Members returns the players in roomID, sorted for stable fan-out.
func (g *Registry) Members(roomID string) []domain.PlayerID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []domain.PlayerID
	for pid, id := range g.members {
		if id == roomID {
			out = append(out, pid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (g *Registry) evict(roomID string) {
	delete(g.rooms, roomID)
	for i, id := range g.order {
		if id == roomID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

package domain

// PlayerID is the stable identity of a player, independent of the connection
// that currently carries it.
type PlayerID string

// Phase represents the lifecycle stage of a room.
type Phase string

const (
	// PhaseWaiting is the idle state: players may join and nobody is ready yet.
	PhaseWaiting Phase = "waiting"
	// PhaseReady means at least one seated player has marked ready.
	PhaseReady Phase = "ready"
	// PhaseStarted is the active game state where cards are played.
	PhaseStarted Phase = "started"
	// PhaseGameOver is the state after a player emptied their hand.
	PhaseGameOver Phase = "game_over"
)

// Position is a seat at the table.
type Position string

const (
	PositionUnset  Position = ""
	PositionBottom Position = "bottom"
	PositionLeft   Position = "left"
	PositionTop    Position = "top"
	PositionRight  Position = "right"
)

// Positions lists seats in assignment order.
var Positions = []Position{PositionBottom, PositionLeft, PositionTop, PositionRight}

// PlayersPerRoom is the room capacity and the number of hands dealt.
const PlayersPerRoom = 4

// Player holds state for a participant in a room.
type Player struct {
	ID       PlayerID
	Position Position
	Hand     []Card
	Ready    bool
}

// RoomState holds the authoritative state of a single room.
type RoomState struct {
	ID    string
	Phase Phase

	Players     map[PlayerID]*Player
	PlayerOrder []PlayerID // turn order once started, leader first

	// Trick tracking
	CurrentPlayerID   PlayerID
	Table             *Combination // nil at trick start
	LastPlayerID      PlayerID     // set iff Table != nil
	ConsecutivePasses int

	ReadyCount int
	Bottom     []Card // undealt cards kept aside
}

// NewRoomState returns an empty waiting room.
func NewRoomState(id string) *RoomState {
	return &RoomState{
		ID:      id,
		Phase:   PhaseWaiting,
		Players: make(map[PlayerID]*Player),
	}
}

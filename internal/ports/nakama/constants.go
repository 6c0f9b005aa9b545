package nakama

import "doudizhu/internal/app"

const (
	// RpcRoomList lists every room match with its occupancy.
	RpcRoomList = "room_list"
	// RpcFindRoom resolves a room id, or any open room, to a match id.
	RpcFindRoom = "find_room"

	// MatchNameRoom is the authoritative match handler name registered with Nakama.
	MatchNameRoom = "doudizhu_room"

	// EnvPrefix prefixes runtime environment overrides, e.g. doudizhu_room_count.
	EnvPrefix = "doudizhu_"

	// ConfigPath is the JSON configuration loaded at module start.
	ConfigPath = "data/server_config.json"

	labelGame = "doudizhu"
)

// Match label keys.
const (
	MatchLabelKey_Game      = "game"
	MatchLabelKey_RoomID    = "room_id"
	MatchLabelKey_Players   = "players"
	MatchLabelKey_State     = "state"
	MatchLabelKey_OpenSeats = "open"
)

// Op codes for client messages and server events.
const (
	// Client -> Server. Joining is the Nakama match join itself.
	OpPlayerReady  int64 = 1
	OpPlayCards    int64 = 2
	OpPassTurn     int64 = 3
	OpRequestReset int64 = 4

	// Server -> Client events
	OpJoinedRoom        int64 = 101
	OpSeatAssigned      int64 = 102
	OpPlayerListUpdated int64 = 103
	OpPlayerReadyStatus int64 = 104
	OpGameStarted       int64 = 105
	OpYourHand          int64 = 106 // send privately
	OpCardsPlayed       int64 = 107
	OpNextTurn          int64 = 108
	OpPlayerPassed      int64 = 109
	OpRoundEnded        int64 = 110
	OpGameOver          int64 = 111
	OpPlayerLeft        int64 = 112
	OpGameReset         int64 = 113
	OpSpectating        int64 = 114
	OpError             int64 = 115
)

var eventOpCodes = map[app.EventKind]int64{
	app.EventJoinedRoom:        OpJoinedRoom,
	app.EventSeatAssigned:      OpSeatAssigned,
	app.EventPlayerListUpdated: OpPlayerListUpdated,
	app.EventPlayerReady:       OpPlayerReadyStatus,
	app.EventGameStarted:       OpGameStarted,
	app.EventYourHand:          OpYourHand,
	app.EventCardsPlayed:       OpCardsPlayed,
	app.EventNextTurn:          OpNextTurn,
	app.EventPlayerPassed:      OpPlayerPassed,
	app.EventRoundEnded:        OpRoundEnded,
	app.EventGameOver:          OpGameOver,
	app.EventPlayerLeft:        OpPlayerLeft,
	app.EventGameReset:         OpGameReset,
	app.EventSpectating:        OpSpectating,
	app.EventError:             OpError,
}

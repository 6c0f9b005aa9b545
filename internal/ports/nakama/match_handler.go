package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"doudizhu/internal/app"
	"doudizhu/internal/bot"
	"doudizhu/internal/config"
	"doudizhu/internal/domain"
)

// MatchState holds the authoritative runtime state for one room match.
type MatchState struct {
	RoomID    string                      `json:"room_id"`
	Fixed     bool                        `json:"fixed"`
	Tick      int64                       `json:"tick"`
	Label     string                      `json:"label"`
	Presences map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	Room      *app.Room                   `json:"-"`
}

type matchHandler struct {
	cfg config.GameConfig
	now func() time.Time
}

func newMatchHandler(cfg config.GameConfig) *matchHandler {
	return &matchHandler{cfg: cfg, now: time.Now}
}

// roomOptions builds the room settings from the module configuration.
func (mh *matchHandler) roomOptions(fixed bool, logger runtime.Logger) app.RoomOptions {
	brain, err := bot.NewBrain(mh.cfg.TimeoutPolicy)
	if err != nil {
		logger.Warn("MatchInit: %v, using autoplay", err)
	}
	return app.RoomOptions{
		Fixed:              fixed,
		Jokers:             mh.cfg.Jokers,
		TurnTimeout:        mh.cfg.TurnTimeout(),
		EndGameOnDeparture: mh.cfg.EndGameOnDeparture,
		Brain:              brain,
		Now:                mh.now,
	}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	roomID, _ := params[MatchLabelKey_RoomID].(string)
	if roomID == "" {
		roomID, _ = ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	}
	fixed, _ := params["fixed"].(bool)
	logger.Debug("MatchInit: Initializing room %s (fixed=%t).", roomID, fixed)

	state := &MatchState{
		RoomID:    roomID,
		Fixed:     fixed,
		Tick:      mh.now().Unix(),
		Presences: make(map[string]runtime.Presence),
		Room:      app.NewRoom(roomID, mh.roomOptions(fixed, logger)),
	}

	label, err := matchLabel(state.Room.Snapshot())
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	state.Label = label

	tickRate := 1
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if _, ok := matchState.Presences[presence.GetUserId()]; ok {
		return state, false, app.ErrAlreadyInRoom.Message
	}
	if matchState.Room.Occupancy() >= domain.PlayersPerRoom {
		return state, false, app.ErrRoomFull.Message
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		pid := domain.PlayerID(p.GetUserId())
		matchState.Presences[p.GetUserId()] = p

		events, err := matchState.Room.Join(pid)
		if err != nil {
			logger.Warn("MatchJoin: User %s could not join room %s: %v", pid, matchState.RoomID, err)
			mh.broadcastEvents(matchState, dispatcher, logger, []app.Event{app.ErrorEvent(pid, err)})
			delete(matchState.Presences, p.GetUserId())
			if err := dispatcher.MatchKick([]runtime.Presence{p}); err != nil {
				logger.Error("MatchJoin: Failed to kick %s: %v", pid, err)
			}
			continue
		}
		logger.Debug("MatchJoin: User %s joined room %s.", pid, matchState.RoomID)
		mh.broadcastEvents(matchState, dispatcher, logger, events)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	empty := false
	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		var events []app.Event
		events, empty = matchState.Room.Leave(domain.PlayerID(p.GetUserId()))
		logger.Debug("MatchLeave: User %s left room %s.", p.GetUserId(), matchState.RoomID)
		mh.broadcastEvents(matchState, dispatcher, logger, events)
	}

	if empty && !matchState.Fixed {
		logger.Info("MatchLeave: Terminating empty room %s.", matchState.RoomID)
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		pid := domain.PlayerID(msg.GetUserId())
		var events []app.Event
		var err error

		switch msg.GetOpCode() {
		case OpPlayerReady:
			events, err = matchState.Room.Ready(pid)
		case OpPlayCards:
			var cards []domain.Card
			if cards, err = decodeCards(msg.GetData()); err == nil {
				events, err = matchState.Room.PlayCards(pid, cards)
			}
		case OpPassTurn:
			events, err = matchState.Room.PassTurn(pid)
		case OpRequestReset:
			events, err = matchState.Room.Reset(pid)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
			continue
		}

		if err != nil {
			logger.Debug("MatchLoop: op %d from %s rejected: %v", msg.GetOpCode(), pid, err)
			events = []app.Event{app.ErrorEvent(pid, err)}
		}
		mh.broadcastEvents(matchState, dispatcher, logger, events)
	}

	if events := matchState.Room.Tick(mh.now()); len(events) > 0 {
		logger.Debug("MatchLoop: turn timed out in room %s", matchState.RoomID)
		mh.broadcastEvents(matchState, dispatcher, logger, events)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// decodeCards accepts a bare card array or {"cards": [...]}.
func decodeCards(data []byte) ([]domain.Card, error) {
	var cards []domain.Card
	if err := json.Unmarshal(data, &cards); err == nil {
		return cards, nil
	}
	var obj struct {
		Cards []domain.Card `json:"cards"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, ErrMalformedPayload
	}
	return obj.Cards, nil
}

// ErrMalformedPayload rejects match data that does not decode.
var ErrMalformedPayload = &app.GameError{Code: "BadRequest", Message: "malformed request"}

// broadcastEvents sends events to their recipients, or to every presence in
// the match when an event has none.
func (mh *matchHandler) broadcastEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, ok := eventOpCodes[ev.Kind]
		if !ok {
			logger.Warn("Unknown event kind: %v", ev.Kind)
			continue
		}

		bytes, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if ev.Unicast() {
			for _, uid := range ev.Recipients {
				if p, ok := state.Presences[string(uid)]; ok {
					recipients = append(recipients, p)
				}
			}
			// Intended recipients that are gone must not turn into a broadcast.
			if len(recipients) == 0 {
				continue
			}
		}

		if err := dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true); err != nil {
			logger.Error("Failed to broadcast %v: %v", ev.Kind, err)
		}
	}
}

// matchLabel renders the searchable label of a room.
func matchLabel(snap app.RoomSnapshot) (string, error) {
	players := len(snap.Players)
	label, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKey_Game:      labelGame,
		MatchLabelKey_RoomID:    snap.ID,
		MatchLabelKey_Players:   players,
		MatchLabelKey_State:     string(snap.Phase),
		MatchLabelKey_OpenSeats: domain.PlayersPerRoom - players,
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

// updateLabel pushes the label when it changed since the last push.
func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state.Room.Snapshot())
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if label == state.Label {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.Label = label
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d seconds grace", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

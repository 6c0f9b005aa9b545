package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"doudizhu/internal/config"
)

const (
	codeInvalidArgument = 3
	codeNotFound        = 5
	roomListLimit       = 100
)

var (
	errBadPayload  = runtime.NewError("malformed request", codeInvalidArgument)
	errInvalidRoom = runtime.NewError("invalid room", codeNotFound)
	errNoOpenRoom  = runtime.NewError("no open room", codeNotFound)
)

// RoomListing is one entry of the room_list RPC.
type RoomListing struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	MatchID     string `json:"matchId"`
}

// FindRoomRequest is the optional find_room payload.
type FindRoomRequest struct {
	RoomID string `json:"roomId"`
}

// FindRoomResponse is returned to clients by find_room.
type FindRoomResponse struct {
	MatchID string `json:"matchId"`
	RoomID  string `json:"roomId"`
	IsNew   bool   `json:"isNew"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, cfg config.GameConfig) error {
	if err := initializer.RegisterRpc(RpcRoomList, rpcRoomList); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcFindRoom, newFindRoomRPC(cfg))
}

type labelFields struct {
	RoomID  string `json:"room_id"`
	Players int    `json:"players"`
}

func listRooms(ctx context.Context, nk runtime.NakamaModule, query string, limit int) ([]RoomListing, error) {
	matches, err := nk.MatchList(ctx, limit, true, "", nil, nil, query)
	if err != nil {
		return nil, err
	}
	return toListings(matches), nil
}

// toListings decodes match labels, ordering numeric room ids numerically.
func toListings(matches []*api.Match) []RoomListing {
	rooms := make([]RoomListing, 0, len(matches))
	for _, m := range matches {
		var label labelFields
		if m.GetLabel() == nil || json.Unmarshal([]byte(m.GetLabel().GetValue()), &label) != nil {
			continue
		}
		rooms = append(rooms, RoomListing{ID: label.RoomID, PlayerCount: label.Players, MatchID: m.GetMatchId()})
	}
	sort.Slice(rooms, func(i, j int) bool {
		a, errA := strconv.Atoi(rooms[i].ID)
		b, errB := strconv.Atoi(rooms[j].ID)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms
}

func rpcRoomList(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	rooms, err := listRooms(ctx, nk, fmt.Sprintf("+label.%s:%s", MatchLabelKey_Game, labelGame), roomListLimit)
	if err != nil {
		logger.Error("RpcRoomList [User:%s]: Failed to list matches: %v", userId, err)
		return "", err
	}
	b, err := json.Marshal(rooms)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// newFindRoomRPC resolves a requested room id to its match, or picks any room
// with an open seat. Unknown ids create an ad hoc room when allowed.
func newFindRoomRPC(cfg config.GameConfig) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

		var req FindRoomRequest
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &req); err != nil {
				return "", errBadPayload
			}
		}

		query := fmt.Sprintf("+label.%s:%s +label.%s:>=1", MatchLabelKey_Game, labelGame, MatchLabelKey_OpenSeats)
		if req.RoomID != "" {
			query = fmt.Sprintf("+label.%s:%s +label.%s:%q", MatchLabelKey_Game, labelGame, MatchLabelKey_RoomID, req.RoomID)
		}
		rooms, err := listRooms(ctx, nk, query, 1)
		if err != nil {
			logger.Error("RpcFindRoom [User:%s]: Failed to list matches: %v", userId, err)
			return "", err
		}

		resp := FindRoomResponse{}
		switch {
		case len(rooms) > 0:
			resp.MatchID, resp.RoomID = rooms[0].MatchID, rooms[0].ID
			logger.Info("RpcFindRoom [User:%s]: Found room %s", userId, resp.RoomID)
		case !cfg.AllowAdhocRooms && req.RoomID != "":
			return "", errInvalidRoom
		case !cfg.AllowAdhocRooms:
			return "", errNoOpenRoom
		default:
			resp.RoomID = req.RoomID
			if resp.RoomID == "" {
				resp.RoomID = uuid.NewString()
			}
			resp.MatchID, err = nk.MatchCreate(ctx, MatchNameRoom, map[string]interface{}{MatchLabelKey_RoomID: resp.RoomID})
			if err != nil {
				logger.Error("RpcFindRoom [User:%s]: Failed to create match: %v", userId, err)
				return "", err
			}
			resp.IsNew = true
			logger.Info("RpcFindRoom [User:%s]: Created room %s", userId, resp.RoomID)
		}

		b, err := json.Marshal(resp)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

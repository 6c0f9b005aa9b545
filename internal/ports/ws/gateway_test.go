package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doudizhu/internal/app"
	"doudizhu/internal/domain"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

type recordingMirror struct {
	events []app.Event
}

func (m *recordingMirror) Publish(ev app.Event) error {
	m.events = append(m.events, ev)
	return nil
}

func newService() *app.Service {
	reg := app.NewRegistry(3, false, func(id string, fixed bool) *app.Room {
		return app.NewRoom(id, app.RoomOptions{Fixed: fixed, Jokers: true, EndGameOnDeparture: true})
	})
	return app.NewService(reg, noopLogger{})
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func next(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func session(t *testing.T, conn *websocket.Conn) app.SessionPayload {
	t.Helper()
	f := next(t, conn)
	require.Equal(t, "session", f.Event)
	var s app.SessionPayload
	require.NoError(t, json.Unmarshal(f.Data, &s))
	require.Equal(t, "room_list", next(t, conn).Event)
	return s
}

func TestGatewayGreetsWithSessionAndRoomList(t *testing.T) {
	svc := newService()
	gw := NewGateway(svc, app.NewTokenService("s3cret", "doudizhu", time.Hour), nil, noopLogger{})
	srv := httptest.NewServer(gw)
	defer srv.Close()

	conn := dial(t, srv, "")
	f := next(t, conn)
	require.Equal(t, "session", f.Event)
	var s app.SessionPayload
	require.NoError(t, json.Unmarshal(f.Data, &s))
	assert.NotEmpty(t, s.PlayerID)
	assert.NotEmpty(t, s.Token)

	f = next(t, conn)
	require.Equal(t, "room_list", f.Event)
	var rooms []app.RoomSummary
	require.NoError(t, json.Unmarshal(f.Data, &rooms))
	assert.Equal(t, []app.RoomSummary{{ID: "1"}, {ID: "2"}, {ID: "3"}}, rooms)
}

func TestGatewayJoinAndErrors(t *testing.T) {
	svc := newService()
	gw := NewGateway(svc, app.NewTokenService("s3cret", "doudizhu", time.Hour), nil, noopLogger{})
	srv := httptest.NewServer(gw)
	defer srv.Close()

	conn := dial(t, srv, "")
	session(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "join_room", "data": "1"}))
	assert.Equal(t, "seat_assigned", next(t, conn).Event)
	assert.Equal(t, "player_list_updated", next(t, conn).Event)
	f := next(t, conn)
	assert.Equal(t, "joined_room", f.Event)
	assert.JSONEq(t, `{"roomId":"1"}`, string(f.Data))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	f = next(t, conn)
	assert.Equal(t, "error", f.Event)
	assert.JSONEq(t, `"malformed request"`, string(f.Data))

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "dance"}))
	f = next(t, conn)
	assert.Equal(t, "error", f.Event)
	assert.JSONEq(t, `"unknown event"`, string(f.Data))

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "pass_turn"}))
	f = next(t, conn)
	assert.Equal(t, "error", f.Event)
	assert.JSONEq(t, `"`+app.ErrGameNotStarted.Message+`"`, string(f.Data))
}

func TestGatewayDisconnectLeavesRoom(t *testing.T) {
	svc := newService()
	gw := NewGateway(svc, nil, nil, noopLogger{})
	srv := httptest.NewServer(gw)
	defer srv.Close()

	conn := dial(t, srv, "")
	require.Equal(t, "room_list", next(t, conn).Event)
	require.NoError(t, conn.WriteJSON(map[string]any{"event": "join_room", "data": map[string]any{"roomId": 2}}))
	require.Equal(t, "seat_assigned", next(t, conn).Event)
	require.Len(t, svc.Members("2"), 1)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return len(svc.Members("2")) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestGatewayReconnectKeepsSeat(t *testing.T) {
	svc := newService()
	gw := NewGateway(svc, app.NewTokenService("s3cret", "doudizhu", time.Hour), nil, noopLogger{})
	srv := httptest.NewServer(gw)
	defer srv.Close()

	first := dial(t, srv, "")
	s := session(t, first)
	require.NoError(t, first.WriteJSON(map[string]any{"event": "join_room", "data": "3"}))
	require.Equal(t, "seat_assigned", next(t, first).Event)

	second := dial(t, srv, s.Token)
	resumed := session(t, second)
	assert.Equal(t, s.PlayerID, resumed.PlayerID)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []domain.PlayerID{s.PlayerID}, svc.Members("3"))
	assert.True(t, gw.Connected(s.PlayerID))

	require.NoError(t, second.WriteJSON(map[string]any{"event": "player_ready"}))
	assert.Equal(t, "player_ready_status", next(t, second).Event)
}

func TestHandleRoomIDForms(t *testing.T) {
	svc := newService()
	gw := NewGateway(svc, nil, nil, noopLogger{})

	cases := []struct {
		pid  domain.PlayerID
		data string
		room string
	}{
		{"a", `"1"`, "1"},
		{"b", `2`, "2"},
		{"c", `{"roomId":"3"}`, "3"},
		{"d", `{"roomId":1}`, "1"},
	}
	for _, tc := range cases {
		events := gw.Handle(tc.pid, Envelope{Event: InJoinRoom, Data: json.RawMessage(tc.data)})
		require.NotEmpty(t, events, tc.data)
		assert.NotEqual(t, app.EventError, events[0].Kind, tc.data)
		assert.Contains(t, svc.Members(tc.room), tc.pid, tc.data)
	}

	for _, data := range []string{``, `true`, `{"roomId":{}}`, `[1]`} {
		events := gw.Handle("z", Envelope{Event: InJoinRoom, Data: json.RawMessage(data)})
		require.Len(t, events, 1, data)
		assert.Equal(t, app.EventError, events[0].Kind, data)
		assert.Equal(t, ErrBadRequest.Message, events[0].Payload, data)
	}
}

func TestHandlePlayCardsDecoding(t *testing.T) {
	svc := newService()
	gw := NewGateway(svc, nil, nil, noopLogger{})
	gw.Handle("a", Envelope{Event: InJoinRoom, Data: json.RawMessage(`"1"`)})

	events := gw.Handle("a", Envelope{Event: InPlayCards, Data: json.RawMessage(`[{"rank":"ZZ","suit":"H"}]`)})
	assert.Equal(t, ErrBadRequest.Message, events[0].Payload)

	events = gw.Handle("a", Envelope{Event: InPlayCards, Data: json.RawMessage(`{"cards":[{"rank":"7","suit":"S"}]}`)})
	assert.Equal(t, app.ErrGameNotStarted.Message, events[0].Payload)
}

func TestPublishMirrorsEvents(t *testing.T) {
	mirror := &recordingMirror{}
	gw := NewGateway(newService(), nil, mirror, noopLogger{})

	gw.Publish([]app.Event{
		{Kind: app.EventRoundEnded, RoomID: "1"},
		{Kind: app.EventError, Payload: "x", Recipients: []domain.PlayerID{"ghost"}},
	})
	require.Len(t, mirror.events, 2)
	assert.Equal(t, app.EventRoundEnded, mirror.events[0].Kind)
}

func TestGatewayFullGameStart(t *testing.T) {
	svc := newService()
	gw := NewGateway(svc, nil, nil, noopLogger{})
	srv := httptest.NewServer(gw)
	defer srv.Close()

	conns := make([]*websocket.Conn, 4)
	for i := range conns {
		conns[i] = dial(t, srv, "")
		require.Equal(t, "room_list", next(t, conns[i]).Event)
		require.NoError(t, conns[i].WriteJSON(map[string]any{"event": "join_room", "data": "1"}))
	}
	require.Eventually(t, func() bool { return len(svc.Members("1")) == 4 }, 2*time.Second, 10*time.Millisecond)

	for _, c := range conns {
		require.NoError(t, c.WriteJSON(map[string]any{"event": "player_ready"}))
	}

	for i, c := range conns {
		var hand []domain.Card
		for {
			f := next(t, c)
			if f.Event == "your_hand" {
				require.NoError(t, json.Unmarshal(f.Data, &hand))
			}
			if f.Event == "game_started" {
				break
			}
		}
		assert.Len(t, hand, 13, "client %d", i)
	}
}

// gatedMirror holds the first event it sees until release is closed.
type gatedMirror struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
	events  []app.Event
}

func (m *gatedMirror) Publish(ev app.Event) error {
	m.once.Do(func() {
		close(m.entered)
		<-m.release
	})
	m.events = append(m.events, ev)
	return nil
}

func TestApplyKeepsTransitionsInOrder(t *testing.T) {
	mirror := &gatedMirror{entered: make(chan struct{}), release: make(chan struct{})}
	gw := NewGateway(newService(), nil, mirror, noopLogger{})

	started := make(chan string, 2)
	go gw.apply(func() []app.Event {
		started <- "play"
		return []app.Event{
			{Kind: app.EventCardsPlayed, RoomID: "1"},
			{Kind: app.EventNextTurn, RoomID: "1"},
		}
	})
	<-mirror.entered

	done := make(chan struct{})
	go func() {
		defer close(done)
		gw.apply(func() []app.Event {
			started <- "timeout"
			return []app.Event{{Kind: app.EventPlayerPassed, RoomID: "1"}}
		})
	}()

	select {
	case <-done:
		t.Fatal("second transition ran while the first was still publishing")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Len(t, started, 1)

	close(mirror.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second transition never ran")
	}

	var got []app.EventKind
	for _, ev := range mirror.events {
		got = append(got, ev.Kind)
	}
	assert.Equal(t, []app.EventKind{app.EventCardsPlayed, app.EventNextTurn, app.EventPlayerPassed}, got)
	assert.Equal(t, "play", <-started)
	assert.Equal(t, "timeout", <-started)
}

// Package ws serves the game over websockets using a {"event","data"} frame.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"doudizhu/internal/app"
	"doudizhu/internal/domain"
	"doudizhu/internal/ports"
)

const (
	sendBuffer   = 64
	readTimeout  = 120 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Sessions issues and resolves reconnect tokens.
type Sessions interface {
	Issue(pid domain.PlayerID) (string, error)
	Resolve(token string) (domain.PlayerID, error)
}

type client struct {
	pid    domain.PlayerID
	conn   *websocket.Conn
	send   chan []byte
	closed bool
}

// Gateway owns every live connection and routes frames to the service.
type Gateway struct {
	svc      *app.Service
	sessions Sessions
	mirror   ports.EventMirror
	logger   app.Logger
	upgrader websocket.Upgrader

	// order is held across a transition and the publishing of its events.
	order sync.Mutex

	mu      sync.RWMutex
	clients map[domain.PlayerID]*client
}

// NewGateway wires a gateway. sessions and mirror may be nil.
func NewGateway(svc *app.Service, sessions Sessions, mirror ports.EventMirror, logger app.Logger) *Gateway {
	return &Gateway{
		svc:      svc,
		sessions: sessions,
		mirror:   mirror,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[domain.PlayerID]*client),
	}
}

// ServeHTTP upgrades the request and runs the connection until it closes.
// A valid ?token= resumes the identity it was issued for.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("ServeHTTP: upgrade failed: %v", err)
		return
	}

	pid := g.identify(r.URL.Query().Get("token"))
	c := &client{pid: pid, conn: conn, send: make(chan []byte, sendBuffer)}
	g.register(c)

	g.apply(func() []app.Event {
		var greeting []app.Event
		if g.sessions != nil {
			token, err := g.sessions.Issue(pid)
			if err != nil {
				g.logger.Error("ServeHTTP: issue token for %s: %v", pid, err)
			} else {
				greeting = append(greeting, app.Event{
					Kind:       app.EventSession,
					Payload:    app.SessionPayload{PlayerID: pid, Token: token},
					Recipients: []domain.PlayerID{pid},
				})
			}
		}
		return append(greeting, g.svc.RoomList(pid))
	})

	go g.writePump(c)
	g.readPump(c)
}

func (g *Gateway) identify(token string) domain.PlayerID {
	if token != "" && g.sessions != nil {
		pid, err := g.sessions.Resolve(token)
		if err == nil {
			return pid
		}
		g.logger.Debug("identify: %v", err)
	}
	return app.NewPlayerID()
}

// register makes c the live connection for its player, closing any older one.
func (g *Gateway) register(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if old, ok := g.clients[c.pid]; ok {
		g.closeLocked(old)
		g.logger.Info("register: player %s reconnected", c.pid)
	}
	g.clients[c.pid] = c
}

// unregister drops c; only the live connection of a player triggers a disconnect.
func (g *Gateway) unregister(c *client) {
	g.mu.Lock()
	current := g.clients[c.pid] == c
	if current {
		delete(g.clients, c.pid)
	}
	g.closeLocked(c)
	g.mu.Unlock()

	if current {
		g.apply(func() []app.Event { return g.svc.Disconnect(c.pid) })
	}
}

func (g *Gateway) closeLocked(c *client) {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Connected reports whether pid has a live connection.
func (g *Gateway) Connected(pid domain.PlayerID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.clients[pid]
	return ok
}

// Handle applies one inbound frame for pid and returns the events to deliver.
// Rejections become a unicast error event.
func (g *Gateway) Handle(pid domain.PlayerID, env Envelope) []app.Event {
	events, err := g.dispatch(pid, env)
	if err != nil {
		return []app.Event{app.ErrorEvent(pid, err)}
	}
	return events
}

func (g *Gateway) dispatch(pid domain.PlayerID, env Envelope) ([]app.Event, error) {
	switch env.Event {
	case InJoinRoom:
		roomID, err := roomIDFrom(env.Data)
		if err != nil {
			return nil, err
		}
		return g.svc.Join(pid, roomID)
	case InPlayerReady:
		return g.svc.Ready(pid)
	case InPlayCards:
		cards, err := cardsFrom(env.Data)
		if err != nil {
			return nil, err
		}
		return g.svc.Play(pid, cards)
	case InPassTurn:
		return g.svc.Pass(pid)
	case InRequestReset:
		return g.svc.Reset(pid)
	default:
		return nil, ErrUnknownEvent
	}
}

// apply runs transition and publishes its events under order. No other
// transition starts until those events are queued for every recipient.
func (g *Gateway) apply(transition func() []app.Event) {
	g.order.Lock()
	defer g.order.Unlock()
	g.Publish(transition())
}

// Publish delivers events to their recipients, or to the room audience when
// an event has none, and copies them to the mirror.
func (g *Gateway) Publish(events []app.Event) {
	for _, ev := range events {
		if g.mirror != nil {
			if err := g.mirror.Publish(ev); err != nil {
				g.logger.Warn("Publish: mirror %s: %v", ev.Kind, err)
			}
		}

		payload, err := encode(ev)
		if err != nil {
			g.logger.Error("Publish: encode %s: %v", ev.Kind, err)
			continue
		}
		recipients := ev.Recipients
		if !ev.Unicast() {
			recipients = g.svc.Members(ev.RoomID)
		}
		g.deliver(recipients, payload)
	}
}

func (g *Gateway) deliver(recipients []domain.PlayerID, payload []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, pid := range recipients {
		c, ok := g.clients[pid]
		if !ok || c.closed {
			continue
		}
		select {
		case c.send <- payload:
		default:
			g.logger.Warn("deliver: send buffer full for %s, dropping frame", pid)
		}
	}
}

// Run fires expired turn deadlines every interval until ctx is done.
func (g *Gateway) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			g.apply(func() []app.Event { return g.svc.Tick(now) })
		}
	}
}

func (g *Gateway) readPump(c *client) {
	defer func() {
		g.unregister(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Debug("readPump: %s: %v", c.pid, err)
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			g.apply(func() []app.Event { return []app.Event{app.ErrorEvent(c.pid, ErrBadRequest)} })
			continue
		}
		g.apply(func() []app.Event { return g.Handle(c.pid, env) })
	}
}

func (g *Gateway) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

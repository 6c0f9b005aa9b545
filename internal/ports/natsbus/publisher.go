// Package natsbus mirrors room events onto NATS subjects.
package natsbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"doudizhu/internal/app"
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Connect dials the broker with the reconnect policy the server uses.
func Connect(url, name string) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return nc, nil
}

// Publisher writes events to <prefix>.rooms.<roomId>.<event>.
type Publisher struct {
	conn   Conn
	prefix string
}

func NewPublisher(conn Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = "doudizhu"
	}
	return &Publisher{conn: conn, prefix: prefix}
}

type message struct {
	Event      app.EventKind `json:"event"`
	RoomID     string        `json:"roomId"`
	Data       any           `json:"data"`
	Recipients []string      `json:"recipients,omitempty"`
}

// Subject returns the subject an event is published on.
func (p *Publisher) Subject(ev app.Event) string {
	return p.prefix + ".rooms." + ev.RoomID + "." + string(ev.Kind)
}

// Publish implements ports.EventMirror. Events outside a room are skipped.
func (p *Publisher) Publish(ev app.Event) error {
	if ev.RoomID == "" {
		return nil
	}
	msg := message{Event: ev.Kind, RoomID: ev.RoomID, Data: ev.Payload}
	for _, pid := range ev.Recipients {
		msg.Recipients = append(msg.Recipients, string(pid))
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Kind, err)
	}
	if err := p.conn.Publish(p.Subject(ev), data); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Kind, err)
	}
	return nil
}

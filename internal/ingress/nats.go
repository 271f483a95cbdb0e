// Package ingress consumes backend stream events from NATS and funnels them
// into the room registry. Subjects follow chatkit.room.<roomID>.<stream>;
// payloads are the same JSON frames the websocket ingest accepts. NATS
// delivers per-subscription messages on one goroutine and the registry
// serializes per room, which together give the engine the sequential apply
// stream it requires.
package ingress

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/pusher/chatkit-mobile-coding-challenge/internal/handlers"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/validation"
	"github.com/pusher/chatkit-mobile-coding-challenge/internal/wire"
)

const subjectPrefix = "chatkit.room."

type Consumer struct {
	conn     *nats.Conn
	registry *handlers.RoomRegistry
	sub      *nats.Subscription
}

func NewConsumer(url string, registry *handlers.RoomRegistry) (*Consumer, error) {
	conn, err := nats.Connect(url,
		nats.Name("chatkit-room-ingress"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Consumer{conn: conn, registry: registry}, nil
}

// Start subscribes to every room subject and begins applying events.
func (c *Consumer) Start() error {
	sub, err := c.conn.Subscribe(subjectPrefix+">", c.handle)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	c.sub = sub
	log.Printf("NATS ingress subscribed to %s>", subjectPrefix)
	return nil
}

func (c *Consumer) handle(msg *nats.Msg) {
	roomID, ok := roomFromSubject(msg.Subject)
	if !ok || !validation.ValidateRoomID(roomID) {
		log.Printf("Dropping frame on unroutable subject %s", msg.Subject)
		return
	}

	var frame wire.Frame
	if err := json.Unmarshal(msg.Data, &frame); err != nil {
		log.Printf("Dropping invalid frame on %s: %v", msg.Subject, err)
		return
	}
	ev, err := wire.DeserializeFrame(&frame)
	if err != nil {
		log.Printf("Dropping undecodable frame on %s: %v", msg.Subject, err)
		return
	}

	if _, err := c.registry.Apply(roomID, ev); err != nil {
		log.Printf("Rejected %s frame for room %s: %v", frame.Type, roomID, err)
	}
}

// Close drains the subscription and closes the connection.
func (c *Consumer) Close() {
	if c.sub != nil {
		if err := c.sub.Drain(); err != nil {
			log.Printf("Failed to drain NATS subscription: %v", err)
		}
	}
	c.conn.Close()
}

// roomFromSubject extracts the room id from chatkit.room.<roomID>.<stream>.
func roomFromSubject(subject string) (string, bool) {
	rest, found := strings.CutPrefix(subject, subjectPrefix)
	if !found {
		return "", false
	}
	parts := strings.SplitN(rest, ".", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", false
	}
	return parts[0], true
}

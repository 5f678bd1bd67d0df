package bridge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/coveytv/go/internal/events"
	"github.com/mcdev12/coveytv/go/internal/town"
	"github.com/rs/zerolog/log"
)

// ObserverID is the id the bridge registers under on every town
const ObserverID = "nats-bridge"

// Conn is the part of *nats.Conn the publisher needs
type Conn interface {
	Publish(subject string, data []byte) error
}

// Message is the JSON body published for each town event
type Message struct {
	EventID   string           `json:"event_id"`
	EventType events.EventType `json:"event_type"`
	TownID    string           `json:"town_id"`
	Timestamp time.Time        `json:"timestamp"`
	Payload   interface{}      `json:"payload,omitempty"`
}

// Publisher mirrors one town's events to NATS subjects of the form
// <prefix>.<townID>.<eventType>
type Publisher struct {
	conn   Conn
	prefix string
	townID string
	stats  *Stats
}

// NewPublisher creates a publisher for townID
func NewPublisher(conn Conn, prefix, townID string) *Publisher {
	return &Publisher{
		conn:   conn,
		prefix: prefix,
		townID: townID,
	}
}

// Subject returns the subject an event type is published on
func (p *Publisher) Subject(eventType events.EventType) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, p.townID, eventType)
}

// Notify implements events.Sink. Core NATS publishes are buffered so this
// doesn't block on the network.
func (p *Publisher) Notify(event events.Event) {
	msg := Message{
		EventID:   uuid.NewString(),
		EventType: event.Type,
		TownID:    p.townID,
		Timestamp: time.Now().UTC(),
	}
	if event.Player != nil {
		msg.Payload = event.Player
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("town_id", p.townID).Msg("failed to marshal bridge event")
		return
	}

	subject := p.Subject(event.Type)
	err = p.conn.Publish(subject, data)
	p.stats.record(msg.Timestamp, err)
	if err != nil {
		log.Error().
			Err(err).
			Str("town_id", p.townID).
			Str("subject", subject).
			Msg("failed to publish town event")
		return
	}

	log.Debug().
		Str("subject", subject).
		Int("size", len(data)).
		Msg("published town event")
}

// Attach returns a store hook that registers a publisher on every new town.
// stats may be nil.
func Attach(conn Conn, prefix string, stats *Stats) func(*town.Controller) {
	return func(controller *town.Controller) {
		p := NewPublisher(conn, prefix, controller.TownID())
		p.stats = stats
		controller.AddObserver(ObserverID, p)
	}
}

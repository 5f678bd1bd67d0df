package gateway

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/coveytv/go/internal/events"
	"github.com/mcdev12/coveytv/go/internal/models"
)

// Envelope is the outbound structure for every event
type Envelope struct {
	ID        string           `json:"id" msgpack:"id"`
	TownID    string           `json:"town_id" msgpack:"town_id"`
	Type      events.EventType `json:"type" msgpack:"type"`
	Timestamp time.Time        `json:"timestamp" msgpack:"timestamp"`
	Data      interface{}      `json:"data,omitempty" msgpack:"data,omitempty"`
}

// IntentType is what a client asks the server to do
type IntentType string

const (
	IntentJoinTVArea   IntentType = "join-tv-area"
	IntentLeaveTVArea  IntentType = "leave-tv-area"
	IntentPause        IntentType = "pause"
	IntentPlay         IntentType = "play"
	IntentSync         IntentType = "sync"
	IntentVote         IntentType = "vote"
	IntentProposeVideo IntentType = "propose-video"
	IntentAdvance      IntentType = "advance"
	IntentMove         IntentType = "move"
)

// ClientMessage is an inbound intent. URL is set for vote and
// propose-video, Location for move.
type ClientMessage struct {
	Type     IntentType       `json:"type" msgpack:"type"`
	URL      string           `json:"url,omitempty" msgpack:"url,omitempty"`
	Location *models.Location `json:"location,omitempty" msgpack:"location,omitempty"`
}

// NewEnvelope wraps event with its payload for townID
func NewEnvelope(townID string, event events.Event) *Envelope {
	envelope := &Envelope{
		ID:        uuid.NewString(),
		TownID:    townID,
		Type:      event.Type,
		Timestamp: time.Now().UTC(),
	}

	switch {
	case event.Playback != nil:
		envelope.Data = event.Playback
	case event.Videos != nil:
		envelope.Data = event.Videos
	case event.Player != nil:
		envelope.Data = event.Player
	}
	return envelope
}

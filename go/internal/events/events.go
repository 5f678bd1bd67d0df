package events

import (
	"github.com/mcdev12/coveytv/go/internal/models"
)

// Event types shared between the town, the TV area and the gateway

// EventType represents the kind of notification delivered to a sink
type EventType string

const (
	// Town-wide events, delivered to every town listener
	EventTypePlayerJoined       EventType = "player-joined"
	EventTypePlayerMoved        EventType = "player-moved"
	EventTypePlayerDisconnected EventType = "player-disconnected"
	EventTypeTownClosing        EventType = "town-closing"

	// TV-area events, delivered only to members of the TV area
	EventTypePaused            EventType = "paused"
	EventTypeSyncing           EventType = "syncing"
	EventTypeVotingEnabled     EventType = "voting-enabled"
	EventTypeVideoAdded        EventType = "video-added"
	EventTypeCandidatesUpdated EventType = "candidate-list-updated"

	// Events addressed to a single participant
	EventTypeVotingWidgetShown       EventType = "voting-widget-shown"
	EventTypeControlsDisabled        EventType = "controls-disabled"
	EventTypeCandidatesReset         EventType = "candidate-list-reset"
	EventTypeVideoAddFailedLookup    EventType = "video-add-failed-lookup"
	EventTypeVideoAddFailedURLFormat EventType = "video-add-failed-url-format"
)

// Event is a tagged notification. Only the field matching Type is set.
type Event struct {
	Type     EventType            `json:"type"`
	Playback *models.PlaybackInfo `json:"playback,omitempty"`
	Videos   []models.Video       `json:"videos,omitempty"`
	Player   *models.Player       `json:"player,omitempty"`
}

// Sink receives events for one subscriber. Notify must not block.
type Sink interface {
	Notify(event Event)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(event Event)

// Notify implements Sink
func (f SinkFunc) Notify(event Event) { f(event) }

// Paused builds a paused event
func Paused() Event { return Event{Type: EventTypePaused} }

// Syncing builds a syncing event carrying a copy of info
func Syncing(info models.PlaybackInfo) Event {
	return Event{Type: EventTypeSyncing, Playback: &info}
}

// CandidatesUpdated builds a candidate-list-updated event with a copy of videos
func CandidatesUpdated(videos []models.Video) Event {
	return Event{Type: EventTypeCandidatesUpdated, Videos: models.CloneVideos(videos)}
}

// PlayerEvent builds a town-wide event about a player
func PlayerEvent(eventType EventType, player *models.Player) Event {
	p := *player
	return Event{Type: eventType, Player: &p}
}

// Signal builds an event without payload
func Signal(eventType EventType) Event { return Event{Type: eventType} }

package tvarea

import (
	"github.com/mcdev12/coveytv/go/internal/events"
)

// Membership tracks which participants are inside the TV area and the sink
// each one is notified through. Iteration follows join order.
type Membership struct {
	order []string
	sinks map[string]events.Sink
}

// NewMembership creates an empty registry
func NewMembership() *Membership {
	return &Membership{sinks: make(map[string]events.Sink)}
}

// Add registers participant with sink, replacing the sink if already
// present. It reports whether participant is new.
func (m *Membership) Add(participantID string, sink events.Sink) bool {
	_, exists := m.sinks[participantID]
	if !exists {
		m.order = append(m.order, participantID)
	}
	m.sinks[participantID] = sink
	return !exists
}

// Remove deletes participant and returns its sink
func (m *Membership) Remove(participantID string) (events.Sink, bool) {
	sink, exists := m.sinks[participantID]
	if !exists {
		return nil, false
	}
	delete(m.sinks, participantID)
	for i, id := range m.order {
		if id == participantID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return sink, true
}

// Get returns the sink registered for participant
func (m *Membership) Get(participantID string) (events.Sink, bool) {
	sink, exists := m.sinks[participantID]
	return sink, exists
}

// Contains reports whether participant is in the area
func (m *Membership) Contains(participantID string) bool {
	_, exists := m.sinks[participantID]
	return exists
}

// Len returns the number of members
func (m *Membership) Len() int {
	return len(m.order)
}

// IsEmpty reports whether nobody is in the area
func (m *Membership) IsEmpty() bool {
	return len(m.order) == 0
}

// IDs returns member IDs in join order
func (m *Membership) IDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// ForEach calls fn with every member's sink in join order
func (m *Membership) ForEach(fn func(sink events.Sink)) {
	for _, id := range m.order {
		fn(m.sinks[id])
	}
}

// Broadcast notifies every member with event
func (m *Membership) Broadcast(event events.Event) {
	m.ForEach(func(sink events.Sink) {
		sink.Notify(event)
	})
}

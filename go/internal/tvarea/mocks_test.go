package tvarea

import (
	"context"
	"sync"
	"time"

	"github.com/mcdev12/coveytv/go/internal/events"
	"github.com/mcdev12/coveytv/go/internal/models"
	"github.com/stretchr/testify/mock"
)

// --- VideoLookup ---

type MockVideoLookup struct {
	mock.Mock
}

func (m *MockVideoLookup) Lookup(ctx context.Context, url string) (models.Video, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(models.Video), args.Error(1)
}

// --- Sink ---

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *recordingSink) Notify(event events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) Types() []events.EventType {
	var out []events.EventType
	for _, e := range s.Events() {
		out = append(out, e.Type)
	}
	return out
}

func (s *recordingSink) OfType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, e := range s.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (s *recordingSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// --- Clock ---

// fakeClock is satisfied by clockwork's fake clock
type fakeClock interface {
	Clock
	Advance(d time.Duration)
}

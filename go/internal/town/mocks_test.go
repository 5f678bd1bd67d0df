package town

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/coveytv/go/internal/events"
	"github.com/mcdev12/coveytv/go/internal/models"
	"github.com/mcdev12/coveytv/go/internal/tvarea"
	"github.com/stretchr/testify/mock"
)

// --- TokenIssuer ---

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GetToken(ctx context.Context, townID, playerID string) (string, error) {
	args := m.Called(ctx, townID, playerID)
	return args.String(0), args.Error(1)
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

func (s *recordingSink) Types() []events.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.EventType
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

func (s *recordingSink) Events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func testAreaConfig() tvarea.Config {
	return tvarea.Config{
		Clock: clockwork.NewFakeClock(),
		Defaults: []models.Video{
			{URL: "https://www.youtube.com/watch?v=aaa", Title: "A", DurationSeconds: 60},
			{URL: "https://www.youtube.com/watch?v=bbb", Title: "B", DurationSeconds: 90},
		},
	}
}

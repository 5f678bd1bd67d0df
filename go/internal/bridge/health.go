package bridge

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Stats counts what every town publisher has sent. Safe for concurrent use.
type Stats struct {
	mu        sync.Mutex
	published uint64
	failed    uint64
	lastEvent time.Time
}

func (s *Stats) record(at time.Time, err error) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failed++
		return
	}
	s.published++
	s.lastEvent = at
}

// Snapshot returns published count, failed count and the time of the last
// successful publish
func (s *Stats) Snapshot() (uint64, uint64, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.published, s.failed, s.lastEvent
}

// StatusConn is the part of *nats.Conn the health checker needs
type StatusConn interface {
	IsConnected() bool
}

type HealthStatus struct {
	Healthy         bool      `json:"healthy"`
	NATSConnected   bool      `json:"nats_connected"`
	EventsPublished uint64    `json:"events_published"`
	PublishFailures uint64    `json:"publish_failures"`
	LastEventTime   time.Time `json:"last_event_time"`
	Errors          []string  `json:"errors"`
}

type HealthChecker struct {
	conn  StatusConn
	stats *Stats
}

func NewHealthChecker(conn StatusConn, stats *Stats) *HealthChecker {
	return &HealthChecker{conn: conn, stats: stats}
}

func (h *HealthChecker) Check() HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
	}

	status.EventsPublished, status.PublishFailures, status.LastEventTime = h.stats.Snapshot()

	status.NATSConnected = h.conn.IsConnected()
	if !status.NATSConnected {
		status.Healthy = false
		status.Errors = append(status.Errors, "NATS disconnected")
	}

	return status
}

// ServeHTTP reports the bridge status, 503 when unhealthy
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Check()

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to encode bridge health response")
	}
}

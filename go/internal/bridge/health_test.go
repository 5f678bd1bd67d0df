package bridge

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecker_Connected(t *testing.T) {
	conn := &MockStatusConn{}
	conn.On("IsConnected").Return(true)

	stats := &Stats{}
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	stats.record(at, nil)
	stats.record(at.Add(time.Second), nil)
	stats.record(at.Add(2*time.Second), errors.New("nats: connection closed"))

	status := NewHealthChecker(conn, stats).Check()
	assert.True(t, status.Healthy)
	assert.True(t, status.NATSConnected)
	assert.Equal(t, uint64(2), status.EventsPublished)
	assert.Equal(t, uint64(1), status.PublishFailures)
	assert.Equal(t, at.Add(time.Second), status.LastEventTime)
	assert.Empty(t, status.Errors)
}

func TestHealthChecker_ServeHTTPDisconnected(t *testing.T) {
	conn := &MockStatusConn{}
	conn.On("IsConnected").Return(false)

	rec := httptest.NewRecorder()
	NewHealthChecker(conn, &Stats{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/bridge", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Healthy)
	assert.Equal(t, []string{"NATS disconnected"}, status.Errors)
}

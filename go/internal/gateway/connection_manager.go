package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/coveytv/go/internal/events"
	"github.com/mcdev12/coveytv/go/internal/town"
	"github.com/rs/zerolog/log"
)

// ConnectionManager manages WebSocket connections for town players
type ConnectionManager struct {
	// Connection pools organized by town ID
	townConnections map[string]map[*Connection]bool
	mu              sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
}

// Connection is one player's websocket. It is the player's sink for both
// town-wide and TV-area events.
type Connection struct {
	ID       string
	PlayerID string
	TownID   string
	Conn     *websocket.Conn
	Manager  *ConnectionManager

	// Send is never closed; writers select on done instead
	Send chan outbound

	codec      Codec
	session    *town.Session
	controller *town.Controller

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	ConnectedAt time.Time
	lastPing    time.Time
	pingMu      sync.Mutex
}

type outbound struct {
	payload []byte
	final   bool
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	LookupTimeout   time.Duration
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  256,
		LookupTimeout:   10 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		townConnections: make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and subscribes
// it to the town
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, controller *town.Controller, session *town.Session, codec Codec) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	connection := &Connection{
		ID:          uuid.NewString(),
		PlayerID:    session.Player.ID,
		TownID:      controller.TownID(),
		Conn:        conn,
		Manager:     cm,
		Send:        make(chan outbound, cm.config.SendBufferSize),
		codec:       codec,
		session:     session,
		controller:  controller,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		ConnectedAt: time.Now(),
		lastPing:    time.Now(),
	}

	cm.registerConnection(connection)
	controller.AddTownListener(connection.ID, connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("player_id", connection.PlayerID).
		Str("town_id", connection.TownID).
		Str("codec", codec.Name()).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.townConnections[conn.TownID] == nil {
		cm.townConnections[conn.TownID] = make(map[*Connection]bool)
	}
	cm.townConnections[conn.TownID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("town_id", conn.TownID).
		Int("total_connections", len(cm.townConnections[conn.TownID])).
		Msg("connection registered")
}

// unregisterConnection reports whether conn was still registered
func (cm *ConnectionManager) unregisterConnection(conn *Connection) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	connections, exists := cm.townConnections[conn.TownID]
	if !exists || !connections[conn] {
		return false
	}
	delete(connections, conn)
	if len(connections) == 0 {
		delete(cm.townConnections, conn.TownID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("player_id", conn.PlayerID).
		Str("town_id", conn.TownID).
		Msg("connection unregistered")
	return true
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{
		ActiveTowns:     len(cm.townConnections),
		TownConnections: make(map[string]int, len(cm.townConnections)),
	}
	for townID, connections := range cm.townConnections {
		stats.TotalConnections += len(connections)
		stats.TownConnections[townID] = len(connections)
	}
	return stats
}

// CloseAll disconnects every connection, used on shutdown
func (cm *ConnectionManager) CloseAll() {
	cm.mu.RLock()
	var all []*Connection
	for _, connections := range cm.townConnections {
		for conn := range connections {
			all = append(all, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range all {
		conn.Close()
	}
}

// ConnectionStats summarises active connections
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveTowns      int            `json:"active_towns"`
	TownConnections  map[string]int `json:"town_connections"`
}

// Notify implements events.Sink. It never blocks: a connection whose buffer
// is full is closed.
func (c *Connection) Notify(event events.Event) {
	payload, err := c.codec.Encode(NewEnvelope(c.TownID, event))
	if err != nil {
		log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to encode event")
		return
	}

	msg := outbound{payload: payload, final: event.Type == events.EventTypeTownClosing}
	select {
	case <-c.done:
	case c.Send <- msg:
	default:
		log.Warn().
			Str("connection_id", c.ID).
			Str("player_id", c.PlayerID).
			Str("event_type", string(event.Type)).
			Msg("connection send buffer full, closing connection")
		c.Close()
	}
}

// Close tears the socket down; the read pump then releases the session
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()
		c.Conn.Close()
	})
}

// LastPing is when the client last answered a ping
func (c *Connection) LastPing() time.Time {
	c.pingMu.Lock()
	defer c.pingMu.Unlock()
	return c.lastPing
}

func (c *Connection) touch() {
	c.pingMu.Lock()
	c.lastPing = time.Now()
	c.pingMu.Unlock()
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(c.codec.MessageType(), msg.payload); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}
			if msg.final {
				c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "town closing"))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump handles reading messages from the WebSocket connection. When it
// exits the player leaves the town.
func (c *Connection) readPump() {
	defer c.release()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.touch()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			return
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

func (c *Connection) release() {
	c.Close()
	if !c.Manager.unregisterConnection(c) {
		return
	}
	c.controller.RemoveTownListener(c.ID)
	c.controller.DestroySession(c.session)
}

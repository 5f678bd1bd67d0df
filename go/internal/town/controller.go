package town

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcdev12/coveytv/go/internal/events"
	"github.com/mcdev12/coveytv/go/internal/models"
	"github.com/mcdev12/coveytv/go/internal/tvarea"
	"github.com/rs/zerolog/log"
)

// DefaultCapacity is the maximum number of players in a town
const DefaultCapacity = 50

// TokenIssuer provisions video-call credentials for a player
type TokenIssuer interface {
	GetToken(ctx context.Context, townID, playerID string) (string, error)
}

// ControllerConfig describes a new town
type ControllerConfig struct {
	TownID         string
	FriendlyName   string
	IsPublic       bool
	Capacity       int
	UpdatePassword string
	Issuer         TokenIssuer
	Area           tvarea.Config
}

// Controller holds the players, sessions and listeners of one town and owns
// its TV area
type Controller struct {
	mu sync.RWMutex

	townID         string
	friendlyName   string
	isPublic       bool
	capacity       int
	updatePassword string

	players   []*models.Player
	sessions  map[string]*Session
	listeners *tvarea.Membership
	observers *tvarea.Membership
	issuer    TokenIssuer

	tv *tvarea.Area
}

// NewController creates a town and its TV area
func NewController(cfg ControllerConfig) *Controller {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	cfg.Area.TownID = cfg.TownID

	return &Controller{
		townID:         cfg.TownID,
		friendlyName:   cfg.FriendlyName,
		isPublic:       cfg.IsPublic,
		capacity:       cfg.Capacity,
		updatePassword: cfg.UpdatePassword,
		sessions:       make(map[string]*Session),
		listeners:      tvarea.NewMembership(),
		observers:      tvarea.NewMembership(),
		issuer:         cfg.Issuer,
		tv:             tvarea.NewArea(cfg.Area),
	}
}

func (c *Controller) TownID() string { return c.townID }

func (c *Controller) Capacity() int { return c.capacity }

func (c *Controller) UpdatePassword() string { return c.updatePassword }

// TV returns the town's TV area
func (c *Controller) TV() *tvarea.Area { return c.tv }

func (c *Controller) FriendlyName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.friendlyName
}

func (c *Controller) SetFriendlyName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.friendlyName = name
}

func (c *Controller) IsPublic() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isPublic
}

func (c *Controller) SetPublic(isPublic bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isPublic = isPublic
}

// Occupancy is the number of subscribed town listeners
func (c *Controller) Occupancy() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listeners.Len()
}

// Players returns a copy of every player currently in the town
func (c *Controller) Players() []models.Player {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Player, 0, len(c.players))
	for _, p := range c.players {
		out = append(out, *p)
	}
	return out
}

// AddPlayer admits a player, provisions its video token and tells every
// listener about the newcomer
func (c *Controller) AddPlayer(ctx context.Context, player *models.Player) (*Session, error) {
	c.mu.RLock()
	full := len(c.players) >= c.capacity
	c.mu.RUnlock()
	if full {
		return nil, ErrTownFull
	}

	session := NewSession(player)
	if c.issuer != nil {
		token, err := c.issuer.GetToken(ctx, c.townID, player.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to provision video token: %w", err)
		}
		session.VideoToken = token
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.players) >= c.capacity {
		return nil, ErrTownFull
	}
	c.players = append(c.players, player)
	c.sessions[session.SessionToken] = session
	c.broadcastLocked(events.PlayerEvent(events.EventTypePlayerJoined, player))

	log.Info().
		Str("town_id", c.townID).
		Str("player_id", player.ID).
		Str("user_name", player.UserName).
		Int("players", len(c.players)).
		Msg("player joined town")

	return session, nil
}

// DestroySession drops the player and its session. A player still inside
// the TV area leaves it.
func (c *Controller) DestroySession(session *Session) {
	c.mu.Lock()
	delete(c.sessions, session.SessionToken)
	for i, p := range c.players {
		if p.ID == session.Player.ID {
			c.players = append(c.players[:i], c.players[i+1:]...)
			break
		}
	}
	c.broadcastLocked(events.PlayerEvent(events.EventTypePlayerDisconnected, session.Player))
	c.mu.Unlock()

	c.tv.Leave(session.Player.ID)

	log.Info().
		Str("town_id", c.townID).
		Str("player_id", session.Player.ID).
		Msg("player session destroyed")
}

// UpdatePlayerLocation moves a player and notifies every listener
func (c *Controller) UpdatePlayerLocation(player *models.Player, location models.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()

	player.UpdateLocation(location)
	c.broadcastLocked(events.PlayerEvent(events.EventTypePlayerMoved, player))
}

// AddTownListener subscribes sink to town-wide events under id
func (c *Controller) AddTownListener(id string, sink events.Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners.Add(id, sink)
}

// RemoveTownListener unsubscribes id. Unknown IDs are ignored.
func (c *Controller) RemoveTownListener(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners.Remove(id)
}

// AddObserver subscribes sink to town-wide events without counting
// towards occupancy. Used by server-side mirrors such as the NATS bridge.
func (c *Controller) AddObserver(id string, sink events.Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers.Add(id, sink)
}

func (c *Controller) RemoveObserver(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers.Remove(id)
}

// SessionByToken finds the session a token belongs to
func (c *Controller) SessionByToken(token string) (*Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	session, ok := c.sessions[token]
	return session, ok
}

// DisconnectAllPlayers tells every listener the town is closing and stops
// the TV area
func (c *Controller) DisconnectAllPlayers() {
	c.mu.Lock()
	c.broadcastLocked(events.Signal(events.EventTypeTownClosing))
	c.mu.Unlock()

	c.tv.Close()

	log.Info().Str("town_id", c.townID).Msg("town closing, all players disconnected")
}

func (c *Controller) broadcastLocked(event events.Event) {
	c.listeners.Broadcast(event)
	c.observers.Broadcast(event)
}

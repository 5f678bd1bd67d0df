package town

import (
	"github.com/google/uuid"
	"github.com/mcdev12/coveytv/go/internal/models"
)

// Session binds a player to a town. The session token authenticates the
// player's websocket; the video token is handed to the video-call client.
type Session struct {
	Player       *models.Player
	SessionToken string
	VideoToken   string
}

// NewSession creates a session with a fresh random token
func NewSession(player *models.Player) *Session {
	return &Session{
		Player:       player,
		SessionToken: uuid.NewString(),
	}
}

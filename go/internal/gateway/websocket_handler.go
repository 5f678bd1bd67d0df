package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcdev12/coveytv/go/internal/town"
	"github.com/rs/zerolog/log"
)

// TownDirectory looks up live towns
type TownDirectory interface {
	GetController(townID string) (*town.Controller, error)
}

// WebSocketHandler handles WebSocket upgrade requests for town connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	towns             TownDirectory
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, towns TownDirectory) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		towns:             towns,
	}
}

// HandleTownConnection authenticates the session token and upgrades the request
func (h *WebSocketHandler) HandleTownConnection(w http.ResponseWriter, r *http.Request) {
	townID := r.URL.Query().Get("town_id")
	if townID == "" {
		http.Error(w, "town_id is required", http.StatusBadRequest)
		return
	}
	token := r.URL.Query().Get("session_token")
	if token == "" {
		http.Error(w, "session_token is required", http.StatusBadRequest)
		return
	}

	codec, err := CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	controller, err := h.towns.GetController(townID)
	if err != nil {
		if errors.Is(err, town.ErrTownNotFound) {
			http.Error(w, "town not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load town", http.StatusInternalServerError)
		return
	}

	session, ok := controller.SessionByToken(token)
	if !ok {
		log.Warn().Str("town_id", townID).Msg("websocket rejected, invalid session token")
		http.Error(w, town.ErrInvalidSession.Error(), http.StatusUnauthorized)
		return
	}

	// On failure the upgrader has already replied to the client
	if err := h.connectionManager.UpgradeConnection(w, r, controller, session, codec); err != nil {
		log.Error().
			Err(err).
			Str("town_id", townID).
			Str("player_id", session.Player.ID).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/town", h.HandleTownConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcdev12/coveytv/go/internal/models"
	"github.com/mcdev12/coveytv/go/internal/town"
	"github.com/rs/zerolog/log"
)

// StateProvider interface defines methods for retrieving TV state
type StateProvider interface {
	GetTVState(ctx context.Context, townID string) (*TVStateResponse, error)
}

// TVStateResponse represents the observable state of a TV area
type TVStateResponse struct {
	TownID          string              `json:"town_id"`
	Playback        models.PlaybackInfo `json:"playback"`
	DurationSeconds float64             `json:"duration_sec"`
	Candidates      []models.Video      `json:"candidates"`
	Votes           map[string]int      `json:"votes"`
	Members         int                 `json:"members"`
	Players         int                 `json:"players"`
}

// StateHandler handles HTTP requests for TV state
type StateHandler struct {
	stateProvider StateProvider
}

// NewStateHandler creates a new state handler
func NewStateHandler(provider StateProvider) *StateHandler {
	return &StateHandler{
		stateProvider: provider,
	}
}

// HandleGetTVState handles GET /api/towns/{townID}/tv
func (h *StateHandler) HandleGetTVState(w http.ResponseWriter, r *http.Request) {
	townID := r.PathValue("townID")
	if townID == "" {
		http.Error(w, "Town ID is required", http.StatusBadRequest)
		return
	}

	state, err := h.stateProvider.GetTVState(r.Context(), townID)
	if err != nil {
		if errors.Is(err, town.ErrTownNotFound) {
			http.Error(w, "Town not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("town_id", townID).Msg("failed to get tv state")
		http.Error(w, "Failed to get tv state", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		log.Error().Err(err).Msg("failed to encode tv state response")
	}
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/towns/{townID}/tv", h.HandleGetTVState)
}

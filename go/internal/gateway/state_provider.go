package gateway

import (
	"context"
	"fmt"

	"github.com/mcdev12/coveytv/go/internal/town"
)

// TownStateProvider implements StateProvider over the town store
type TownStateProvider struct {
	towns TownDirectory
}

// NewTownStateProvider creates a new state provider
func NewTownStateProvider(towns TownDirectory) *TownStateProvider {
	return &TownStateProvider{towns: towns}
}

// GetTVState returns a read-only snapshot of a town's TV area
func (p *TownStateProvider) GetTVState(ctx context.Context, townID string) (*TVStateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	controller, err := p.towns.GetController(townID)
	if err != nil {
		return nil, fmt.Errorf("failed to get town: %w", err)
	}

	state := controller.TV().Snapshot()
	return &TVStateResponse{
		TownID:          controller.TownID(),
		Playback:        state.Playback,
		DurationSeconds: state.DurationSeconds,
		Candidates:      state.Candidates,
		Votes:           state.Votes,
		Members:         state.Members,
		Players:         len(controller.Players()),
	}, nil
}

// Verify that TownStateProvider implements StateProvider
var _ StateProvider = (*TownStateProvider)(nil)

// Make sure the store satisfies the directory used across the gateway
var _ TownDirectory = (*town.Store)(nil)

package town

import (
	"crypto/subtle"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/coveytv/go/internal/tvarea"
	"github.com/rs/zerolog/log"
)

// StoreConfig holds what every new town is built from
type StoreConfig struct {
	DemoTownID string
	Capacity   int
	Issuer     TokenIssuer
	Area       tvarea.Config

	// OnCreate runs for every new town before it is visible in the store
	OnCreate func(*Controller)
}

// Listing is the public summary of a town
type Listing struct {
	FriendlyName     string `json:"friendly_name"`
	TownID           string `json:"town_id"`
	CurrentOccupancy int    `json:"current_occupancy"`
	MaximumOccupancy int    `json:"maximum_occupancy"`
}

// Store is the in-memory registry of live towns
type Store struct {
	mu    sync.RWMutex
	towns map[string]*Controller
	cfg   StoreConfig
}

func NewStore(cfg StoreConfig) *Store {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	return &Store{
		towns: make(map[string]*Controller),
		cfg:   cfg,
	}
}

// CreateTown creates a town. The demo town keeps its friendly name as ID.
func (s *Store) CreateTown(friendlyName string, isPublic bool) (*Controller, error) {
	if strings.TrimSpace(friendlyName) == "" {
		return nil, ErrInvalidTownName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	townID := friendlyName
	if s.cfg.DemoTownID == "" || friendlyName != s.cfg.DemoTownID {
		townID = s.newTownIDLocked()
	} else if _, exists := s.towns[townID]; exists {
		return nil, fmt.Errorf("town %s already exists", townID)
	}

	controller := NewController(ControllerConfig{
		TownID:         townID,
		FriendlyName:   friendlyName,
		IsPublic:       isPublic,
		Capacity:       s.cfg.Capacity,
		UpdatePassword: newUpdatePassword(),
		Issuer:         s.cfg.Issuer,
		Area:           s.cfg.Area,
	})
	if s.cfg.OnCreate != nil {
		s.cfg.OnCreate(controller)
	}
	s.towns[townID] = controller

	log.Info().
		Str("town_id", townID).
		Str("friendly_name", friendlyName).
		Bool("public", isPublic).
		Msg("town created")

	return controller, nil
}

func (s *Store) GetController(townID string) (*Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	controller, ok := s.towns[townID]
	if !ok {
		return nil, ErrTownNotFound
	}
	return controller, nil
}

// ListTowns returns the publicly listed towns ordered by name
func (s *Store) ListTowns() []Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listings := make([]Listing, 0, len(s.towns))
	for _, controller := range s.towns {
		if !controller.IsPublic() {
			continue
		}
		listings = append(listings, Listing{
			FriendlyName:     controller.FriendlyName(),
			TownID:           controller.TownID(),
			CurrentOccupancy: controller.Occupancy(),
			MaximumOccupancy: controller.Capacity(),
		})
	}
	sort.Slice(listings, func(i, j int) bool {
		if listings[i].FriendlyName != listings[j].FriendlyName {
			return listings[i].FriendlyName < listings[j].FriendlyName
		}
		return listings[i].TownID < listings[j].TownID
	})
	return listings
}

// UpdateTown changes the name and/or visibility of a town. Nil fields are
// left untouched.
func (s *Store) UpdateTown(townID, password string, friendlyName *string, isPublic *bool) error {
	controller, err := s.authorize(townID, password)
	if err != nil {
		return err
	}
	if friendlyName != nil && strings.TrimSpace(*friendlyName) == "" {
		return ErrInvalidTownName
	}

	if friendlyName != nil {
		controller.SetFriendlyName(*friendlyName)
	}
	if isPublic != nil {
		controller.SetPublic(*isPublic)
	}

	log.Info().Str("town_id", townID).Msg("town updated")
	return nil
}

// DeleteTown disconnects everyone and removes the town
func (s *Store) DeleteTown(townID, password string) error {
	controller, err := s.authorize(townID, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.towns, townID)
	s.mu.Unlock()

	controller.DisconnectAllPlayers()

	log.Info().Str("town_id", townID).Msg("town deleted")
	return nil
}

// Close disconnects every town, used on shutdown
func (s *Store) Close() {
	s.mu.Lock()
	towns := make([]*Controller, 0, len(s.towns))
	for _, controller := range s.towns {
		towns = append(towns, controller)
	}
	s.towns = make(map[string]*Controller)
	s.mu.Unlock()

	for _, controller := range towns {
		controller.DisconnectAllPlayers()
	}
}

func (s *Store) authorize(townID, password string) (*Controller, error) {
	controller, err := s.GetController(townID)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(controller.UpdatePassword()), []byte(password)) != 1 {
		return nil, ErrInvalidPassword
	}
	return controller, nil
}

// newTownIDLocked returns an unused 8-character uppercase hex ID
func (s *Store) newTownIDLocked() string {
	for {
		id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
		if _, exists := s.towns[id]; !exists {
			return id
		}
	}
}

func newUpdatePassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

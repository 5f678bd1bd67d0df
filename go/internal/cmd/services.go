package main

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/coveytv/go/clients/twilio_client"
	"github.com/mcdev12/coveytv/go/clients/youtube_client"
	"github.com/mcdev12/coveytv/go/internal/bridge"
	"github.com/mcdev12/coveytv/go/internal/config"
	"github.com/mcdev12/coveytv/go/internal/gateway"
	"github.com/mcdev12/coveytv/go/internal/town"
	"github.com/mcdev12/coveytv/go/internal/townapi"
	"github.com/mcdev12/coveytv/go/internal/tvarea"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Towns   *town.Store
	TownAPI *townapi.Service
	Gateway *gateway.Service

	// BridgeHealth is nil when the NATS bridge is disabled
	BridgeHealth *bridge.HealthChecker

	nats *nats.Conn
}

func setupServices(cfg config.Config) (*Services, error) {
	// Wire up dependency injection chain
	// Clients → Town store → RPC service / websocket gateway

	clock := clockwork.NewRealClock()

	defaults, err := loadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load video catalog: %w", err)
	}

	if cfg.YouTubeAPIKey == "" {
		log.Warn().Msg("YOUTUBE_API_KEY not set, proposed videos can't be looked up")
	}
	lookup := youtube_client.NewYouTubeClient(cfg.YouTubeAPIKey, cfg.YouTubeAPIURL, cfg.LookupTimeout)

	issuer := twilio_client.NewTwilioClient(twilio_client.Config{
		AccountSID:   cfg.TwilioAccountSID,
		APIKeySID:    cfg.TwilioAPIKeySID,
		APIKeySecret: cfg.TwilioAPIKeySecret,
		TTL:          cfg.VideoTokenTTL,
	}, clock)

	storeCfg := town.StoreConfig{
		DemoTownID: cfg.DemoTownID,
		Capacity:   cfg.TownCapacity,
		Issuer:     issuer,
		Area: tvarea.Config{
			Clock:            clock,
			Defaults:         defaults,
			FallbackDuration: cfg.FallbackDuration,
			Lookup:           lookup,
		},
	}

	var nc *nats.Conn
	var bridgeHealth *bridge.HealthChecker
	if cfg.NATSURL != "" {
		nc, err = bridge.Connect(bridge.DefaultConnectionConfig(cfg.NATSURL))
		if err != nil {
			return nil, fmt.Errorf("failed to set up nats bridge: %w", err)
		}
		stats := &bridge.Stats{}
		storeCfg.OnCreate = bridge.Attach(nc, cfg.NATSSubjectPrefix, stats)
		bridgeHealth = bridge.NewHealthChecker(nc, stats)
	}

	store := town.NewStore(storeCfg)
	if cfg.DemoTownID != "" {
		if _, err := store.CreateTown(cfg.DemoTownID, false); err != nil {
			return nil, fmt.Errorf("failed to create demo town: %w", err)
		}
	}

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.ConnectionConfig.LookupTimeout = cfg.LookupTimeout

	return &Services{
		Towns:        store,
		TownAPI:      townapi.NewService(store),
		Gateway:      gateway.NewService(gatewayConfig, store),
		BridgeHealth: bridgeHealth,
		nats:         nc,
	}, nil
}

// Close disconnects every client and drains the NATS connection
func (s *Services) Close() {
	s.Gateway.Stop()
	s.Towns.Close()

	if s.nats != nil {
		if err := s.nats.Drain(); err != nil {
			log.Error().Err(err).Msg("failed to drain NATS connection")
		}
	}
}

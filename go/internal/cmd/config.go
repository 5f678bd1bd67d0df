package main

import (
	"os"

	"github.com/mcdev12/coveytv/go/internal/config"
	"github.com/mcdev12/coveytv/go/internal/models"
	"github.com/mcdev12/coveytv/go/internal/tvarea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// loadCatalog returns the default videos, from CATALOG_FILE when set
func loadCatalog(cfg config.Config) ([]models.Video, error) {
	if cfg.CatalogFile == "" {
		return tvarea.DefaultVideos(), nil
	}

	videos, err := tvarea.LoadCatalogFile(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("file", cfg.CatalogFile).
		Int("videos", len(videos)).
		Msg("loaded default video catalog")
	return videos, nil
}

package tvarea

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/mcdev12/coveytv/go/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed default_videos.yaml
var defaultVideosYAML []byte

type catalogFile struct {
	Videos []models.Video `yaml:"videos"`
}

// DefaultVideos returns the built-in default catalog
func DefaultVideos() []models.Video {
	videos, err := ParseCatalog(defaultVideosYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default catalog is invalid: %v", err))
	}
	return videos
}

// LoadCatalogFile reads a default catalog from a YAML file
func LoadCatalogFile(path string) ([]models.Video, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses a YAML catalog document and validates every entry
func ParseCatalog(data []byte) ([]models.Video, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(file.Videos) == 0 {
		return nil, errors.New("catalog has no videos")
	}

	seen := make(map[string]bool, len(file.Videos))
	for i, video := range file.Videos {
		if video.URL == "" {
			return nil, fmt.Errorf("video %d has no url", i)
		}
		if video.DurationSeconds <= 0 {
			return nil, fmt.Errorf("video %s has invalid duration %d", video.URL, video.DurationSeconds)
		}
		if seen[video.URL] {
			return nil, fmt.Errorf("duplicate video %s", video.URL)
		}
		seen[video.URL] = true
	}
	return file.Videos, nil
}

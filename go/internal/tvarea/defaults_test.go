package tvarea

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcdev12/coveytv/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVideos(t *testing.T) {
	videos := DefaultVideos()

	assert.Len(t, videos, 10)
	assert.Contains(t, videos, models.Video{
		URL:             "https://www.youtube.com/watch?v=5kcdRBHM7kM",
		Title:           "Super Mario Odyssey - Nintendo Switch Presentation 2017 Trailer",
		Channel:         "Nintendo",
		DurationSeconds: 162,
	})
	assert.Contains(t, videos, models.Video{
		URL:             "https://www.youtube.com/watch?v=kXaWHHN_fxs",
		Title:           "Movie hackers vs real programmers #shorts",
		Channel:         "Mansoor Codes",
		DurationSeconds: 31,
	})
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not yaml", doc: "videos: [::"},
		{name: "empty", doc: "videos: []"},
		{name: "missing url", doc: "videos:\n  - title: x\n    duration_sec: 3\n"},
		{name: "zero duration", doc: "videos:\n  - url: https://youtu.be/a\n"},
		{name: "duplicate", doc: "videos:\n  - url: https://youtu.be/a\n    duration_sec: 3\n  - url: https://youtu.be/a\n    duration_sec: 4\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := "videos:\n  - url: https://youtu.be/a\n    title: A\n    channel: C\n    duration_sec: 42\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	videos, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Equal(t, []models.Video{{URL: "https://youtu.be/a", Title: "A", Channel: "C", DurationSeconds: 42}}, videos)

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

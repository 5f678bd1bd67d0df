package tvarea

import (
	"github.com/mcdev12/coveytv/go/internal/models"
)

// Catalog is the ordered list of videos that can be voted on
type Catalog struct {
	defaults []models.Video
	videos   []models.Video
}

// NewCatalog creates a catalog holding exactly the default videos
func NewCatalog(defaults []models.Video) *Catalog {
	return &Catalog{
		defaults: models.CloneVideos(defaults),
		videos:   models.CloneVideos(defaults),
	}
}

// Contains reports whether a video with url is in the catalog
func (c *Catalog) Contains(url string) bool {
	_, ok := c.Find(url)
	return ok
}

// Find returns the video with url
func (c *Catalog) Find(url string) (models.Video, bool) {
	for _, video := range c.videos {
		if video.URL == url {
			return video, true
		}
	}
	return models.Video{}, false
}

// Add appends video unless its URL is already present
func (c *Catalog) Add(video models.Video) bool {
	if c.Contains(video.URL) {
		return false
	}
	c.videos = append(c.videos, video)
	return true
}

// Videos returns a copy of the catalog in order
func (c *Catalog) Videos() []models.Video {
	return models.CloneVideos(c.videos)
}

// Defaults returns a copy of the fixed default set
func (c *Catalog) Defaults() []models.Video {
	return models.CloneVideos(c.defaults)
}

// Len returns the number of videos in the catalog
func (c *Catalog) Len() int {
	return len(c.videos)
}

// Reset drops every submitted video and restores the defaults
func (c *Catalog) Reset() {
	c.videos = models.CloneVideos(c.defaults)
}

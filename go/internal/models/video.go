package models

import (
	"fmt"
	"regexp"
)

var videoURLPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu(?:be)?\.(?:com|be)(?:/watch\?v=|/)([^\s&]+)`)

// Video describes one candidate clip. URL is the unique key.
type Video struct {
	URL             string `json:"url" msgpack:"url" yaml:"url"`
	Title           string `json:"title" msgpack:"title" yaml:"title"`
	Channel         string `json:"channel" msgpack:"channel" yaml:"channel"`
	DurationSeconds int    `json:"duration_sec" msgpack:"duration_sec" yaml:"duration_sec"`
}

// PlaybackInfo is what every viewer's player should show right now
type PlaybackInfo struct {
	URL       string  `json:"url" msgpack:"url"`
	Timestamp float64 `json:"timestamp" msgpack:"timestamp"`
	IsPlaying bool    `json:"is_playing" msgpack:"is_playing"`
}

// CloneVideos returns a copy of the slice so callers can't mutate a catalog.
func CloneVideos(videos []Video) []Video {
	out := make([]Video, len(videos))
	copy(out, videos)
	return out
}

// ParseVideoURL extracts the video ID from a watch or short URL. Anything
// else wraps ErrMalformedVideoURL.
func ParseVideoURL(rawURL string) (string, error) {
	match := videoURLPattern.FindStringSubmatch(rawURL)
	if match == nil || match[1] == "" {
		return "", fmt.Errorf("%q: %w", rawURL, ErrMalformedVideoURL)
	}
	return match[1], nil
}

package youtube_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/mcdev12/coveytv/go/internal/models"
	"github.com/rs/zerolog/log"
)

var durationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.\d+)?S)?)?$`)

type Snippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
}

type ContentDetails struct {
	Duration string `json:"duration"`
}

type VideoItem struct {
	ID             string         `json:"id"`
	Snippet        Snippet        `json:"snippet"`
	ContentDetails ContentDetails `json:"contentDetails"`
}

type VideoListResponse struct {
	Kind  string      `json:"kind"`
	Items []VideoItem `json:"items"`
}

// ParseVideoID extracts the video ID from a watch or short URL
func ParseVideoID(rawURL string) (string, error) {
	return models.ParseVideoURL(rawURL)
}

// ParseDuration converts an ISO-8601 duration such as PT1H2M3S to whole seconds
func ParseDuration(iso string) (int, error) {
	match := durationPattern.FindStringSubmatch(iso)
	if match == nil || iso == "P" || iso == "PT" {
		return 0, fmt.Errorf("invalid duration %q", iso)
	}

	multipliers := []int{24 * 60 * 60, 60 * 60, 60, 1}
	total := 0
	for i, group := range match[1:] {
		if group == "" {
			continue
		}
		n, err := strconv.Atoi(group)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", iso, err)
		}
		total += n * multipliers[i]
	}
	return total, nil
}

func (c *YouTubeClient) GetVideo(ctx context.Context, videoID string) (*VideoItem, error) {
	params := url.Values{}
	params.Add("part", SnippetPart)
	params.Add("part", ContentDetailsPart)
	params.Set("id", videoID)
	params.Set("key", c.apiKey)

	body, err := c.Get(ctx, VideosEndpoint+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	var response VideoListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	if len(response.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}

	return &response.Items[0], nil
}

// Lookup resolves a submitted URL to a catalog entry. The returned video
// keeps rawURL as its key.
func (c *YouTubeClient) Lookup(ctx context.Context, rawURL string) (models.Video, error) {
	videoID, err := ParseVideoID(rawURL)
	if err != nil {
		return models.Video{}, err
	}
	if c.apiKey == "" {
		return models.Video{}, fmt.Errorf("no api key configured: %w", models.ErrVideoLookupFailed)
	}

	item, err := c.GetVideo(ctx, videoID)
	if err != nil {
		log.Warn().Err(err).Str("video_id", videoID).Msg("youtube lookup failed")
		return models.Video{}, fmt.Errorf("%v: %w", err, models.ErrVideoLookupFailed)
	}

	if item.Snippet.Title == "" {
		return models.Video{}, fmt.Errorf("video %s has no title: %w", videoID, models.ErrVideoLookupFailed)
	}
	seconds, err := ParseDuration(item.ContentDetails.Duration)
	if err != nil {
		return models.Video{}, fmt.Errorf("%v: %w", err, models.ErrVideoLookupFailed)
	}
	if seconds <= 0 {
		return models.Video{}, fmt.Errorf("video %s has no duration: %w", videoID, models.ErrVideoLookupFailed)
	}

	return models.Video{
		URL:             rawURL,
		Title:           item.Snippet.Title,
		Channel:         item.Snippet.ChannelTitle,
		DurationSeconds: seconds,
	}, nil
}

package youtube_client

import (
	"time"

	"github.com/mcdev12/coveytv/go/clients"
)

type YouTubeClient struct {
	*clients.BaseClient
	apiKey string
}

// NewYouTubeClient creates a Data API client. An empty baseURL uses the
// public endpoint.
func NewYouTubeClient(apiKey, baseURL string, timeout time.Duration) *YouTubeClient {
	if baseURL == "" {
		baseURL = BaseURL
	}
	client := &YouTubeClient{
		BaseClient: clients.NewBaseClient(baseURL),
		apiKey:     apiKey,
	}
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	client.SetHeader("Accept", "application/json")

	return client
}

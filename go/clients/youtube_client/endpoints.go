package youtube_client

const (
	// Base URL
	BaseURL = "https://www.googleapis.com/youtube/v3"

	// API Endpoints
	VideosEndpoint = "/videos"

	// Parts requested for a video lookup
	SnippetPart        = "snippet"
	ContentDetailsPart = "contentDetails"
)

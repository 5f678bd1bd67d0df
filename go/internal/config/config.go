package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every setting of the town server
type Config struct {
	Port     string
	LogLevel string

	DemoTownID   string
	TownCapacity int

	YouTubeAPIKey string
	YouTubeAPIURL string
	LookupTimeout time.Duration

	TwilioAccountSID   string
	TwilioAPIKeySID    string
	TwilioAPIKeySecret string
	VideoTokenTTL      time.Duration

	NATSURL           string
	NATSSubjectPrefix string

	CatalogFile      string
	FallbackDuration time.Duration
}

// NewConfigFromEnv reads environment variables (with defaults).
func NewConfigFromEnv() Config {
	return Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DemoTownID:   getEnv("DEMO_TOWN_ID", ""),
		TownCapacity: getEnvAsInt("TOWN_CAPACITY", 50),

		YouTubeAPIKey: getEnv("YOUTUBE_API_KEY", ""),
		YouTubeAPIURL: getEnv("YOUTUBE_API_URL", ""),
		LookupTimeout: time.Duration(getEnvAsInt("LOOKUP_TIMEOUT_SEC", 10)) * time.Second,

		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAPIKeySID:    getEnv("TWILIO_API_KEY_SID", ""),
		TwilioAPIKeySecret: getEnv("TWILIO_API_KEY_SECRET", ""),
		VideoTokenTTL:      time.Duration(getEnvAsInt("VIDEO_TOKEN_TTL_SEC", 3600)) * time.Second,

		NATSURL:           getEnv("NATS_URL", ""),
		NATSSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "covey.towns"),

		CatalogFile:      getEnv("CATALOG_FILE", ""),
		FallbackDuration: time.Duration(getEnvAsInt("FALLBACK_VIDEO_DURATION_SEC", 100)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Reference point and search radius for the default trigger and the
	// interval scheduler.
	ReferenceLatitude  float64
	ReferenceLongitude float64
	RadiusKm           float64
	MinMagnitude       float64
	CheckInterval      time.Duration

	// USGS feed.
	FeedBaseURL string
	FeedTimeout time.Duration

	// Redis document store (idempotency ledger + alert log).
	RedisURL string

	// OpenAI summarizer.
	OpenAIBaseURL string
	OpenAIKey     string
	OpenAIModel   string
	OpenAITimeout time.Duration

	// Pushover dispatch.
	PushoverToken   string
	PushoverUser    string
	PushoverTimeout time.Duration
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	checkInterval, err := parseDuration("CHECK_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	feedTimeout, err := parseDuration("FEED_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	openAITimeout, err := parseDuration("OPENAI_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	pushoverTimeout, err := parseDuration("PUSHOVER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	refLat, err := parseFloat("REFERENCE_LAT", 35.662139)
	if err != nil {
		return nil, err
	}
	refLon, err := parseFloat("REFERENCE_LON", 138.568222)
	if err != nil {
		return nil, err
	}
	radius, err := parseFloat("RADIUS_KM", 100)
	if err != nil {
		return nil, err
	}
	minMag, err := parseFloat("MIN_MAGNITUDE", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ReferenceLatitude:  refLat,
		ReferenceLongitude: refLon,
		RadiusKm:           radius,
		MinMagnitude:       minMag,
		CheckInterval:      checkInterval,

		FeedBaseURL: envOrDefault("FEED_BASE_URL", "https://earthquake.usgs.gov"),
		FeedTimeout: feedTimeout,

		RedisURL: envOrDefault("REDIS_URL", "redis://localhost:6379"),

		OpenAIBaseURL: envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITimeout: openAITimeout,

		PushoverToken:   os.Getenv("PUSHOVER_TOKEN"),
		PushoverUser:    os.Getenv("PUSHOVER_USER"),
		PushoverTimeout: pushoverTimeout,
	}

	if cfg.RadiusKm <= 0 {
		return nil, errors.New("RADIUS_KM must be positive")
	}
	if cfg.ReferenceLatitude < -90 || cfg.ReferenceLatitude > 90 {
		return nil, errors.New("REFERENCE_LAT must be within [-90, 90]")
	}
	if cfg.ReferenceLongitude < -180 || cfg.ReferenceLongitude > 180 {
		return nil, errors.New("REFERENCE_LON must be within [-180, 180]")
	}
	if cfg.OpenAIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	if cfg.PushoverToken == "" {
		return nil, errors.New("PUSHOVER_TOKEN is required")
	}
	if cfg.PushoverUser == "" {
		return nil, errors.New("PUSHOVER_USER is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

// Command check runs a single alert cycle and prints the result.
//
// It uses the same configuration as the service (environment variables or a
// .env file); flags override the reference point and radius.
//
// Usage:
//
//	go run ./cmd/check -lat 37.350 -lng 136.933 -radius 250
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/adapter/openai"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/pushover"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/redisstore"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-alert-service/internal/config"
	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/couchcryptid/quake-alert-service/internal/observability"
	"github.com/couchcryptid/quake-alert-service/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, pipeline.ResultError)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lat := flag.Float64("lat", cfg.ReferenceLatitude, "reference latitude in degrees")
	lng := flag.Float64("lng", cfg.ReferenceLongitude, "reference longitude in degrees")
	radius := flag.Float64("radius", cfg.RadiusKm, "search radius in km")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall cycle timeout")
	flag.Parse()

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetricsForTesting() // one-shot run, nothing scrapes the registry

	store, err := redisstore.New(cfg.RedisURL, logger)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer store.Close()

	fetcher := usgs.NewClient(cfg.FeedBaseURL, cfg.MinMagnitude, cfg.FeedTimeout, logger, metrics)
	summarizer := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAITimeout, logger, metrics)
	dispatcher := pushover.NewClient(pushover.DefaultBaseURL, cfg.PushoverToken, cfg.PushoverUser, cfg.PushoverTimeout, logger)

	p := pipeline.New(fetcher, summarizer, dispatcher, store, store, logger, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := p.Run(ctx, domain.Point{Latitude: *lat, Longitude: *lng}, *radius)
	if err != nil {
		return err
	}

	fmt.Println(result)
	return nil
}

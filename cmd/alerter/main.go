package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/quake-alert-service/internal/adapter/http"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/openai"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/pushover"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/redisstore"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-alert-service/internal/config"
	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/couchcryptid/quake-alert-service/internal/observability"
	"github.com/couchcryptid/quake-alert-service/internal/pipeline"
	"github.com/couchcryptid/quake-alert-service/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store, err := redisstore.New(cfg.RedisURL, logger)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	fetcher := usgs.NewClient(cfg.FeedBaseURL, cfg.MinMagnitude, cfg.FeedTimeout, logger, metrics)
	summarizer := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAITimeout, logger, metrics)
	dispatcher := pushover.NewClient(pushover.DefaultBaseURL, cfg.PushoverToken, cfg.PushoverUser, cfg.PushoverTimeout, logger)

	p := pipeline.New(fetcher, summarizer, dispatcher, store, store, logger, metrics)

	defaults := httpadapter.Defaults{
		Reference: domain.Point{Latitude: cfg.ReferenceLatitude, Longitude: cfg.ReferenceLongitude},
		RadiusKm:  cfg.RadiusKm,
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, store, store, defaults, logger)
	sched := scheduler.New(p, defaults.Reference, defaults.RadiusKm, cfg.CheckInterval, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start interval scheduler.
	go sched.Run(ctx)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	logger.Info("shutdown complete")
}

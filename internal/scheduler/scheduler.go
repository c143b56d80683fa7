package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/couchcryptid/quake-alert-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Runner executes one alert cycle.
type Runner interface {
	Run(ctx context.Context, ref domain.Point, radiusKm float64) (string, error)
}

// Scheduler triggers a cycle at a fixed interval with the configured
// reference point and radius. Cycle failures are logged and the ticker keeps
// going; a scheduled trigger and an on-demand trigger may overlap, which the
// ledger claim is designed to tolerate.
type Scheduler struct {
	runner   Runner
	ref      domain.Point
	radiusKm float64
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Scheduler using the real clock.
func New(runner Runner, ref domain.Point, radiusKm float64, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	return newWithClock(runner, ref, radiusKm, interval, clockwork.NewRealClock(), logger, metrics)
}

func newWithClock(runner Runner, ref domain.Point, radiusKm float64, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		runner:   runner,
		ref:      ref,
		radiusKm: radiusKm,
		interval: interval,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run ticks until the context is cancelled. The first cycle fires after one
// full interval, not at startup, so a restart loop cannot hammer the feed.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", "interval", s.interval, "radius_km", s.radiusKm)
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return
		case <-ticker.Chan():
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	result, err := s.runner.Run(ctx, s.ref, s.radiusKm)
	if err != nil {
		s.logger.Error("scheduled check failed", "error", err)
		return
	}
	s.logger.Info("scheduled check complete", "result", result)
}

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/couchcryptid/quake-alert-service/internal/observability"
)

// Fixed result strings returned to every trigger surface. The invoker always
// receives one of these or a summary, never a raw error.
const (
	ResultNoNew         = "No new earthquakes detected."
	ResultNoSignificant = "No significant earthquakes detected."
	ResultError         = "Error occurred while checking for earthquakes."
)

// EventFetcher returns events reported within radiusKm of the reference point.
type EventFetcher interface {
	FetchNearby(ctx context.Context, ref domain.Point, radiusKm float64) ([]domain.SeismicEvent, error)
}

// Summarizer turns a batch of enriched events into human-readable alert text.
type Summarizer interface {
	Summarize(ctx context.Context, events []domain.EnrichedEvent) (string, error)
}

// Dispatcher delivers one notification to the operator.
type Dispatcher interface {
	Dispatch(ctx context.Context, n domain.Notification) error
}

// Ledger is the idempotency store keyed by event ID.
//
// Claim is an atomic create-if-absent write and the sole authority for the
// right to alert on an event: it returns true exactly once per ID across all
// concurrent cycles. HasAlerted is a cheap read-side filter only; a cycle
// that passes it must still win the claim before dispatching.
type Ledger interface {
	HasAlerted(ctx context.Context, id string) (bool, error)
	Claim(ctx context.Context, id string, rec domain.LedgerRecord) (bool, error)
}

// AlertLog is the append-only record of dispatched batches.
type AlertLog interface {
	Append(ctx context.Context, rec domain.AlertRecord) (string, error)
	QueryByDay(ctx context.Context, day time.Time) ([]domain.AlertRecord, error)
}

// Pipeline runs the fetch-classify-dedupe-dispatch cycle. One call to Run is
// one cycle; cycles are independent and may overlap in wall-clock time, with
// the ledger claim serializing access to each event ID.
type Pipeline struct {
	fetcher    EventFetcher
	summarizer Summarizer
	dispatcher Dispatcher
	ledger     Ledger
	alertLog   AlertLog
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline with the given collaborators and observability.
func New(f EventFetcher, s Summarizer, d Dispatcher, l Ledger, a AlertLog, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:    f,
		summarizer: s,
		dispatcher: d,
		ledger:     l,
		alertLog:   a,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run executes one alert cycle and returns the last summary dispatched, or a
// fixed "no new" message. Fetch and ledger-read failures abort before any
// state is mutated; summarizer failures abort the tiers not yet reached;
// dispatch and write failures are logged and counted without aborting.
func (p *Pipeline) Run(ctx context.Context, ref domain.Point, radiusKm float64) (string, error) {
	start := time.Now()

	events, err := p.fetcher.FetchNearby(ctx, ref, radiusKm)
	if err != nil {
		p.metrics.CyclesTotal.WithLabelValues("fetch_error").Inc()
		return "", &FetchError{Err: err}
	}
	p.metrics.EventsFetched.Add(float64(len(events)))

	if len(events) == 0 {
		p.metrics.CyclesTotal.WithLabelValues("ok").Inc()
		return ResultNoSignificant, nil
	}

	groups, err := p.filterAndGroup(ctx, ref, events)
	if err != nil {
		p.metrics.CyclesTotal.WithLabelValues("persistence_error").Inc()
		return "", err
	}

	lastSummary, err := p.dispatchTiers(ctx, groups)
	if err != nil {
		p.metrics.CyclesTotal.WithLabelValues("summarize_error").Inc()
		return "", err
	}

	p.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	p.metrics.CyclesTotal.WithLabelValues("ok").Inc()

	if lastSummary == "" {
		return ResultNoNew, nil
	}
	return lastSummary, nil
}

// filterAndGroup enriches and classifies each event in feed order, drops
// sub-threshold and already-alerted events, and buckets the rest by tier.
// Tier buckets are disjoint because classification is a total function.
func (p *Pipeline) filterAndGroup(ctx context.Context, ref domain.Point, events []domain.SeismicEvent) (map[domain.Priority][]domain.EnrichedEvent, error) {
	groups := make(map[domain.Priority][]domain.EnrichedEvent)

	for _, ev := range events {
		enriched := domain.Enrich(ev, ref)

		// Tier-none events are never ledgered, so they skip the ledger read
		// and will be re-evaluated on every future cycle.
		if enriched.Priority == domain.PriorityNone {
			p.metrics.EventsSkipped.WithLabelValues("below_threshold").Inc()
			continue
		}

		alerted, err := p.ledger.HasAlerted(ctx, ev.ID)
		if err != nil {
			return nil, &PersistenceError{Op: "ledger read", Err: err}
		}
		if alerted {
			p.metrics.EventsSkipped.WithLabelValues("already_alerted").Inc()
			continue
		}

		groups[enriched.Priority] = append(groups[enriched.Priority], enriched)
	}

	return groups, nil
}

// dispatchTiers processes non-empty tiers in descending urgency. Per tier:
// summarize, claim each event, dispatch once, append one alert log record.
// Returns the summary of the last tier that was actually dispatched.
func (p *Pipeline) dispatchTiers(ctx context.Context, groups map[domain.Priority][]domain.EnrichedEvent) (string, error) {
	var lastSummary string

	for _, tier := range domain.Tiers {
		group := groups[tier]
		if len(group) == 0 {
			continue
		}

		summary, err := p.summarizer.Summarize(ctx, group)
		if err != nil {
			return "", &SummarizeError{Err: err}
		}
		if summary == "" {
			return "", &SummarizeError{Err: errors.New("summarizer returned empty text")}
		}

		claimed := p.claimEvents(ctx, group)
		if len(claimed) == 0 {
			// A concurrent cycle owns every event in this tier and will
			// have dispatched for them.
			p.logger.Info("tier claimed by concurrent cycle, skipping dispatch",
				"tier", tier.String(), "events", len(group))
			continue
		}

		p.dispatch(ctx, summary, tier, claimed)
		lastSummary = summary
	}

	return lastSummary, nil
}

// claimEvents attempts the create-if-absent ledger write for each event and
// returns the events this cycle won. Claim failures leave the event
// unclaimed so a later cycle retries it.
func (p *Pipeline) claimEvents(ctx context.Context, group []domain.EnrichedEvent) []domain.EnrichedEvent {
	claimed := make([]domain.EnrichedEvent, 0, len(group))
	for _, ev := range group {
		won, err := p.ledger.Claim(ctx, ev.ID, domain.NewLedgerRecord(ev))
		if err != nil {
			p.logger.Error("ledger claim failed", "event_id", ev.ID, "error", err)
			p.metrics.PersistenceErrors.Inc()
			continue
		}
		if !won {
			p.metrics.EventsSkipped.WithLabelValues("lost_claim").Inc()
			continue
		}
		claimed = append(claimed, ev)
	}
	return claimed
}

// dispatch sends one notification for a tier and records the batch in the
// alert log. Neither failure aborts the cycle: the claims already stand, so
// aborting would only suppress the remaining tiers' alerts.
func (p *Pipeline) dispatch(ctx context.Context, summary string, tier domain.Priority, events []domain.EnrichedEvent) {
	n := domain.NewNotification(summary, tier)
	if err := p.dispatcher.Dispatch(ctx, n); err != nil {
		p.logger.Error("dispatch failed", "tier", tier.String(), "events", len(events), "error", err)
		p.metrics.DispatchErrors.Inc()
	} else {
		p.metrics.AlertsDispatched.WithLabelValues(tier.String()).Inc()
		p.logger.Info("alert dispatched", "tier", tier.String(), "events", len(events))
	}

	rec := domain.NewAlertRecord(tier, summary, events)
	if _, err := p.alertLog.Append(ctx, rec); err != nil {
		p.logger.Error("alert log append failed", "tier", tier.String(), "error", err)
		p.metrics.PersistenceErrors.Inc()
	}
}

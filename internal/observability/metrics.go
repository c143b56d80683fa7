package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// alert pipeline.
type Metrics struct {
	CyclesTotal       *prometheus.CounterVec // labels: outcome={ok,fetch_error,summarize_error,persistence_error}
	EventsFetched     prometheus.Counter
	EventsSkipped     *prometheus.CounterVec // labels: reason={below_threshold,already_alerted,lost_claim}
	AlertsDispatched  *prometheus.CounterVec // labels: tier={advisory,warning,critical}
	DispatchErrors    prometheus.Counter
	PersistenceErrors prometheus.Counter

	CycleDuration      prometheus.Histogram
	FeedDuration       prometheus.Histogram
	SummarizerDuration prometheus.Histogram

	SchedulerRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_alert",
			Name:      "cycles_total",
			Help:      "Completed alert cycles by outcome.",
		}, []string{"outcome"}),
		EventsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_alert",
			Name:      "events_fetched_total",
			Help:      "Total seismic events returned by the feed.",
		}),
		EventsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_alert",
			Name:      "events_skipped_total",
			Help:      "Events dropped before dispatch by reason.",
		}, []string{"reason"}),
		AlertsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_alert",
			Name:      "alerts_dispatched_total",
			Help:      "Notifications delivered by tier.",
		}, []string{"tier"}),
		DispatchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_alert",
			Name:      "dispatch_errors_total",
			Help:      "Notification delivery failures.",
		}),
		PersistenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_alert",
			Name:      "persistence_errors_total",
			Help:      "Ledger and alert log write failures.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_alert",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-classify-dispatch cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FeedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_alert",
			Name:      "feed_request_duration_seconds",
			Help:      "USGS feed request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SummarizerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_alert",
			Name:      "summarizer_duration_seconds",
			Help:      "Text-generation request duration in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_alert",
			Name:      "scheduler_running",
			Help:      "1 when the interval scheduler is active, 0 when shut down.",
		}),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.EventsFetched,
		m.EventsSkipped,
		m.AlertsDispatched,
		m.DispatchErrors,
		m.PersistenceErrors,
		m.CycleDuration,
		m.FeedDuration,
		m.SummarizerDuration,
		m.SchedulerRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		CyclesTotal:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_alert", Name: "cycles_total"}, []string{"outcome"}),
		EventsFetched:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_alert", Name: "events_fetched_total"}),
		EventsSkipped:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_alert", Name: "events_skipped_total"}, []string{"reason"}),
		AlertsDispatched:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "quake_alert", Name: "alerts_dispatched_total"}, []string{"tier"}),
		DispatchErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_alert", Name: "dispatch_errors_total"}),
		PersistenceErrors:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "quake_alert", Name: "persistence_errors_total"}),
		CycleDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_alert", Name: "cycle_duration_seconds"}),
		FeedDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_alert", Name: "feed_request_duration_seconds"}),
		SummarizerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "quake_alert", Name: "summarizer_duration_seconds"}),
		SchedulerRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "quake_alert", Name: "scheduler_running"}),
	}
}

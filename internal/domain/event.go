package domain

import (
	"time"
)

// Priority is the alert tier assigned to an event. Higher is more urgent.
// PriorityNone means the event falls below every alerting threshold and is
// dropped without being recorded anywhere.
type Priority int

const (
	PriorityNone     Priority = -1
	PriorityAdvisory Priority = 0
	PriorityWarning  Priority = 1
	PriorityCritical Priority = 2
)

// String returns the lowercase tier name used in logs and metric labels.
func (p Priority) String() string {
	switch p {
	case PriorityAdvisory:
		return "advisory"
	case PriorityWarning:
		return "warning"
	case PriorityCritical:
		return "critical"
	default:
		return "none"
	}
}

// Tiers lists the alertable tiers in descending urgency, the order in which
// a cycle processes them.
var Tiers = []Priority{PriorityCritical, PriorityWarning, PriorityAdvisory}

// SeismicEvent is one earthquake as reported by the feed. Immutable once
// fetched; owned by a single pipeline cycle.
type SeismicEvent struct {
	ID         string    `json:"id"`
	Magnitude  float64   `json:"magnitude"`
	DepthKm    float64   `json:"depth_km"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	OccurredAt time.Time `json:"occurred_at"`
	Title      string    `json:"title"`
}

// EnrichedEvent is a SeismicEvent plus fields derived against the reference
// point. Computed once per cycle and persisted only inside ledger and alert
// log records.
type EnrichedEvent struct {
	SeismicEvent
	DistanceKm   float64  `json:"distance_km"`
	EstimatedPGA float64  `json:"estimated_pga"`
	Priority     Priority `json:"priority"`
}

// Point is a WGS-84 reference coordinate.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Enrich derives distance to the reference point, estimated peak ground
// acceleration, and the alert tier for one event.
func Enrich(ev SeismicEvent, ref Point) EnrichedEvent {
	distance := DistanceKm(ref.Latitude, ref.Longitude, ev.Latitude, ev.Longitude)
	return EnrichedEvent{
		SeismicEvent: ev,
		DistanceKm:   distance,
		EstimatedPGA: EstimatedPGA(ev.Magnitude, ev.DepthKm, distance),
		Priority:     Classify(ev.Magnitude, ev.DepthKm),
	}
}

// Notification is the payload handed to the dispatch sink. Message may carry
// limited markup (b, i, u tags). Critical alerts set ExpireAfter and
// RetryInterval so the delivery backend keeps re-alerting until acknowledged.
type Notification struct {
	Message       string
	Priority      Priority
	Urgent        bool
	ExpireAfter   time.Duration
	RetryInterval time.Duration
}

// CriticalExpireAfter and CriticalRetryInterval are the delivery parameters
// attached to critical-tier notifications.
const (
	CriticalExpireAfter   = 3600 * time.Second
	CriticalRetryInterval = 180 * time.Second
)

// NewNotification builds the dispatch payload for one tier's batch.
func NewNotification(message string, priority Priority) Notification {
	n := Notification{
		Message:  message,
		Priority: priority,
		Urgent:   priority == PriorityCritical,
	}
	if n.Urgent {
		n.ExpireAfter = CriticalExpireAfter
		n.RetryInterval = CriticalRetryInterval
	}
	return n
}

// LedgerRecord is the idempotency ledger entry keyed by event ID. Its
// presence is the sole truth for "already alerted". Sent is always true.
type LedgerRecord struct {
	ID           string    `json:"id"`
	Sent         bool      `json:"sent"`
	Magnitude    float64   `json:"magnitude"`
	DepthKm      float64   `json:"depth_km"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	DistanceKm   float64   `json:"distance_km"`
	EstimatedPGA float64   `json:"estimated_pga"`
	Priority     Priority  `json:"priority"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewLedgerRecord snapshots an enriched event for the ledger.
func NewLedgerRecord(ev EnrichedEvent) LedgerRecord {
	return LedgerRecord{
		ID:           ev.ID,
		Sent:         true,
		Magnitude:    ev.Magnitude,
		DepthKm:      ev.DepthKm,
		Latitude:     ev.Latitude,
		Longitude:    ev.Longitude,
		DistanceKm:   ev.DistanceKm,
		EstimatedPGA: ev.EstimatedPGA,
		Priority:     ev.Priority,
		OccurredAt:   ev.OccurredAt,
	}
}

// AlertRecord is one dispatched batch in the alert log: the summary text,
// the tier, and the events it covered. Append-only, queryable by day.
type AlertRecord struct {
	Timestamp   time.Time       `json:"timestamp"`
	Message     string          `json:"message"`
	Priority    Priority        `json:"priority"`
	Earthquakes []EnrichedEvent `json:"earthquakes"`
}

// NewAlertRecord stamps a batch record with the current time.
func NewAlertRecord(priority Priority, message string, events []EnrichedEvent) AlertRecord {
	return AlertRecord{
		Timestamp:   clock.Now().UTC(),
		Message:     message,
		Priority:    priority,
		Earthquakes: events,
	}
}

package domain_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestClassify_BoundaryTable(t *testing.T) {
	cases := []struct {
		name    string
		mag     float64
		depthKm float64
		want    domain.Priority
	}{
		{"shallow M5 is warning", 5.0, 69, domain.PriorityWarning},
		{"M5 at exactly 70km is none", 5.0, 70, domain.PriorityNone},
		{"shallow M4.5 is advisory", 4.5, 29, domain.PriorityAdvisory},
		{"M4.5 at exactly 30km is none", 4.5, 30, domain.PriorityNone},
		{"M6 warns at any depth", 6.0, 1000, domain.PriorityWarning},
		{"M8.1 is critical at any depth", 8.1, 700, domain.PriorityCritical},
		{"M7 is critical", 7.0, 100, domain.PriorityCritical},
		{"exactly M8 is critical", 8.0, 5, domain.PriorityCritical},
		{"deep M4 is none", 4.0, 50, domain.PriorityNone},
		{"tiny quake is none", 2.1, 3, domain.PriorityNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.Classify(tc.mag, tc.depthKm))
		})
	}
}

func TestPriority_String(t *testing.T) {
	assert.Equal(t, "none", domain.PriorityNone.String())
	assert.Equal(t, "advisory", domain.PriorityAdvisory.String())
	assert.Equal(t, "warning", domain.PriorityWarning.String())
	assert.Equal(t, "critical", domain.PriorityCritical.String())
}

func TestNewNotification_CriticalDeliveryParameters(t *testing.T) {
	n := domain.NewNotification("<b>major quake</b>", domain.PriorityCritical)
	assert.True(t, n.Urgent)
	assert.Equal(t, 3600*time.Second, n.ExpireAfter)
	assert.Equal(t, 180*time.Second, n.RetryInterval)
}

func TestNewNotification_NonCriticalHasNoRetry(t *testing.T) {
	for _, tier := range []domain.Priority{domain.PriorityAdvisory, domain.PriorityWarning} {
		n := domain.NewNotification("quake", tier)
		assert.False(t, n.Urgent)
		assert.Zero(t, n.ExpireAfter)
		assert.Zero(t, n.RetryInterval)
	}
}

func TestNewAlertRecord_UsesInjectedClock(t *testing.T) {
	at := time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { domain.SetClock(nil) })

	rec := domain.NewAlertRecord(domain.PriorityWarning, "msg", nil)
	assert.Equal(t, at, rec.Timestamp)
	assert.Equal(t, domain.PriorityWarning, rec.Priority)
	assert.Equal(t, "msg", rec.Message)
}

func TestNewLedgerRecord_SnapshotsEnrichedEvent(t *testing.T) {
	ev := domain.EnrichedEvent{
		SeismicEvent: domain.SeismicEvent{
			ID:         "e1",
			Magnitude:  6.5,
			DepthKm:    10,
			Latitude:   36.2,
			Longitude:  138.2,
			OccurredAt: time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC),
		},
		DistanceKm:   50,
		EstimatedPGA: 0.12,
		Priority:     domain.PriorityWarning,
	}

	rec := domain.NewLedgerRecord(ev)
	assert.True(t, rec.Sent)
	assert.Equal(t, "e1", rec.ID)
	assert.Equal(t, 6.5, rec.Magnitude)
	assert.Equal(t, 50.0, rec.DistanceKm)
	assert.Equal(t, domain.PriorityWarning, rec.Priority)
	assert.Equal(t, ev.OccurredAt, rec.OccurredAt)
}

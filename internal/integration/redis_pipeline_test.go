//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/quake-alert-service/internal/adapter/http"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/openai"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/pushover"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/redisstore"
	"github.com/couchcryptid/quake-alert-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/couchcryptid/quake-alert-service/internal/observability"
	"github.com/couchcryptid/quake-alert-service/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const feedFixture = `{
  "features": [
    {
      "id": "us7000itg",
      "properties": {"mag": 6.5, "time": 1714140600000, "title": "M 6.5 - near the reference point"},
      "geometry": {"coordinates": [138.5, 36.0, 10.0]}
    }
  ]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startRedis boots a disposable Redis and returns its connection URL.
func startRedis(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return uri
}

func TestStore_ClaimIsAtomic(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	store, err := redisstore.New(startRedis(ctx, t), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	rec := domain.NewLedgerRecord(domain.EnrichedEvent{
		SeismicEvent: domain.SeismicEvent{ID: "e1", Magnitude: 6.5, DepthKm: 10},
		Priority:     domain.PriorityWarning,
	})

	alerted, err := store.HasAlerted(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, alerted)

	won, err := store.Claim(ctx, "e1", rec)
	require.NoError(t, err)
	assert.True(t, won, "first claim must win")

	won, err = store.Claim(ctx, "e1", rec)
	require.NoError(t, err)
	assert.False(t, won, "second claim must lose")

	alerted, err = store.HasAlerted(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, alerted)
}

func TestStore_AlertLogNewestFirst(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	store, err := redisstore.New(startRedis(ctx, t), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	day := time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)
	first := domain.AlertRecord{Timestamp: day.Add(9 * time.Hour), Message: "morning", Priority: domain.PriorityAdvisory}
	second := domain.AlertRecord{Timestamp: day.Add(15 * time.Hour), Message: "afternoon", Priority: domain.PriorityWarning}

	_, err = store.Append(ctx, first)
	require.NoError(t, err)
	_, err = store.Append(ctx, second)
	require.NoError(t, err)

	records, err := store.QueryByDay(ctx, day)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "afternoon", records[0].Message)
	assert.Equal(t, "morning", records[1].Message)

	// A different day is empty.
	records, err = store.QueryByDay(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestPipelineEndToEnd runs two full cycles against a real Redis with fake
// feed, summarizer, and push endpoints: the second cycle must be a no-op.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	store, err := redisstore.New(startRedis(ctx, t), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feedFixture))
	}))
	t.Cleanup(feedSrv.Close)

	openaiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"<b>A strong quake struck nearby.</b>"}}]}`))
	}))
	t.Cleanup(openaiSrv.Close)

	var dispatches atomic.Int64
	pushSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		dispatches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":1,"request":"req-1"}`))
	}))
	t.Cleanup(pushSrv.Close)

	metrics := observability.NewMetricsForTesting()
	fetcher := usgs.NewClient(feedSrv.URL, 0, 10*time.Second, discardLogger(), metrics)
	summarizer := openai.NewClient(openaiSrv.URL, "test-key", "test-model", 10*time.Second, discardLogger(), metrics)
	dispatcher := pushover.NewClient(pushSrv.URL, "tok", "usr", 10*time.Second, discardLogger())

	p := pipeline.New(fetcher, summarizer, dispatcher, store, store, discardLogger(), metrics)
	ref := domain.Point{Latitude: 35.662139, Longitude: 138.568222}

	result, err := p.Run(ctx, ref, 100)
	require.NoError(t, err)
	assert.Equal(t, "<b>A strong quake struck nearby.</b>", result)
	assert.Equal(t, int64(1), dispatches.Load())

	// Same feed again: the ledger makes the cycle a no-op.
	result, err = p.Run(ctx, ref, 100)
	require.NoError(t, err)
	assert.Equal(t, pipeline.ResultNoNew, result)
	assert.Equal(t, int64(1), dispatches.Load())

	// The alert log has exactly one batch for today.
	records, err := store.QueryByDay(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.PriorityWarning, records[0].Priority)
	require.Len(t, records[0].Earthquakes, 1)
	assert.Equal(t, "us7000itg", records[0].Earthquakes[0].ID)
}

// TestTriggerSurfaceEndToEnd exercises the HTTP trigger against a real store.
func TestTriggerSurfaceEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	store, err := redisstore.New(startRedis(ctx, t), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	t.Cleanup(feedSrv.Close)

	metrics := observability.NewMetricsForTesting()
	fetcher := usgs.NewClient(feedSrv.URL, 0, 10*time.Second, discardLogger(), metrics)
	p := pipeline.New(fetcher, nil, nil, store, store, discardLogger(), metrics)

	defaults := httpadapter.Defaults{Reference: domain.Point{Latitude: 35.662139, Longitude: 138.568222}, RadiusKm: 100}
	srv := httpadapter.NewServer(":0", p, store, store, defaults, discardLogger())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/check", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pipeline.ResultNoSignificant, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/couchcryptid/quake-alert-service/internal/observability"
	"github.com/hashicorp/go-retryablehttp"
)

// Client implements pipeline.EventFetcher against the USGS FDSN event web
// service. Requests are retried a few times with backoff; a feed that stays
// unreachable surfaces as a fetch failure for the whole cycle.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	minMagnitude float64
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewClient creates a USGS event feed client.
func NewClient(baseURL string, minMagnitude float64, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil

	httpClient := rc.StandardClient()
	httpClient.Timeout = timeout

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		minMagnitude: minMagnitude,
		logger:       logger,
		metrics:      metrics,
	}
}

// FetchNearby queries events within radiusKm of the reference point and
// returns them in feed order.
func (c *Client) FetchNearby(ctx context.Context, ref domain.Point, radiusKm float64) ([]domain.SeismicEvent, error) {
	params := url.Values{
		"format":      {"geojson"},
		"latitude":    {strconv.FormatFloat(ref.Latitude, 'f', -1, 64)},
		"longitude":   {strconv.FormatFloat(ref.Longitude, 'f', -1, 64)},
		"maxradiuskm": {strconv.FormatFloat(radiusKm, 'f', -1, 64)},
	}
	if c.minMagnitude > 0 {
		params.Set("minmagnitude", strconv.FormatFloat(c.minMagnitude, 'f', -1, 64))
	}
	fullURL := c.baseURL + "/fdsnws/event/1/query?" + params.Encode()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.FeedDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("feed API error: status %d: %s", resp.StatusCode, body)
	}

	var feed response
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	events := make([]domain.SeismicEvent, 0, len(feed.Features))
	for _, f := range feed.Features {
		ev, ok := f.toEvent()
		if !ok {
			c.logger.Warn("skipping malformed feed feature", "feature_id", f.ID)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// USGS GeoJSON response types. Fields not listed here are passthrough
// metadata the pipeline never interprets.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string     `json:"id"`
	Properties properties `json:"properties"`
	Geometry   geometry   `json:"geometry"`
}

type properties struct {
	Mag   *float64 `json:"mag"`
	Depth *float64 `json:"depth"`
	Time  int64    `json:"time"` // milliseconds since epoch UTC
	Title string   `json:"title"`
}

type geometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth_km]
}

// toEvent maps a feed feature to a SeismicEvent. Depth comes from
// properties.depth when present, otherwise from the third coordinate.
// Features without an ID, magnitude, or coordinates are unusable.
func (f feature) toEvent() (domain.SeismicEvent, bool) {
	if f.ID == "" || f.Properties.Mag == nil || len(f.Geometry.Coordinates) < 2 {
		return domain.SeismicEvent{}, false
	}

	var depth float64
	switch {
	case f.Properties.Depth != nil:
		depth = *f.Properties.Depth
	case len(f.Geometry.Coordinates) >= 3:
		depth = f.Geometry.Coordinates[2]
	}
	if depth < 0 {
		depth = 0
	}

	return domain.SeismicEvent{
		ID:         f.ID,
		Magnitude:  *f.Properties.Mag,
		DepthKm:    depth,
		Latitude:   f.Geometry.Coordinates[1],
		Longitude:  f.Geometry.Coordinates[0],
		OccurredAt: time.UnixMilli(f.Properties.Time).UTC(),
		Title:      f.Properties.Title,
	}, true
}

package pushover

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the production Pushover API endpoint.
const DefaultBaseURL = "https://api.pushover.net"

// Client implements pipeline.Dispatcher using the Pushover message API.
// Delivery is a single blocking call; the result is the returned error, not
// a callback.
type Client struct {
	token  string
	user   string
	client *resty.Client
	logger *slog.Logger
}

// NewClient creates a Pushover dispatch client.
func NewClient(baseURL, token, user string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token:  token,
		user:   user,
		client: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		logger: logger,
	}
}

// Dispatch delivers one notification. Urgent notifications carry expire and
// retry parameters so Pushover keeps re-alerting until acknowledged.
func (c *Client) Dispatch(ctx context.Context, n domain.Notification) error {
	form := map[string]string{
		"token":    c.token,
		"user":     c.user,
		"message":  n.Message,
		"priority": strconv.Itoa(int(n.Priority)),
		"html":     "1",
	}
	if n.Urgent {
		form["expire"] = strconv.Itoa(int(n.ExpireAfter.Seconds()))
		form["retry"] = strconv.Itoa(int(n.RetryInterval.Seconds()))
	}

	var result apiResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&result).
		Post("/1/messages.json")
	if err != nil {
		return fmt.Errorf("pushover request: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("pushover API error: status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.Status != 1 {
		return fmt.Errorf("pushover rejected message: %v", result.Errors)
	}

	c.logger.Debug("notification delivered", "priority", n.Priority.String(), "request_id", result.Request)
	return nil
}

type apiResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

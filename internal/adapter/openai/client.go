package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/couchcryptid/quake-alert-service/internal/observability"
)

// systemPrompt frames the model as a live-blog reporter so the alert text
// reads like a human update rather than a data dump. The b/i/u tags pass
// through to the push notification renderer.
const systemPrompt = `You are a news reporter that is doing a live blog about an earthquake(s).
You are given a list of earthquakes in JSON format.
Your job is to explain the data in English.
Don't mention the data directly.
Use bullets where necessary.
You summarize the data in english.
Limit to 3 major points. Be concise. Don't be verbose.
You can use html to style it (b, i, and u tags)`

// Client implements pipeline.Summarizer using the OpenAI chat completions
// API. The base URL is configurable so a proxy can front the real API.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a chat-completions summarizer client.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
		metrics: metrics,
	}
}

// Summarize asks the model for human-readable alert text covering the batch.
// An empty completion is an error: the pipeline must never dispatch a
// notification with missing content.
func (c *Client) Summarize(ctx context.Context, events []domain.EnrichedEvent) (string, error) {
	payload, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("marshal events: %w", err)
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(payload)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.SummarizerDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai API error: status %d: %s", resp.StatusCode, body)
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", errors.New("completion returned no content")
	}

	c.logger.Debug("summary generated", "events", len(events), "model", c.model)
	return completion.Choices[0].Message.Content, nil
}

// Chat completions API request/response types.

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

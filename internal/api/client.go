// Package api is a typed client for the presentation backend REST API.
// Every method maps to one endpoint and returns errors from the taxonomy in
// errors.go; callers never see raw transport failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nroh/slidegen/internal/domain"
	"github.com/nroh/slidegen/internal/logging"
)

// HTTPClient interface for HTTP requests (enables testing)
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Verify http.Client implements HTTPClient
var _ HTTPClient = (*http.Client)(nil)

// Client talks to the presentation backend. It is stateless apart from the
// base URL and safe for concurrent use.
type Client struct {
	baseURL string
	http    HTTPClient
	log     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logging.New("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateRequest is the body for POST /api/v1/generate.
type GenerateRequest struct {
	SelectedTopic string             `json:"selected_topic"`
	UserID        string             `json:"user_id"`
	Preferences   domain.Preferences `json:"preferences"`
	ClientID      string             `json:"client_id"`
}

// GenerateResponse is the accepted-job acknowledgment.
type GenerateResponse struct {
	PresentationID string `json:"presentation_id"`
	Topic          string `json:"topic"`
	CreatedAt      string `json:"created_at"`
	SlideCount     int    `json:"slide_count"`
}

// SuggestionRequest is the body for POST /api/v1/suggestions.
type SuggestionRequest struct {
	Topic      string `json:"topic"`
	Industry   string `json:"industry"`
	Audience   string `json:"audience"`
	SlideCount int    `json:"slide_count"`
}

// Generate submits a new generation job. One retry on transport failures;
// rate limit, quota and validation responses are terminal.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	err := c.withRetries(1, func() error {
		return c.doJSON(ctx, "generate", http.MethodPost, "/api/v1/generate", req, &resp)
	})
	if err != nil {
		return nil, err
	}
	c.log.WithJob(resp.PresentationID).Info("generate_accepted", map[string]interface{}{
		"topic": req.SelectedTopic,
	})
	return &resp, nil
}

// Status fetches the current state of a job. No retries here; the poller
// owns the retry policy for status fetches.
func (c *Client) Status(ctx context.Context, id string) (*domain.Presentation, error) {
	var p domain.Presentation
	path := fmt.Sprintf("/api/v1/status/%s", id)
	if err := c.doJSON(ctx, "status", http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser fetches the user's presentation summaries.
func (c *Client) ListByUser(ctx context.Context, userID string) ([]domain.Summary, error) {
	var items []domain.Summary
	path := fmt.Sprintf("/api/v1/presentations/%s", userID)
	if err := c.doJSON(ctx, "list", http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a presentation. 404 maps to ErrNotFound; never retried.
func (c *Client) Delete(ctx context.Context, id string) error {
	var ack struct {
		Message string `json:"message"`
	}
	path := fmt.Sprintf("/api/v1/presentation/%s", id)
	if err := c.doJSON(ctx, "delete", http.MethodDelete, path, nil, &ack); err != nil {
		return err
	}
	c.log.WithJob(id).Info("deleted", nil)
	return nil
}

// Suggestions requests topic suggestions. The caller (the debouncer) owns
// the retry policy; a 429 is terminal.
func (c *Client) Suggestions(ctx context.Context, req SuggestionRequest) ([]string, error) {
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := c.doJSON(ctx, "suggestions", http.MethodPost, "/api/v1/suggestions", req, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// UserStats fetches the daily usage snapshot.
func (c *Client) UserStats(ctx context.Context, userID string) (*domain.Stats, error) {
	var stats domain.Stats
	path := fmt.Sprintf("/api/v1/user/%s/stats", userID)
	if err := c.doJSON(ctx, "stats", http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Download streams the generated file for a job into w and returns the
// number of bytes written.
func (c *Client) Download(ctx context.Context, id string, w io.Writer) (int64, error) {
	path := fmt.Sprintf("/api/v1/download/%s", id)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, &TransportError{Op: "download", Err: err}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, &TransportError{Op: "download", Err: err}
	}
	defer resp.Body.Close()

	if err := c.mapStatus("download", resp); err != nil {
		return 0, err
	}

	start := time.Now()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &TransportError{Op: "download", Err: err}
	}
	c.log.WithJob(id).TimedEvent("downloaded", start, map[string]interface{}{"bytes": n})
	return n, nil
}

// doJSON issues one request and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if err := c.mapStatus(op, resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// mapStatus translates a non-2xx response into a typed error. The body is
// only consulted for validation detail on a 400.
func (c *Client) mapStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusPaymentRequired:
		return ErrQuotaExceeded
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		var body struct {
			Detail string `json:"detail"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		return &ValidationError{Detail: body.Detail}
	}
	return &HTTPError{Op: op, Status: resp.StatusCode}
}

// withRetries runs fn up to retries additional times on retriable failures.
func (c *Client) withRetries(retries int, fn func() error) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		err = fn()
		if err == nil || !Retriable(err) {
			return err
		}
		c.log.Warn("retrying", map[string]interface{}{"attempt": attempt + 1}, err)
	}
	return err
}

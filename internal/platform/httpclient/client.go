// Package httpclient implements the pool's Transport contract over net/http.
// It is deliberately thin: a per-request timeout is the only policy it owns;
// retries, cookies, and request signing belong to the upstream services.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config holds HTTP client settings.
type Config struct {
	// Timeout bounds each request end to end. Defaults to 30s.
	Timeout time.Duration
}

// Client executes outbound requests for the pool.
type Client struct {
	http *http.Client
}

// New creates a Client with the given configuration.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// Execute performs the request and returns the response body on a 2xx
// status. Any transport failure or non-2xx status is returned as an error.
func (c *Client) Execute(ctx context.Context, endpoint, method string, body []byte) ([]byte, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	return payload, nil
}

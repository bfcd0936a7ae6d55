// Package fortnite talks to the Fortnite shop API and turns its payloads into
// display-ready catalog items.
package fortnite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/item-shop/internal/apperror"
)

const userAgent = "item-shop/1.0"

// Client fetches the shop listing from the upstream API.
//
// The upstream call is the only blocking operation in the app. It is bounded
// by the configured timeout and fails outright — no retry, no stale-data
// fallback. The caller decides what a failed refresh means for the page.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	logger     *slog.Logger
}

// NewClient creates a Client for the given endpoint and API key.
func NewClient(url, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// FetchShop performs one GET against the shop endpoint and returns the raw
// response body. The payload is treated as opaque here; parsing is a separate
// concern so the raw bytes can be cached as fetched.
func (c *Client) FetchShop(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fortnite: building shop request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Upstream("fetching item shop", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.Upstream(fmt.Sprintf("item shop API returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Upstream("reading item shop response", err)
	}

	c.logger.Debug("fetched item shop",
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)),
	)

	return body, nil
}

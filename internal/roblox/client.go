// Package roblox implements the upstream web API client: JSON-over-HTTP
// fetching with rate-limit retry, cursor pagination, and the game, group,
// thumbnail, live-counter and user endpoints.
package roblox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/creatorstats/internal/domain"
	"github.com/mmcdole/creatorstats/internal/metrics"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "creatorstats/1.0"
)

// DefaultBackoff is the retry schedule applied to rate-limited requests.
// Its length bounds the attempt count: a request that is still rate limited
// once the schedule runs out degrades to an empty result.
var DefaultBackoff = []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}

// Options configures a Client. Base URLs carry no trailing slash.
type Options struct {
	GamesURL      string
	GroupsURL     string
	ThumbnailsURL string
	UsersURL      string
	Backoff       []time.Duration
	Timeout       time.Duration
	Metrics       *metrics.Metrics
}

// Client implements domain.GamesSource against the public web API.
// It is safe for concurrent use; the backoff schedule is read-only after
// construction.
type Client struct {
	games      string
	groups     string
	thumbnails string
	users      string
	backoff    []time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

var _ domain.GamesSource = (*Client)(nil)

// NewClient creates a new upstream API client.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	backoff := opts.Backoff
	if len(backoff) == 0 {
		backoff = DefaultBackoff
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		games:      strings.TrimRight(opts.GamesURL, "/"),
		groups:     strings.TrimRight(opts.GroupsURL, "/"),
		thumbnails: strings.TrimRight(opts.ThumbnailsURL, "/"),
		users:      strings.TrimRight(opts.UsersURL, "/"),
		backoff:    backoff,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// getJSON fetches reqURL and decodes the body into v, retrying rate-limited
// attempts per the backoff schedule. Any other failure returns immediately.
func (c *Client) getJSON(ctx context.Context, endpoint, reqURL string, v any) error {
	for attempt := 0; ; attempt++ {
		err := c.doGet(ctx, endpoint, reqURL, v)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrRateLimited) || attempt+1 >= len(c.backoff) {
			if c.metrics != nil {
				c.metrics.UpstreamFailures.WithLabelValues(endpoint).Inc()
			}
			return err
		}

		delay := c.backoff[attempt]
		c.logger.Debug("rate limited, backing off", "endpoint", endpoint, "attempt", attempt+1, "delay", delay)
		if c.metrics != nil {
			c.metrics.UpstreamRetries.Inc()
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", domain.ErrUnavailable, ctx.Err())
		case <-timer.C:
		}
	}
}

// doGet performs a single GET request and classifies failures.
func (c *Client) doGet(ctx context.Context, endpoint, reqURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("upstream request", "endpoint", endpoint, "url", reqURL)
	if c.metrics != nil {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint).Inc()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isRateLimitSignal(err.Error()) {
			return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests || isRateLimitSignal(string(body)) {
			return fmt.Errorf("%w: status %d", domain.ErrRateLimited, resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d", domain.ErrUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(body, v); err != nil {
		c.logger.Error("JSON parse error", "endpoint", endpoint, "error", err, "bodyLen", len(body))
		return fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}
	return nil
}

// isRateLimitSignal reports whether an error message carries a rate-limit
// marker. Matching is deliberately textual: some transports surface 429s as
// wrapped error strings rather than status codes.
func isRateLimitSignal(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "429") || strings.Contains(lower, "too many requests")
}

// fetchAllPages drives baseURL through the cursor pagination protocol,
// accumulating rows until a page arrives without a next cursor. The loop
// terminates whenever a page is missing, malformed, or cursorless; no page
// count limit is imposed. A failure after at least one successful page
// returns the rows gathered so far.
func (c *Client) fetchAllPages(ctx context.Context, endpoint, baseURL string) ([]gameRow, error) {
	var rows []gameRow
	cursor := ""
	for {
		reqURL := baseURL
		if cursor != "" {
			reqURL += "&cursor=" + url.QueryEscape(cursor)
		}

		var page gamesPage
		if err := c.getJSON(ctx, endpoint, reqURL, &page); err != nil {
			if len(rows) == 0 {
				return nil, err
			}
			c.logger.Warn("pagination aborted mid-stream", "endpoint", endpoint, "rows", len(rows), "error", err)
			return rows, nil
		}
		if page.Data == nil {
			return rows, nil
		}
		rows = append(rows, page.Data...)

		if page.NextPageCursor == "" {
			return rows, nil
		}
		cursor = page.NextPageCursor
	}
}

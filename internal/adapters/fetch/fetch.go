// Package fetch retrieves the regulator's attention and disposition feeds.
//
// The two fetchers fail independently: any transport or decode failure
// yields an empty batch plus an error for that feed only, and the caller
// decides to log and move on. There are no retries; the next scheduled pass
// picks the data up naturally.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/vigil/pkg/logger"
)

// Feed names used in logs and metrics labels.
const (
	FeedAttention   = "attention"
	FeedDisposition = "disposition"
)

const defaultTimeout = 15 * time.Second

// AttentionRecord is one raw row of the attention feed. The date string is
// the regulator's minguo compact form and passes through unnormalized; the
// merger converts it exactly once before the uniqueness check.
type AttentionRecord struct {
	Code   string `json:"Code"`
	Name   string `json:"Name"`
	Date   string `json:"Date"`
	Reason string `json:"TradingInfoForAttention"`
}

// DispositionRecord is one raw row of the disposition feed, extracted from
// the positional payload. PeriodRaw is the minguo range string joined by a
// wide dash.
type DispositionRecord struct {
	AnnouncedRaw string
	Code         string
	Name         string
	PeriodRaw    string
	Measures     string
}

// Client fetches both upstream feeds over HTTP.
type Client struct {
	httpClient     *http.Client
	attentionURL   string
	dispositionURL string
	logger         logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Client) {
		if c != nil {
			f.httpClient = c
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(f *Client) {
		if d > 0 {
			f.httpClient.Timeout = d
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(f *Client) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewClient creates a fetch client for the two feed URLs.
func NewClient(attentionURL, dispositionURL string, opts ...Option) *Client {
	f := &Client{
		httpClient:     &http.Client{Timeout: defaultTimeout},
		attentionURL:   attentionURL,
		dispositionURL: dispositionURL,
		logger:         nil, // resolved lazily so tests can run without Init
	}

	// Apply all options
	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = logger.Get().Named("fetch")
	}

	return f
}

// getJSON performs a GET against url and decodes the body into v.
func (f *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

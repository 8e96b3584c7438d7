// Package rss implements the feed source port over HTTP.
package rss

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/earshot-labs/earshot/internal/core/domain"
	"github.com/earshot-labs/earshot/internal/core/ports"
)

const (
	defaultMaxRetries  = 3
	defaultBaseBackoff = 500 * time.Millisecond
	defaultRPS         = 1
)

// Config tunes the feed client. Auth enables OAuth client-credentials for
// private feed hosts; nil means the feed is public.
type Config struct {
	MaxRetries        int
	BaseBackoff       time.Duration
	RequestsPerSecond float64
	Auth              *AuthConfig
}

// AuthConfig holds client-credentials settings for a protected feed host.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Client fetches podcast feeds. All failures, including non-200 statuses and
// XML decode errors, wrap domain.ErrFeedUnavailable so the core can fall back
// to persisted state.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	logger      *log.Logger
}

var _ ports.FeedSource = (*Client)(nil)

// NewClient constructs a feed client. httpClient may be nil.
func NewClient(httpClient *http.Client, cfg Config, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Auth != nil {
		cc := clientcredentials.Config{
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			TokenURL:     cfg.Auth.TokenURL,
			Scopes:       cfg.Auth.Scopes,
		}
		base := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = cc.Client(base)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = defaultBaseBackoff
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}

	return &Client{
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
		logger:      logger,
	}
}

// Fetch downloads and decodes the feed, returning entries in published order.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([]ports.Entry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rss adapter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rss adapter: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return nil, fmt.Errorf("rss adapter: %w: %v", domain.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss adapter: %w: status %d", domain.ErrFeedUnavailable, resp.StatusCode)
	}

	var doc rssDocument
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("rss adapter: %w: decode feed: %v", domain.ErrFeedUnavailable, err)
	}

	entries := mapEntries(doc)
	c.logger.Debug("fetched feed", "url", feedURL, "entries", len(entries),
		"skipped", len(doc.Channel.Items)-len(entries))
	return entries, nil
}

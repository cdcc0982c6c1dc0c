// Package reliefweb is the ReliefWeb search API client.
package reliefweb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/reliefqa/internal/domain/document"
	"github.com/kailas-cloud/reliefqa/internal/domain/fetch"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
	"github.com/kailas-cloud/reliefqa/internal/metrics"
)

// DefaultBaseURL is the public ReliefWeb API.
const DefaultBaseURL = "https://api.reliefweb.int/v1"

const (
	defaultTimeout     = 30 * time.Second
	defaultConcurrency = 4
	maxEnvelopeBytes   = 16 << 20
)

// BodyFetcher returns the paragraph texts of a document page.
type BodyFetcher interface {
	Paragraphs(ctx context.Context, url string) ([]string, error)
}

// Client posts search queries to ReliefWeb and resolves every hit's page body.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	bodies      BodyFetcher
	concurrency int
	timeout     time.Duration
	userAgent   string
	logger      *zap.Logger
}

// Config holds the client settings.
type Config struct {
	BaseURL         string
	HTTPClient      *http.Client
	Bodies          BodyFetcher
	BodyConcurrency int
	Timeout         time.Duration
	UserAgent       string
	Logger          *zap.Logger
}

// NewClient creates a ReliefWeb client.
func NewClient(cfg *Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	concurrency := cfg.BodyConcurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		bodies:      cfg.Bodies,
		concurrency: concurrency,
		timeout:     timeout,
		userAgent:   cfg.UserAgent,
		logger:      logger,
	}
}

// Fetch runs q against {base_url}/{endpoint} and returns normalized records.
// Any failure of the search call itself yields fetch.NoData; a failed page body
// only empties that record's body.
func (c *Client) Fetch(ctx context.Context, q query.SearchQuery, ep endpoint.Endpoint) fetch.Result {
	start := time.Now()
	url := c.baseURL + "/" + string(ep)
	rendered := q.String()

	c.logger.Info("Getting ReliefWeb data", zap.String("url", url), zap.String("query", rendered))

	env, err := c.search(ctx, url, &q)
	if err != nil {
		c.logger.Warn("No data was returned for query", zap.String("url", url), zap.Error(err))
		metrics.SearchRequestsTotal.WithLabelValues(string(ep), "no_data").Inc()
		return fetch.NoDataForQuery(q.Literal())
	}

	bodies := c.fetchBodies(ctx, env.Data)
	records := document.Normalize(env, ep, bodies)

	metrics.SearchRequestsTotal.WithLabelValues(string(ep), "ok").Inc()
	metrics.SearchRequestDuration.WithLabelValues(string(ep)).Observe(time.Since(start).Seconds())
	metrics.SearchResultsTotal.WithLabelValues(string(ep)).Add(float64(len(records)))

	c.logger.Info("Report size", zap.String("endpoint", string(ep)), zap.Int("count", len(records)))
	return fetch.OK(records)
}

func (c *Client) search(ctx context.Context, url string, q *query.SearchQuery) (document.Envelope, error) {
	payload, err := q.MarshalCompact()
	if err != nil {
		return document.Envelope{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return document.Envelope{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return document.Envelope{}, fmt.Errorf("post %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBytes))
	if err != nil {
		return document.Envelope{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return document.Envelope{}, fmt.Errorf("post %s returned %d: %s", url, resp.StatusCode, truncate(raw, 512))
	}

	return document.DecodeEnvelope(raw)
}

// fetchBodies downloads every entry's page with bounded concurrency.
// The result is index-aligned with entries; failed downloads stay nil.
func (c *Client) fetchBodies(ctx context.Context, entries []document.Entry) [][]string {
	bodies := make([][]string, len(entries))
	if c.bodies == nil || len(entries) == 0 {
		return bodies
	}

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, entry := range entries {
		g.Go(func() error {
			url := entry.URL()
			paras, err := c.bodies.Paragraphs(ctx, url)
			if err != nil {
				metrics.BodyFetchErrorsTotal.Inc()
				c.logger.Warn("Body fetch failed, using empty body",
					zap.Int("index", i),
					zap.String("url", url),
					zap.Error(err),
				)
				return nil // isolate per-record failures
			}
			bodies[i] = paras
			return nil
		})
	}
	_ = g.Wait()

	return bodies
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

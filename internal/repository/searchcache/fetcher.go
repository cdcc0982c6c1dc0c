// Package searchcache caches ReliefWeb search results in a key-value store.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reliefqa/internal/db"
	"github.com/kailas-cloud/reliefqa/internal/domain"
	"github.com/kailas-cloud/reliefqa/internal/domain/document"
	"github.com/kailas-cloud/reliefqa/internal/domain/fetch"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
)

// Fetcher runs a built query against an endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, q query.SearchQuery, ep endpoint.Endpoint) fetch.Result
}

// store is the consumer interface for the search cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedFetcher serves repeated queries from the store.
type CachedFetcher struct {
	inner      Fetcher
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// Config holds the decorator settings.
type Config struct {
	KeyPrefix  string        // default domain.KeyPrefix
	TTL        time.Duration // non-positive stores without expiry
	CacheTotal *prometheus.CounterVec
	Logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss").
func New(inner Fetcher, s store, cfg Config) *CachedFetcher {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFetcher{
		inner:      inner,
		store:      s,
		prefix:     prefix,
		ttl:        cfg.TTL,
		cacheTotal: cfg.CacheTotal,
		logger:     logger,
	}
}

// Fetch returns cached records for q or delegates to the inner fetcher.
// Only non-empty OK results are stored; NoData is never cached.
func (c *CachedFetcher) Fetch(ctx context.Context, q query.SearchQuery, ep endpoint.Endpoint) fetch.Result {
	key, ok := c.cacheKey(&q, ep)
	if !ok {
		return c.inner.Fetch(ctx, q, ep)
	}

	if records, hit := c.getFromCache(ctx, key); hit {
		c.incCache("hit")
		return fetch.OK(records)
	}
	c.incCache("miss")

	res := c.inner.Fetch(ctx, q, ep)
	if !res.Empty() {
		c.putToCache(ctx, key, res.Records())
	}
	return res
}

func (c *CachedFetcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedFetcher) cacheKey(q *query.SearchQuery, ep endpoint.Endpoint) (string, bool) {
	payload, err := q.MarshalCompact()
	if err != nil {
		c.logger.Warn("Failed to encode query for cache key", zap.Error(err))
		return "", false
	}
	h := sha256.Sum256(payload)
	return c.prefix + "search:" + string(ep) + ":" + hex.EncodeToString(h[:]), true
}

func (c *CachedFetcher) getFromCache(ctx context.Context, key string) ([]document.Record, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached search", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var records []document.Record
	if err := json.Unmarshal(data, &records); err != nil {
		c.logger.Warn("Dropping unreadable cached search", zap.String("key", key), zap.Error(err))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to delete cached search", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	return records, true
}

func (c *CachedFetcher) putToCache(ctx context.Context, key string, records []document.Record) {
	data, err := json.Marshal(records)
	if err != nil {
		c.logger.Warn("Failed to encode search for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache search", zap.String("key", key), zap.Error(err))
	}
}

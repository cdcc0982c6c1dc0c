package reliefqa

import (
	"context"
	"fmt"
	"net/http"
	"time"

	dbRedis "github.com/kailas-cloud/reliefqa/internal/db/redis"
	"github.com/kailas-cloud/reliefqa/internal/domain/conversation"
	"github.com/kailas-cloud/reliefqa/internal/domain/fetch"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
	"github.com/kailas-cloud/reliefqa/internal/metrics"
	"github.com/kailas-cloud/reliefqa/internal/repository/searchcache"
	sessionrepo "github.com/kailas-cloud/reliefqa/internal/repository/session"
	"github.com/kailas-cloud/reliefqa/internal/transport/htmltext"
	llm "github.com/kailas-cloud/reliefqa/internal/transport/openai"
	"github.com/kailas-cloud/reliefqa/internal/transport/reliefweb"
	chatuc "github.com/kailas-cloud/reliefqa/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/reliefqa/internal/usecase/health"
	searchuc "github.com/kailas-cloud/reliefqa/internal/usecase/search"
	"github.com/kailas-cloud/reliefqa/internal/version"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultTimeout          = 30 * time.Second
	defaultLLMTimeout       = 60 * time.Second
)

// Internal interfaces, swapped out in tests.
type searchUseCase interface {
	Search(ctx context.Context, ep endpoint.Endpoint, params query.Params) (query.SearchQuery, fetch.Result, error)
}

type chatUseCase interface {
	CreateSession(ctx context.Context) (*conversation.Session, error)
	GetSession(ctx context.Context, id string) (*conversation.Session, error)
	ResetSession(ctx context.Context, id string) error
	Ask(ctx context.Context, sessionID, question string) (conversation.ExchangeResult, error)
}

// Client is the reliefqa SDK entry point.
type Client struct {
	store     *dbRedis.Store
	searchSvc searchUseCase
	chatSvc   chatUseCase // nil without WithLLM
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. When a cache is configured the provided context
// bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store *dbRedis.Store
	if len(cfg.cacheAddrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("reliefqa: create cache store: %w", err)
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("reliefqa: cache not ready: %w", err)
		}
	}

	return wireClient(cfg, store, obs), nil
}

func wireClient(cfg *clientConfig, store *dbRedis.Store, obs *observer) *Client {
	timeout := cfg.timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	ua := version.UserAgent()
	var fetcher searchuc.Fetcher = reliefweb.NewClient(&reliefweb.Config{
		BaseURL:         cfg.baseURL,
		HTTPClient:      hc,
		Bodies:          htmltext.New(htmltext.Config{Client: hc, UserAgent: ua}),
		BodyConcurrency: cfg.bodyConcurrency,
		Timeout:         timeout,
		UserAgent:       ua,
	})

	// Pass nil interface (not typed nil pointer!) to health when there is no store.
	var cachePinger healthuc.CachePinger
	if store != nil {
		fetcher = searchcache.New(fetcher, store, searchcache.Config{
			TTL:        cfg.cacheTTL,
			CacheTotal: metrics.SearchCacheTotal,
		})
		cachePinger = store
	}

	searchSvc := searchuc.New(query.NewBuilder(cfg.appName), fetcher)
	c := &Client{
		store:     store,
		searchSvc: searchSvc,
		obs:       obs,
	}

	if cfg.llmAPIKey == "" {
		c.healthSvc = healthuc.New(cachePinger, nil)
		return c
	}

	model := cfg.llmModel
	if model == "" {
		model = "mistral-large-latest"
	}
	baseURL := cfg.llmBaseURL
	if baseURL == "" {
		baseURL = "https://api.mistral.ai/v1"
	}
	llmTimeout := cfg.llmTimeout
	if llmTimeout <= 0 {
		llmTimeout = defaultLLMTimeout
	}
	llmClient := llm.NewClient(&llm.Config{
		APIKey:      cfg.llmAPIKey,
		BaseURL:     baseURL,
		Model:       model,
		Temperature: cfg.temperature,
		Timeout:     llmTimeout,
	})
	var refiner chatuc.IntentRefiner
	if cfg.refineIntent {
		refiner = llmClient
	}
	chatCfg := chatuc.Config{Endpoint: cfg.chatEndpoint, Limit: cfg.chatLimit}
	if cfg.extractEntities {
		chatCfg.Entities = llmClient
	}
	if cfg.checkGroundedness {
		chatCfg.Grader = llmClient
	}

	c.chatSvc = chatuc.New(
		sessionrepo.New(cfg.maxSessions),
		searchSvc,
		llmClient,
		refiner,
		chatCfg,
	)
	c.healthSvc = healthuc.New(cachePinger, llmClient)
	return c
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Search builds the query for ep and fetches its documents.
// A failed fetch is not an error: the result carries NoData and a diagnostic.
func (c *Client) Search(ctx context.Context, ep Endpoint, params Params) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	q, fr, err := c.searchSvc.Search(ctx, ep, params)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	res = searchResultFrom(q, fr)
	c.obs.searched(ep, res)
	return res, nil
}

// NewSession starts a chat session and returns its ID.
func (c *Client) NewSession(ctx context.Context) (id string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("new_session", start, err) }()

	if c.chatSvc == nil {
		return "", ErrLLMNotConfigured
	}
	sess, err := c.chatSvc.CreateSession(ctx)
	if err != nil {
		return "", fmt.Errorf("new session: %w", err)
	}
	return sess.ID(), nil
}

// History returns the answered turns of a session, oldest first.
func (c *Client) History(ctx context.Context, sessionID string) (turns []Turn, err error) {
	start := time.Now()
	defer func() { c.obs.observe("history", start, err) }()

	if c.chatSvc == nil {
		return nil, ErrLLMNotConfigured
	}
	sess, err := c.chatSvc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return turnsFrom(sess.Turns()), nil
}

// Ask answers a question inside a session. Repeated topics are served from
// the session history; failures produce a fallback answer, not an error.
func (c *Client) Ask(ctx context.Context, sessionID, question string) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	if c.chatSvc == nil {
		return Answer{}, ErrLLMNotConfigured
	}
	res, err := c.chatSvc.Ask(ctx, sessionID, question)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	ans = answerFrom(res)
	c.obs.answered(ans)
	return ans, nil
}

// ResetSession deletes a session and its history.
func (c *Client) ResetSession(ctx context.Context, sessionID string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("reset_session", start, err) }()

	if c.chatSvc == nil {
		return ErrLLMNotConfigured
	}
	if err := c.chatSvc.ResetSession(ctx, sessionID); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

package reliefqa

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL         string
	appName         string
	httpClient      *http.Client
	timeout         time.Duration
	bodyConcurrency int

	llmAPIKey         string
	llmBaseURL        string
	llmModel          string
	llmTimeout        time.Duration
	temperature       float32
	refineIntent      bool
	extractEntities   bool
	checkGroundedness bool

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	chatEndpoint Endpoint
	chatLimit    int
	maxSessions  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithBaseURL overrides the ReliefWeb API address.
// Defaults to https://api.reliefweb.int/v1.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithAppName sets the appname sent with every query. Default: "myapp".
func WithAppName(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.appName = name
	})
}

// WithHTTPClient sets the client used for the search API and article pages.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout bounds every ReliefWeb call. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithBodyConcurrency limits parallel article page downloads per search. Default: 4.
func WithBodyConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.bodyConcurrency = n
	})
}

// WithLLM configures the OpenAI-compatible chat model. Required for Ask.
// Empty baseURL and model fall back to Mistral (mistral-large-latest).
func WithLLM(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.llmAPIKey = apiKey
		c.llmBaseURL = baseURL
		c.llmModel = model
	})
}

// WithTemperature sets the sampling temperature of the chat model.
func WithTemperature(t float32) Option {
	return optionFunc(func(c *clientConfig) {
		c.temperature = t
	})
}

// WithIntentRefinement lets the model rewrite follow-up questions into
// standalone search queries using the session history.
func WithIntentRefinement() Option {
	return optionFunc(func(c *clientConfig) {
		c.refineIntent = true
	})
}

// WithLLMTimeout bounds every model call. Default: 60s.
func WithLLMTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.llmTimeout = d
	})
}

// WithEntityExtraction lets the model pick locations, disaster types and years
// out of a question and turn them into search filters.
func WithEntityExtraction() Option {
	return optionFunc(func(c *clientConfig) {
		c.extractEntities = true
	})
}

// WithGroundednessCheck scores every fresh answer from 1 to 5 against the
// documents it was written from. The score is reported in Answer.Groundedness.
func WithGroundednessCheck() Option {
	return optionFunc(func(c *clientConfig) {
		c.checkGroundedness = true
	})
}

// WithRedisCache caches search results in Redis or Valkey for ttl.
func WithRedisCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithChatEndpoint picks the endpoint chat questions are searched on. Default: Reports.
func WithChatEndpoint(ep Endpoint, limit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chatEndpoint = ep
		c.chatLimit = limit
	})
}

// WithMaxSessions bounds the number of live chat sessions. Default: 1000.
func WithMaxSessions(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxSessions = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

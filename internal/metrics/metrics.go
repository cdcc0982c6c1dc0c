package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "reliefqa"

// ReliefWeb API metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reliefweb_requests_total",
			Help:      "Total number of ReliefWeb search requests",
		},
		[]string{"endpoint", "status"}, // "ok" / "no_data"
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reliefweb_request_duration_seconds",
			Help:      "ReliefWeb search duration in seconds, body fetches included",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	SearchResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reliefweb_results_total",
			Help:      "Total number of documents returned by ReliefWeb",
		},
		[]string{"endpoint"},
	)

	BodyFetchErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reliefweb_body_fetch_errors_total",
			Help:      "Article body downloads that failed and were replaced by an empty body",
		},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

// LLM metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM completion requests",
		},
		[]string{"model", "purpose", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM completion duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model", "purpose"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"model", "type"},
	)

	LLMBudgetRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_budget_rejected_total",
			Help:      "LLM requests refused because the token budget is spent",
		},
	)
)

// Chat metrics.
var (
	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answered questions by outcome",
		},
		[]string{"outcome"}, // "cached" / "fresh" / "fallback"
	)

	AnswerGroundedness = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "answer_groundedness",
			Help:      "Groundedness score (1-5) of graded answers",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Chat sessions currently held in memory",
		},
	)
)

var registered bool

// Register registers the service metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(
		SearchRequestsTotal,
		SearchRequestDuration,
		SearchResultsTotal,
		BodyFetchErrorsTotal,
		SearchCacheTotal,
		LLMRequestsTotal,
		LLMRequestDuration,
		LLMTokensTotal,
		LLMBudgetRejectedTotal,
		AnswersTotal,
		AnswerGroundedness,
		ActiveSessions,
		httpRequestDuration,
		httpRequestsTotal,
		httpInFlight,
	)
	registered = true
}

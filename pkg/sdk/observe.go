package reliefqa

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// clientMetrics are the SDK's own collectors, registered only on request.
type clientMetrics struct {
	calls    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	noData   *prometheus.CounterVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reliefqa",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK calls by operation and status.",
		}, []string{"operation", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reliefqa",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK call latency; ask includes search and summarization.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reliefqa",
			Subsystem: "sdk",
			Name:      "answers_total",
			Help:      "Answered questions by outcome (cached, fresh, fallback).",
		}, []string{"outcome"}),
		noData: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reliefqa",
			Subsystem: "sdk",
			Name:      "search_no_data_total",
			Help:      "Searches that came back without data, by endpoint.",
		}, []string{"endpoint"}),
	}
	if err := registerOrReuse(reg, &m.calls); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.latency); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.outcomes); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.noData); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse lets several clients share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("reliefqa: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("reliefqa: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer logs and counts SDK calls. A nil observer does nothing.
type observer struct {
	logger  *slog.Logger
	metrics *clientMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records one finished call of op.
func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.calls.WithLabelValues(op, status).Inc()
		o.metrics.latency.WithLabelValues(op).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("reliefqa call failed", "op", op, "duration", dur, "error", err)
		return
	}
	o.logger.Debug("reliefqa call done", "op", op, "duration", dur)
}

// answered counts an Ask outcome. Fallbacks are logged: the user got the apology.
func (o *observer) answered(a Answer) {
	if o == nil {
		return
	}
	if o.metrics != nil {
		o.metrics.outcomes.WithLabelValues(string(a.Outcome)).Inc()
	}
	if o.logger != nil && a.Outcome == OutcomeFallback {
		o.logger.Info("question not answered", "query", a.Query)
	}
}

// searched counts a search that returned no data.
func (o *observer) searched(ep Endpoint, res SearchResult) {
	if o == nil || !res.NoData {
		return
	}
	if o.metrics != nil {
		o.metrics.noData.WithLabelValues(string(ep)).Inc()
	}
	if o.logger != nil {
		o.logger.Info("search returned no data", "endpoint", string(ep), "diagnostic", res.Diagnostic)
	}
}

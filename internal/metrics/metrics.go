// Package metrics exposes Prometheus instrumentation for the tokenizer
// service. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
)

const namespace = "jtok"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	tokens      *prometheus.CounterVec
	inflight    prometheus.Gauge
	rejected    *prometheus.CounterVec
	dictEntries *prometheus.GaugeVec
}

// New creates and registers the collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"route"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens produced by lexicon.",
		}, []string{"lex_type"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inflight_workers",
			Help:      "Tokenize workers currently running.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_requests_total",
			Help:      "Requests rejected before tokenizing, by reason.",
		}, []string{"reason"}),
		dictEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dictionary_entries",
			Help:      "Entries in the loaded dictionary by lexicon.",
		}, []string{"lex_type"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.tokens,
		m.inflight,
		m.rejected,
		m.dictEntries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route).Observe(d.Seconds())
}

// AddTokens counts n tokens drawn from lexType.
func (m *Metrics) AddTokens(lexType dictionary.LexType, n int) {
	if m == nil || n == 0 {
		return
	}
	m.tokens.WithLabelValues(lexType.String()).Add(float64(n))
}

// WorkerStarted marks a worker as running and returns the matching done func.
func (m *Metrics) WorkerStarted() func() {
	if m == nil {
		return func() {}
	}
	m.inflight.Inc()
	return m.inflight.Dec
}

func (m *Metrics) Reject(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// SetDictionary publishes the entry counts of a loaded dictionary.
func (m *Metrics) SetDictionary(s dictionary.Stats) {
	if m == nil {
		return
	}
	m.dictEntries.WithLabelValues(dictionary.LexTypeSystem.String()).Set(float64(s.SystemEntries))
	m.dictEntries.WithLabelValues(dictionary.LexTypeUser.String()).Set(float64(s.UserEntries))
	m.dictEntries.WithLabelValues(dictionary.LexTypeUnknown.String()).Set(float64(s.UnknownEntries))
}

package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the parser.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ParsesTotal          *prometheus.CounterVec
	ParseDuration        *prometheus.HistogramVec
	StrategyAttempts     *prometheus.CounterVec
	ComplexityScore      prometheus.Histogram
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

// NewMetrics creates all metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.ParsesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_parser_requests_total",
			Help: "Total number of parse invocations by final parsing method and success",
		},
		[]string{"method", "success"},
	)

	m.ParseDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_parser_duration_seconds",
			Help:    "End-to-end parse duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 45, 60},
		},
		[]string{"method"},
	)

	m.StrategyAttempts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_parser_strategy_attempts_total",
			Help: "Strategy attempts by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	m.ComplexityScore = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_parser_complexity_score",
			Help:    "Distribution of document complexity scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_parser_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_parser_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	m.HTTPRequestsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "resume_parser_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	return m
}

// ObserveParse records a finished parse
func (m *Metrics) ObserveParse(method string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.ParsesTotal.WithLabelValues(method, strconv.FormatBool(success)).Inc()
	m.ParseDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveAttempt records one strategy attempt
func (m *Metrics) ObserveAttempt(strategy, outcome string) {
	if m == nil {
		return
	}
	m.StrategyAttempts.WithLabelValues(strategy, outcome).Inc()
}

// ObserveComplexity records a document's complexity score
func (m *Metrics) ObserveComplexity(score float64) {
	if m == nil {
		return
	}
	m.ComplexityScore.Observe(score)
}

// ObserveHTTP records a finished HTTP request
func (m *Metrics) ObserveHTTP(path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(path).Observe(d.Seconds())
}

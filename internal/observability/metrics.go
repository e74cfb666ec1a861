// Package observability exposes the Prometheus metrics of the API, the
// scoring client and the EDGAR sync worker.
package observability

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing,
// which keeps tests and one-off commands free of registry setup.
type Metrics struct {
	namespace string

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	scoresRecorded      *prometheus.CounterVec
	scoringDuration     *prometheus.HistogramVec
	edgarSyncsTotal     *prometheus.CounterVec
	edgarFilingsUpserts prometheus.Counter
	edgarCacheLookups   *prometheus.CounterVec
}

// New creates the collectors prefixed with namespace and registers them on
// reg. Registration panics on duplicate names.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{namespace: namespace}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_http_requests_total", namespace),
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_http_request_duration_seconds", namespace),
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.scoresRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_scores_recorded_total", namespace),
			Help: "Score history entries appended, by resulting trend",
		},
		[]string{"trend"},
	)

	// Scoring calls run an LLM upstream and routinely take tens of seconds.
	m.scoringDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_scoring_request_duration_seconds", namespace),
			Help:    "Latency of calls to the external scoring endpoint",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		},
		[]string{"outcome"},
	)

	m.edgarSyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_edgar_syncs_total", namespace),
			Help: "Per-SPAC EDGAR sync attempts by outcome",
		},
		[]string{"outcome"},
	)

	m.edgarFilingsUpserts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_edgar_filings_upserted_total", namespace),
			Help: "Filings inserted or updated from EDGAR",
		},
	)

	m.edgarCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_edgar_cache_lookups_total", namespace),
			Help: "EDGAR submissions cache lookups by result",
		},
		[]string{"result"},
	)

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.scoresRecorded,
		m.scoringDuration,
		m.edgarSyncsTotal,
		m.edgarFilingsUpserts,
		m.edgarCacheLookups,
	)

	return m
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordScore counts an appended score entry.
func (m *Metrics) RecordScore(trend string) {
	if m == nil {
		return
	}
	m.scoresRecorded.WithLabelValues(trend).Inc()
}

// ObserveScoringCall records the latency of one scoring request.
func (m *Metrics) ObserveScoringCall(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.scoringDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordEdgarSync counts one SPAC sync with its outcome and the number of
// filings written.
func (m *Metrics) RecordEdgarSync(outcome string, upserted int) {
	if m == nil {
		return
	}
	m.edgarSyncsTotal.WithLabelValues(outcome).Inc()
	m.edgarFilingsUpserts.Add(float64(upserted))
}

// RecordEdgarCache counts a cache hit or miss.
func (m *Metrics) RecordEdgarCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.edgarCacheLookups.WithLabelValues(result).Inc()
}

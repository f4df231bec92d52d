// Package metrics provides Prometheus metrics for the sync engine.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"
)

const namespace = "shopify_sync"

// Metrics holds the sync engine collectors. It records run outcomes and
// upstream API requests.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec
	RunDuration       *prometheus.HistogramVec
	RecordsTotal      *prometheus.CounterVec
	PagesFetched      *prometheus.CounterVec
	APIRequestsTotal  *prometheus.CounterVec
	APIRequestSeconds *prometheus.HistogramVec
}

var _ ports.SyncMetrics = (*Metrics)(nil)

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "total",
				Help:      "Total number of finished sync runs by entity type and status",
			},
			[]string{"entity_type", "status"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "run",
				Name:      "duration_seconds",
				Help:      "Duration of sync runs in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 900},
			},
			[]string{"entity_type"},
		),
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "records",
				Name:      "total",
				Help:      "Total number of upserted records by entity type and outcome",
			},
			[]string{"entity_type", "outcome"},
		),
		PagesFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "walker",
				Name:      "pages_fetched_total",
				Help:      "Total number of pages fetched from the Admin API",
			},
			[]string{"entity_type"},
		),
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api_client",
				Name:      "requests_total",
				Help:      "Total number of Admin API requests by operation and status code",
			},
			[]string{"operation", "status_code"},
		),
		APIRequestSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api_client",
				Name:      "request_duration_seconds",
				Help:      "Duration of Admin API requests in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
	}
}

// RunFinished records a terminal run
func (m *Metrics) RunFinished(entity domain.EntityType, status domain.SyncStatus, seconds float64) {
	m.RunsTotal.WithLabelValues(string(entity), string(status)).Inc()
	m.RunDuration.WithLabelValues(string(entity)).Observe(seconds)
}

// RecordsUpserted adds a run's final counters
func (m *Metrics) RecordsUpserted(entity domain.EntityType, counters domain.SyncCounters) {
	e := string(entity)
	m.RecordsTotal.WithLabelValues(e, "created").Add(float64(counters.Created))
	m.RecordsTotal.WithLabelValues(e, "updated").Add(float64(counters.Updated))
	m.RecordsTotal.WithLabelValues(e, "failed").Add(float64(counters.Failed))
}

// PageFetched counts one fetched page
func (m *Metrics) PageFetched(entity domain.EntityType) {
	m.PagesFetched.WithLabelValues(string(entity)).Inc()
}

// ObserveRequest records one Admin API request. A status of 0 means the
// request failed before a response arrived.
func (m *Metrics) ObserveRequest(operation string, status int, seconds float64) {
	m.APIRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.APIRequestSeconds.WithLabelValues(operation).Observe(seconds)
}

package metrics

import (
	"sync"
	"time"

	"github.com/go-authgate/dbrealm/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements Recorder interface at compile time
var _ core.Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Principal resolution
	LookupsTotal   *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec

	// Principal cache
	CacheResultsTotal *prometheus.CounterVec

	// Store queries
	QueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) core.Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

func initMetrics() *Metrics {
	return &Metrics{
		LookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbrealm_lookups_total",
				Help: "Total principal lookups by result",
			},
			[]string{"result"},
		),
		LookupDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dbrealm_lookup_duration_seconds",
				Help:    "Principal lookup duration by result",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		CacheResultsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbrealm_cache_results_total",
				Help: "Principal cache hits and misses",
			},
			[]string{"result"},
		),
		QueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbrealm_query_errors_total",
				Help: "Store query failures by query kind",
			},
			[]string{"query"},
		),
	}
}

// RecordLookup records one principal resolution outcome.
func (m *Metrics) RecordLookup(result string, duration time.Duration) {
	m.LookupsTotal.WithLabelValues(result).Inc()
	m.LookupDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordCacheResult records a principal-cache hit or miss.
func (m *Metrics) RecordCacheResult(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheResultsTotal.WithLabelValues(result).Inc()
}

// RecordQueryError records a store query failure.
func (m *Metrics) RecordQueryError(query string) {
	m.QueryErrorsTotal.WithLabelValues(query).Inc()
}

package providers

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"qrd/internal/store"
	"qrd/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncRedirect(outcome string)
	IncVisitsRecorded()
	IncRotations()
	IncSyncApplies(outcome string)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	redirectsTotal  *prometheus.CounterVec
	visitsTotal     prometheus.Counter
	rotationsTotal  prometheus.Counter
	syncTotal       *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncRedirect(outcome string) {
	m.redirectsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) IncVisitsRecorded() {
	m.visitsTotal.Inc()
}

func (m *MetricsProvider) IncRotations() {
	m.rotationsTotal.Inc()
}

func (m *MetricsProvider) IncSyncApplies(outcome string) {
	m.syncTotal.WithLabelValues(outcome).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, st store.Store) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "qrd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qrd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qrd_cache_hits_total",
			Help: "Total number of retired-token cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qrd_cache_misses_total",
			Help: "Total number of retired-token cache misses",
		}),

		redirectsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "qrd_redirects_total",
			Help: "Redirect lookups by outcome (current, superseded, unknown)",
		}, []string{"outcome"}),

		visitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qrd_visits_recorded_total",
			Help: "Total number of scan visits appended",
		}),

		rotationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qrd_token_rotations_total",
			Help: "Total number of token rotations",
		}),

		syncTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "qrd_sync_applies_total",
			Help: "Snapshot pushes by outcome (applied, failed)",
		}, []string{"outcome"}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "qrd_customers_total",
		Help: "Current number of customer records",
	}, func() float64 {
		n, err := st.CountCustomers(context.Background())
		if err != nil {
			return 0
		}
		return float64(n)
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncRedirect(_ string)                             {}
func (n *noopMetrics) IncVisitsRecorded()                               {}
func (n *noopMetrics) IncRotations()                                    {}
func (n *noopMetrics) IncSyncApplies(_ string)                          {}

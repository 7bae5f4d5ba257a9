package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mwTestMetrics struct {
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
}

func (m *mwTestMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *mwTestMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durationCalls++ }
func (m *mwTestMetrics) IncCacheHits()                                    {}
func (m *mwTestMetrics) IncCacheMisses()                                  {}
func (m *mwTestMetrics) IncRedirect(_ string)                             {}
func (m *mwTestMetrics) IncVisitsRecorded()                               {}
func (m *mwTestMetrics) IncRotations()                                    {}
func (m *mwTestMetrics) IncSyncApplies(_ string)                          {}

func TestMetricsMiddleware_CapturesStatusAndEndpoint(t *testing.T) {
	metrics := &mwTestMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	mw := MetricsMiddleware(metrics, handler)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, 1, metrics.requestCalls)
	assert.Equal(t, "/health", metrics.requestEndpoint)
	assert.Equal(t, http.StatusCreated, metrics.requestStatus)
	assert.Equal(t, 1, metrics.durationCalls)
}

func TestMetricsMiddleware_DefaultStatus200(t *testing.T) {
	metrics := &mwTestMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	mw := MetricsMiddleware(metrics, handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, metrics.requestStatus)
}

// Mounted inside the chi router, the middleware must report the bounded
// route pattern instead of the raw token-bearing path.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	metrics := &mwTestMetrics{}

	rp := NewRouterProvider()
	rp.Use(func(next http.Handler) http.Handler {
		return MetricsMiddleware(metrics, next)
	})
	rp.Get("/r/{token}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/r/some-long-random-token", nil)
	rr := httptest.NewRecorder()
	rp.Handler().ServeHTTP(rr, req)

	assert.Equal(t, "/r/{token}", metrics.requestEndpoint)
	assert.Equal(t, http.StatusFound, metrics.requestStatus)
}

func TestStatusWriter_WriteHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	sw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, sw.status)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

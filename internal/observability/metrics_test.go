package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")

	require.NotNil(t, m)
	assert.NotNil(t, m.Registry())
	assert.NotNil(t, m.Handler())
}

func TestNewMetrics_DefaultNamespace(t *testing.T) {
	t.Parallel()

	m := NewMetrics("")
	m.ObserveUpstream("/businesses/search", 200, time.Millisecond)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	family := findFamily(families, "restoproxy_upstream_requests_total")
	require.NotNil(t, family)
	assert.Equal(t, dto.MetricType_COUNTER, family.GetType())
	require.Len(t, family.GetMetric(), 1)
	assert.Equal(t, float64(1), family.GetMetric()[0].GetCounter().GetValue())
}

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")

	m.RecordRequest("GET", "/api/yelp/restaurants/:id", 200, 10*time.Millisecond)
	m.RecordRequest("GET", "/api/yelp/restaurants/:id", 200, 20*time.Millisecond)
	m.RecordRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/yelp/restaurants/:id", "200")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", UnmatchedRoute, "404")))
}

func TestMetrics_ActiveRequests(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")

	m.IncActiveRequests()
	m.IncActiveRequests()
	m.DecActiveRequests()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.activeRequests))
}

func TestMetrics_ObserveUpstream(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")

	m.ObserveUpstream("/businesses/search", 200, 5*time.Millisecond)
	m.ObserveUpstream("/businesses/search", 401, 5*time.Millisecond)
	m.ObserveUpstream("/businesses/{id}", 0, time.Second)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.upstreamTotal.WithLabelValues("/businesses/search", "200")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.upstreamTotal.WithLabelValues("/businesses/search", "401")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.upstreamTotal.WithLabelValues("/businesses/{id}", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.upstreamDuration))
}

func TestMetrics_SetCircuitBreakerState(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")

	m.SetCircuitBreakerState("upstream", 2)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.circuitBreaker.WithLabelValues("upstream")))

	m.SetCircuitBreakerState("upstream", 0)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.circuitBreaker.WithLabelValues("upstream")))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := NewMetrics("test")
	m.SetBuildInfo("1.0.0", "abc123", "2026-01-01")
	m.RecordRequest("GET", "/", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_build_info")
	assert.Contains(t, string(body), "test_requests_total")
	assert.Contains(t, string(body), `version="1.0.0"`)
}

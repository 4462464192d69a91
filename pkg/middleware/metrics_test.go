package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectMetric returns the first series of c whose labels include labels.
func collectMetric(t *testing.T, c prometheus.Collector, labels map[string]string) *dto.Metric {
	if t != nil {
		t.Helper()
	}
	ch := make(chan prometheus.Metric, 100)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}
		got := make(map[string]string, len(d.GetLabel()))
		for _, lp := range d.GetLabel() {
			got[lp.GetName()] = lp.GetValue()
		}
		match := true
		for k, v := range labels {
			if got[k] != v {
				match = false
				break
			}
		}
		if match {
			return d
		}
	}
	return nil
}

// storefrontRouter mounts handler on a product route and a cart route so
// route patterns are available to the middleware.
func storefrontRouter(service string, handler http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Get("/api/v1/products/{id}", handler)
	r.Put("/api/v1/cart/items/{productId}/{size}/{color}", handler)
	return r
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestPrometheusMetrics_LabelsByRoutePattern(t *testing.T) {
	router := storefrontRouter("pattern-svc", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"dc-001", "dc-002", "dc-003"} {
		require.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/v1/products/"+id).Code)
	}

	m := collectMetric(t, httpRequestsTotal, map[string]string{
		"service": "pattern-svc", "method": "GET", "path": "/api/v1/products/{id}", "status": "200",
	})
	require.NotNil(t, m, "product ids collapse into one series")
	assert.Equal(t, float64(3), m.GetCounter().GetValue())

	assert.Nil(t, collectMetric(t, httpRequestsTotal, map[string]string{
		"service": "pattern-svc", "path": "/api/v1/products/dc-001",
	}))
}

func TestPrometheusMetrics_CartLineRoute(t *testing.T) {
	router := storefrontRouter("cart-svc", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve(router, http.MethodPut, "/api/v1/cart/items/dc-001/M/Off%20White")

	m := collectMetric(t, httpRequestDuration, map[string]string{
		"service": "cart-svc", "method": "PUT", "path": "/api/v1/cart/items/{productId}/{size}/{color}",
	})
	require.NotNil(t, m)
	assert.Equal(t, uint64(1), m.GetHistogram().GetSampleCount())
}

func TestPrometheusMetrics_UnmatchedRoute(t *testing.T) {
	router := storefrontRouter("unmatched-svc", func(w http.ResponseWriter, r *http.Request) {})

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/nowhere").Code)

	m := collectMetric(t, httpRequestsTotal, map[string]string{
		"service": "unmatched-svc", "path": "unknown", "status": "404",
	})
	require.NotNil(t, m)
}

func TestPrometheusMetrics_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"ok", http.StatusOK, "200"},
		{"not found", http.StatusNotFound, "404"},
		{"too many requests", http.StatusTooManyRequests, "429"},
		{"unavailable", http.StatusServiceUnavailable, "503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := "status-" + tt.want
			router := storefrontRouter(svc, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			serve(router, http.MethodGet, "/api/v1/products/dc-001")

			m := collectMetric(t, httpRequestsTotal, map[string]string{"service": svc, "status": tt.want})
			require.NotNil(t, m)
			assert.Equal(t, float64(1), m.GetCounter().GetValue())
		})
	}
}

func TestPrometheusMetrics_ImplicitOK(t *testing.T) {
	router := storefrontRouter("implicit-svc", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	serve(router, http.MethodGet, "/api/v1/products/dc-001")

	require.NotNil(t, collectMetric(t, httpRequestsTotal, map[string]string{"service": "implicit-svc", "status": "200"}))
}

func TestPrometheusMetrics_InFlightGauge(t *testing.T) {
	seen := float64(-1)
	router := storefrontRouter("inflight-svc", func(w http.ResponseWriter, r *http.Request) {
		if m := collectMetric(nil, httpRequestsInFlight, map[string]string{"service": "inflight-svc"}); m != nil {
			seen = m.GetGauge().GetValue()
		}
	})
	serve(router, http.MethodGet, "/api/v1/products/dc-001")

	assert.Equal(t, float64(1), seen)
	m := collectMetric(t, httpRequestsInFlight, map[string]string{"service": "inflight-svc"})
	require.NotNil(t, m)
	assert.Zero(t, m.GetGauge().GetValue())
}

// mockFlusherWriter records Flush calls.
type mockFlusherWriter struct {
	http.ResponseWriter
	flushed bool
}

func (m *mockFlusherWriter) Flush() { m.flushed = true }

// mockHijackerWriter records Hijack calls.
type mockHijackerWriter struct {
	http.ResponseWriter
	hijacked bool
}

func (m *mockHijackerWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	m.hijacked = true
	return nil, nil, nil
}

// minimalResponseWriter supports neither Flush nor Hijack.
type minimalResponseWriter struct {
	header http.Header
}

func (m *minimalResponseWriter) Header() http.Header {
	if m.header == nil {
		m.header = make(http.Header)
	}
	return m.header
}

func (m *minimalResponseWriter) Write(b []byte) (int, error) { return len(b), nil }

func (m *minimalResponseWriter) WriteHeader(int) {}

func TestMetricsResponseWriter_Delegation(t *testing.T) {
	flusher := &mockFlusherWriter{ResponseWriter: httptest.NewRecorder()}
	(&metricsResponseWriter{ResponseWriter: flusher}).Flush()
	assert.True(t, flusher.flushed)

	hijacker := &mockHijackerWriter{ResponseWriter: httptest.NewRecorder()}
	_, _, err := (&metricsResponseWriter{ResponseWriter: hijacker}).Hijack()
	require.NoError(t, err)
	assert.True(t, hijacker.hijacked)
}

func TestMetricsResponseWriter_Unsupported(t *testing.T) {
	rw := &metricsResponseWriter{ResponseWriter: &minimalResponseWriter{}}

	assert.NotPanics(t, rw.Flush)
	_, _, err := rw.Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}

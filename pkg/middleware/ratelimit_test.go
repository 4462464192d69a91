package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func sendFrom(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimit_WithinBurst_Pass(t *testing.T) {
	handler := RateLimit(10, 10, newTestLogger(&bytes.Buffer{}))(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, sendFrom(handler, "192.168.1.1:12345").Code, "request %d should pass", i+1)
	}
}

func TestRateLimit_ExceedingBurst_Returns429(t *testing.T) {
	var buf bytes.Buffer
	handler := RateLimit(0.001, 3, newTestLogger(&buf))(okHandler())

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, sendFrom(handler, "10.0.0.1:12345").Code)
	}

	rr := sendFrom(handler, "10.0.0.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), `"code":"RATE_LIMITED"`)
	assert.Contains(t, buf.String(), "rate limit exceeded")
}

func TestRateLimit_DifferentIPs_IndependentLimits(t *testing.T) {
	handler := RateLimit(0.001, 2, newTestLogger(&bytes.Buffer{}))(okHandler())

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, sendFrom(handler, "10.0.0.1:12345").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(handler, "10.0.0.1:12345").Code)
	assert.Equal(t, http.StatusOK, sendFrom(handler, "10.0.0.2:12345").Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	handler := RateLimit(0, 0, newTestLogger(&bytes.Buffer{}))(okHandler())

	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, sendFrom(handler, "10.0.0.1:12345").Code)
	}
}

func TestVisitorStore_EvictsIdleVisitors(t *testing.T) {
	now := time.Now()
	s := newVisitorStore(1, 1, time.Minute)
	s.now = func() time.Time { return now }
	s.lastSweep = now

	assert.True(t, s.allow("10.0.0.1"))
	assert.True(t, s.allow("10.0.0.2"))
	assert.Equal(t, 2, s.len())

	now = now.Add(30 * time.Second)
	assert.True(t, s.allow("10.0.0.2"))

	now = now.Add(45 * time.Second)
	assert.True(t, s.allow("10.0.0.3"))
	assert.Equal(t, 2, s.len(), "10.0.0.1 idle past the ttl is evicted")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "203.0.113.7:4321", nil, "203.0.113.7"},
		{"remote addr without port", "203.0.113.7", nil, "203.0.113.7"},
		{"forwarded chain", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "198.51.100.2, 10.0.0.1"}, "198.51.100.2"},
		{"forwarded garbage falls through", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "nope"}, "10.0.0.1"},
		{"real ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

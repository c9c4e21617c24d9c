package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clubhouse/pkg/logger"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestClientRateLimiter_Allow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := NewClientRateLimiter(2, time.Minute, nil, clock, logger.Discard())
	defer limiter.Stop()

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"), "other clients are tracked separately")

	clock.Advance(time.Minute)
	assert.True(t, limiter.Allow("10.0.0.1"), "window slides")
}

func TestClientRateLimiter_EmptyKeyAlwaysAllowed(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute, nil, clockwork.NewFakeClock(), logger.Discard())
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow(""))
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute, nil, clockwork.NewFakeClock(), logger.Discard())
	defer limiter.Stop()

	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/resources", nil)
		req.RemoteAddr = "192.168.1.5:51234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send().Code)
	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestClientAddress_IgnoresForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:51234"
	assert.Equal(t, "192.168.1.5", ClientAddress(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "192.168.1.5", ClientAddress(req))
}

func TestTrustedClientAddress(t *testing.T) {
	extract := TrustedClientAddress([]string{"10.0.0.0/8", "172.16.0.1", "not-an-ip"})

	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"untrusted peer ignores header", "192.168.1.5:51234", "203.0.113.9", "192.168.1.5"},
		{"trusted peer uses client hop", "10.1.2.3:443", "203.0.113.9", "203.0.113.9"},
		{"spoofed left hop is skipped", "10.1.2.3:443", "1.2.3.4, 203.0.113.9, 172.16.0.1", "203.0.113.9"},
		{"all hops trusted falls back to peer", "10.1.2.3:443", "10.9.9.9", "10.1.2.3"},
		{"trusted peer without header", "172.16.0.1:80", "", "172.16.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, extract(req))
		})
	}
}

func TestTrustedClientAddress_NoProxiesIsPeer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:51234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "192.168.1.5", TrustedClientAddress(nil)(req))
}

func TestRateLimit_RotatingForwardedForStillLimited(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute, TrustedClientAddress(nil), clockwork.NewFakeClock(), logger.Discard())
	defer limiter.Stop()

	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	allowed := 0
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/marketplace/items", nil)
		req.RemoteAddr = "198.51.100.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusNoContent {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

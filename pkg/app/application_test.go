package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clubhouse/pkg/client"
	"clubhouse/pkg/config"
	"clubhouse/pkg/logger"
	"clubhouse/pkg/metrics"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(r *httprouter.Router) {
	r.GET("/api/v1/ping", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})
	r.POST("/api/v1/ping", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusCreated)
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Port:               "8080",
		RateLimitRequests:  100,
		RateLimitWindow:    time.Minute,
		RequestTimeout:     5 * time.Second,
		IdempotencyTTL:     time.Hour,
		MaxRequestSize:     1024,
		ShutdownTimeout:    time.Second,
		CORSAllowedOrigins: []string{"https://admin.example.org"},
		MetricsEnabled:     true,
		Log:                logger.Discard(),
		Client:             client.NewClient(),
	}
}

func newTestApp(t *testing.T) http.Handler {
	t.Helper()
	a := NewApplication(testConfig(), metrics.New("test"))
	a.SetApp(pingHandler{})
	t.Cleanup(a.Stop)
	return a.Handler()
}

func TestApplication_Routes(t *testing.T) {
	h := newTestApp(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clubhouse_http_requests_total")
}

func TestApplication_RejectsNonJSONBody(t *testing.T) {
	h := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ping", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestApplication_CORSPreflight(t *testing.T) {
	h := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/ping", nil)
	req.Header.Set("Origin", "https://admin.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://admin.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}

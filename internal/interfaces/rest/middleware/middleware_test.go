package middleware_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/config"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRecovery_WritesInternalError(t *testing.T) {
	h := middleware.Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transfer", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body["message"])
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRateLimiter_RejectsAfterBurst(t *testing.T) {
	m := metrics.New()
	rl := middleware.NewRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 2}, m, discardLogger())
	h := rl.Handler(ok)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/hello", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitRejected))

	other := httptest.NewRequest(http.MethodGet, "/hello", nil)
	other.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := middleware.NewRateLimiter(config.RateLimitConfig{RPS: 5, Burst: 5}, nil, discardLogger())
	h := rl.Handler(ok)

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 0, rl.Cleanup(time.Hour))
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, rl.Cleanup(time.Millisecond))
}

func TestRateLimiter_DisabledWithZeroRate(t *testing.T) {
	rl := middleware.NewRateLimiter(config.RateLimitConfig{}, nil, discardLogger())
	h := rl.Handler(ok)

	for range 50 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestCORS_AllowsConfiguredOrigins(t *testing.T) {
	h := middleware.CORS([]string{"https://alpha.banza.xyz"})(ok)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/transfer", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	allowed := preflight("https://alpha.banza.xyz")
	assert.Equal(t, "https://alpha.banza.xyz", allowed.Header().Get("Access-Control-Allow-Origin"))

	denied := preflight("https://evil.example")
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics_CountsKnownAndUnknownPaths(t *testing.T) {
	m := metrics.New()
	h := middleware.Metrics(m, []string{"/transfer"})(ok)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/transfer", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/123", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/transfer", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "other", "200")))
}

func TestTimeout_ReturnsEnvelope(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	h := middleware.Timeout(20 * time.Millisecond)(slow)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mint", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"TIMEOUT"`)
}

func TestLogging_PassesThroughStatus(t *testing.T) {
	h := middleware.Logging(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

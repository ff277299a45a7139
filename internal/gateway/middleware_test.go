package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, perMinute, burst int) (*RateLimiter, *time.Time) {
	t.Helper()
	rl := NewRateLimiter(perMinute, burst)
	t.Cleanup(rl.Stop)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiterBurstAndMinuteWindow(t *testing.T) {
	rl, now := newTestLimiter(t, 5, 2)
	start := *now

	assert.True(t, rl.allowRequest("a"))
	assert.True(t, rl.allowRequest("a"))
	assert.False(t, rl.allowRequest("a"), "同一秒内超过突发上限")

	*now = start.Add(1100 * time.Millisecond)
	assert.True(t, rl.allowRequest("a"))
	assert.True(t, rl.allowRequest("a"))

	*now = start.Add(2200 * time.Millisecond)
	assert.True(t, rl.allowRequest("a"))
	assert.False(t, rl.allowRequest("a"), "一分钟内超过总上限")

	*now = start.Add(61200 * time.Millisecond)
	assert.True(t, rl.allowRequest("a"))
}

func TestRateLimiterTracksClientsSeparately(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 0)

	assert.True(t, rl.allowRequest("a"))
	assert.False(t, rl.allowRequest("a"))
	assert.True(t, rl.allowRequest("b"))
}

func TestRateLimiterMiddlewareRejects(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 0)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", resp.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}

func TestCORSPreflight(t *testing.T) {
	called := false
	handler := NewCORSMiddleware().Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/scores", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCacheMiddleware(t *testing.T) {
	cm := NewCacheMiddleware()
	t.Cleanup(cm.Stop)

	hits := 0
	handler := cm.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))

	get := func(etag string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/scores?limit=5", nil)
		if etag != "" {
			req.Header.Set("If-None-Match", etag)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := get("")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "application/json", first.Header().Get("Content-Type"))
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := get("")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, `[]`, second.Body.String())

	assert.Equal(t, http.StatusNotModified, get(etag).Code)
	assert.Equal(t, 1, hits)

	cm.Invalidate("/scores")
	assert.Equal(t, "MISS", get("").Header().Get("X-Cache"))
	assert.Equal(t, 2, hits)
}

func TestCacheSkipsErrorsAndOtherPaths(t *testing.T) {
	cm := NewCacheMiddleware()
	t.Cleanup(cm.Stop)

	status := http.StatusBadRequest
	handler := cm.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(`{}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scores?game=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))

	status = http.StatusOK
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 0, cm.cache.Len())
}

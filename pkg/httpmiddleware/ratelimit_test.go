package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimit_Budget(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 3, Window: time.Minute})(okHandler())

	for i, want := range []string{"2", "1", "0"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, requestFrom("10.0.0.1:1000"))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, want, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, requestFrom("10.0.0.1:2000"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"code":429,"message":"too many requests, please try again later"}`, w.Body.String())

	// Other clients keep their own budget.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, requestFrom("10.0.0.2:1000"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_Skip(t *testing.T) {
	h := RateLimit(RateLimitConfig{
		Max:    1,
		Window: time.Minute,
		Skip:   func(r *http.Request) bool { return r.URL.Path == "/livez" },
	})(okHandler())

	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/livez", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimit_CustomKeyFunc(t *testing.T) {
	h := RateLimit(RateLimitConfig{
		Max:     1,
		Window:  time.Minute,
		KeyFunc: func(r *http.Request) string { return r.Header.Get("api_key") },
	})(okHandler())

	serve := func(key string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("api_key", key)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve("a"))
	assert.Equal(t, http.StatusTooManyRequests, serve("a"))
	assert.Equal(t, http.StatusOK, serve("b"))
}

func TestLimiter_SlidingWindow(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 4, Window: time.Minute})
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for range 4 {
		_, _, ok := l.take("k", start)
		require.True(t, ok)
	}
	_, _, ok := l.take("k", start.Add(30*time.Second))
	assert.False(t, ok)

	// Halfway through the next window half of the previous count still
	// applies: 4*0.5 = 2 used, so two more requests pass.
	mid := start.Add(90 * time.Second)
	_, _, ok = l.take("k", mid)
	assert.True(t, ok)
	_, _, ok = l.take("k", mid)
	assert.True(t, ok)
	_, _, ok = l.take("k", mid)
	assert.False(t, ok)

	// Two idle windows reset the client.
	remaining, _, ok := l.take("k", start.Add(5*time.Minute))
	assert.True(t, ok)
	assert.Equal(t, 3, remaining)
}

func TestLimiter_Evict(t *testing.T) {
	l := newLimiter(RateLimitConfig{Max: 1, Window: time.Second})
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.take("old", now)
	l.take("new", now.Add(3*time.Second))

	l.evict(now.Add(3 * time.Second))
	assert.NotContains(t, l.clients, "old")
	assert.Contains(t, l.clients, "new")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:4444"
	assert.Equal(t, "192.168.1.1", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.50, 70.41.3.18")
	assert.Equal(t, "203.0.113.50", ClientIP(req))
}

package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the sliding window rate limiter.
type RateLimitConfig struct {
	// Max is the number of requests a client may make per Window.
	Max    int
	Window time.Duration
	// KeyFunc identifies the client. Defaults to ClientIP.
	KeyFunc func(*http.Request) string
	// Skip exempts requests from limiting, e.g. health probes.
	Skip func(*http.Request) bool
}

// window holds the counts of the current and previous fixed windows of one
// client. The sliding estimate weights the previous count by its overlap.
type window struct {
	start time.Time
	curr  float64
	prev  float64
}

type limiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	clients map[string]*window
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}
	return &limiter{cfg: cfg, clients: make(map[string]*window)}
}

// take consumes one request for key at now.
func (l *limiter) take(key string, now time.Time) (remaining int, reset time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.cfg.Window
	w, found := l.clients[key]
	if !found {
		w = &window{start: now.Truncate(size)}
		l.clients[key] = w
	}

	switch elapsed := now.Sub(w.start); {
	case elapsed >= 2*size:
		w.start, w.prev, w.curr = now.Truncate(size), 0, 0
	case elapsed >= size:
		w.start, w.prev, w.curr = w.start.Add(size), w.curr, 0
	}

	overlap := 1 - float64(now.Sub(w.start))/float64(size)
	used := w.prev*math.Max(overlap, 0) + w.curr
	reset = w.start.Add(size)

	if used >= float64(l.cfg.Max) {
		return 0, reset, false
	}
	w.curr++
	return max(int(float64(l.cfg.Max)-used-1), 0), reset, true
}

// evict drops clients idle for two full windows.
func (l *limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.clients {
		if now.Sub(w.start) >= 2*l.cfg.Window {
			delete(l.clients, key)
		}
	}
}

func (l *limiter) runEviction(ctx context.Context) {
	ticker := time.NewTicker(2 * l.cfg.Window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.evict(now)
		}
	}
}

// RateLimit limits each client to cfg.Max requests per sliding cfg.Window
// and answers 429 once the budget is spent. Responses carry the
// X-RateLimit-Limit, X-RateLimit-Remaining and X-RateLimit-Reset headers.
// Idle clients are never evicted; use RateLimitWithCleanup for long-running
// servers.
func RateLimit(cfg RateLimitConfig) Middleware {
	return newLimiter(cfg).middleware
}

// RateLimitWithCleanup is RateLimit with a background goroutine that evicts
// idle clients until ctx is done.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	go l.runEviction(ctx)
	return l.middleware
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.cfg.Skip != nil && l.cfg.Skip(r) {
			next.ServeHTTP(w, r)
			return
		}

		remaining, reset, ok := l.take(l.cfg.KeyFunc(r), time.Now())

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !ok {
			retry := math.Ceil(max(time.Until(reset), 0).Seconds())
			h.Set("Retry-After", strconv.Itoa(int(retry)))
			writeError(w, http.StatusTooManyRequests, "too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote host.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

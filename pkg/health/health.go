// Package health serves liveness and readiness probes.
//
// Every check runs periodically in its own goroutine. A check turns unhealthy
// after FailureThreshold consecutive failures and healthy again after
// SuccessThreshold consecutive successes, so a single slow ping does not flap
// the probe.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

const (
	defaultFailureThreshold = 3
	defaultSuccessThreshold = 1
)

type check struct {
	name    string
	kind    string
	timeout time.Duration
	fn      CheckFunc

	failureThreshold int
	successThreshold int

	// Written by the check goroutine, read by probe handlers.
	healthy atomic.Bool
	lastErr atomic.Pointer[string]

	// Owned by the check goroutine.
	fails     int
	successes int
}

// observe records one result and reports whether the health state flipped.
func (c *check) observe(err error) (changed bool) {
	was := c.healthy.Load()
	if err != nil {
		msg := err.Error()
		c.lastErr.Store(&msg)
		c.successes = 0
		c.fails++
		if c.fails >= c.failureThreshold {
			c.healthy.Store(false)
		}
	} else {
		c.lastErr.Store(nil)
		c.fails = 0
		c.successes++
		if c.successes >= c.successThreshold {
			c.healthy.Store(true)
		}
	}
	return was != c.healthy.Load()
}

func (c *check) failure() string {
	if p := c.lastErr.Load(); p != nil {
		return *p
	}
	return "check is unhealthy"
}

// Health tracks liveness and readiness of the service.
type Health struct {
	lg    *zap.Logger
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []*check
	readiness []*check
}

// New creates a Health that starts not ready. Call SetReady(true) once the
// service is initialized.
func New(lg *zap.Logger) *Health {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Health{lg: lg}
}

// AddLivenessCheck registers a check that tells whether the process works at
// all, e.g. a goroutine leak detector.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newCheck("liveness", name, timeout, fn))
}

// AddReadinessCheck registers a check that tells whether the service can take
// traffic, e.g. database connectivity.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newCheck("readiness", name, timeout, fn))
}

func newCheck(kind, name string, timeout time.Duration, fn CheckFunc) *check {
	c := &check{
		name:             name,
		kind:             kind,
		timeout:          timeout,
		fn:               fn,
		failureThreshold: defaultFailureThreshold,
		successThreshold: defaultSuccessThreshold,
	}
	c.healthy.Store(true)
	return c
}

// Run executes every registered check once immediately and then on each
// interval tick until ctx is done. Checks registered after Run are ignored.
func (h *Health) Run(ctx context.Context, interval time.Duration) error {
	h.mu.RLock()
	checks := slices.Concat(h.liveness, h.readiness)
	h.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range checks {
		g.Go(func() error {
			h.loop(ctx, c, interval)
			return nil
		})
	}
	return g.Wait()
}

func (h *Health) loop(ctx context.Context, c *check, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		h.runOnce(ctx, c)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Health) runOnce(ctx context.Context, c *check) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(checkCtx)
	if ctx.Err() != nil {
		return
	}
	if !c.observe(err) {
		return
	}

	lg := h.lg.With(zap.String("check", c.name), zap.String("kind", c.kind))
	if c.healthy.Load() {
		lg.Info("Health check recovered")
	} else {
		lg.Warn("Health check failing", zap.Error(err))
	}
}

// SetReady toggles the manual readiness flag. It is cleared during graceful
// shutdown so load balancers stop routing before the server closes.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the service is marked ready and every readiness
// check passes.
func (h *Health) IsReady() bool {
	return h.ready.Load() && len(h.failures(h.readinessChecks())) == 0
}

func (h *Health) livenessChecks() []*check {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.liveness)
}

func (h *Health) readinessChecks() []*check {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.readiness)
}

// failures maps unhealthy check names to their last error.
func (h *Health) failures(checks []*check) map[string]string {
	out := make(map[string]string)
	for _, c := range checks {
		if !c.healthy.Load() {
			out[c.name] = c.failure()
		}
	}
	return out
}

// LiveEndpoint serves /livez: 200 {"status":"ok"} when every liveness check
// passes, 503 with the failing checks otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, h.failures(h.livenessChecks()))
}

// ReadyEndpoint serves /readyz like LiveEndpoint, and also fails while the
// service is not marked ready.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(h.readinessChecks())
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	writeStatus(w, failures)
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	status := http.StatusOK
	e.ObjStart()
	e.FieldStart("status")
	if len(failures) == 0 {
		e.Str("ok")
	} else {
		status = http.StatusServiceUnavailable
		e.Str("unhealthy")

		names := make([]string, 0, len(failures))
		for name := range failures {
			names = append(names, name)
		}
		slices.Sort(names)

		e.FieldStart("checks")
		e.ObjStart()
		for _, name := range names {
			e.FieldStart(name)
			e.Str(failures[name])
		}
		e.ObjEnd()
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

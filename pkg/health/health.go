// Package health provides liveness and readiness probes. Registered checks
// run periodically in the background; the HTTP endpoints report the cached
// results, so probes stay cheap even when a check is slow.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one component, returning nil when it is healthy.
type CheckFunc func(ctx context.Context) error

// Kind separates liveness checks (is the process functional) from readiness
// checks (should it receive traffic).
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

type check struct {
	name    string
	kind    Kind
	timeout time.Duration
	fn      CheckFunc

	mu      sync.Mutex
	healthy bool
	lastErr error
}

func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(ctx)

	c.mu.Lock()
	c.healthy = err == nil
	c.lastErr = err
	c.mu.Unlock()
}

func (c *check) state() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy, c.lastErr
}

// Health runs the registered checks and serves probe endpoints.
type Health struct {
	mu     sync.Mutex
	checks []*check
	ready  bool
	cancel context.CancelFunc
}

// New returns a Health with no checks, in the not-ready state. Call
// SetReady(true) after initialization completes.
func New() *Health {
	return &Health{}
}

// Add registers a check. Register all checks before calling Start.
func (h *Health) Add(kind Kind, name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, &check{
		name:    name,
		kind:    kind,
		timeout: timeout,
		fn:      fn,
		healthy: true,
	})
}

// Start runs every check once immediately and then at the given interval,
// until Stop or ctx cancellation.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := make([]*check, len(h.checks))
	copy(checks, h.checks)
	h.mu.Unlock()

	for _, c := range checks {
		go func() {
			c.run(ctx)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					c.run(ctx)
				}
			}
		}()
	}
}

// Stop halts the background checks.
func (h *Health) Stop() {
	h.mu.Lock()
	cancel := h.cancel
	h.cancel = nil
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SetReady flips the manual readiness gate: true once initialization is
// done, false when draining during shutdown.
func (h *Health) SetReady(ready bool) {
	h.mu.Lock()
	h.ready = ready
	h.mu.Unlock()
}

// IsReady reports whether the manual gate is open and every readiness check
// passes.
func (h *Health) IsReady() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.ready {
		return false
	}
	for _, c := range h.checks {
		if c.kind != Readiness {
			continue
		}
		if ok, _ := c.state(); !ok {
			return false
		}
	}
	return true
}

// IsLive reports whether every liveness check passes.
func (h *Health) IsLive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.checks {
		if c.kind != Liveness {
			continue
		}
		if ok, _ := c.state(); !ok {
			return false
		}
	}
	return true
}

// LiveEndpoint serves the liveness probe.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, Liveness, h.IsLive())
}

// ReadyEndpoint serves the readiness probe.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, Readiness, h.IsReady())
}

func (h *Health) writeStatus(w http.ResponseWriter, kind Kind, ok bool) {
	type probe struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}

	out := probe{Status: "ok", Checks: map[string]string{}}
	if !ok {
		out.Status = "unavailable"
	}

	h.mu.Lock()
	for _, c := range h.checks {
		if c.kind != kind {
			continue
		}
		if healthy, err := c.state(); !healthy && err != nil {
			out.Checks[c.name] = err.Error()
		} else {
			out.Checks[c.name] = "ok"
		}
	}
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(out)
}

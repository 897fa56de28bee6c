// Package health provides liveness and readiness probe HTTP handlers.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Pre-serialized liveness response avoids json.Encoder allocation.
var livenessBody = []byte(`{"status":"ok"}` + "\n")

const (
	readinessCacheTTL = 5 * time.Second
	checkTimeout      = 2 * time.Second
)

// Check is one readiness dependency. Run returns nil when the dependency is
// usable.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// Handler provides /health and /ready endpoints.
type Handler struct {
	checks []Check
	logger *slog.Logger
	ttl    time.Duration

	// Cached readiness result so frequent probes do not re-run every check.
	cacheMu      sync.RWMutex
	cachedResult []byte
	cachedStatus int
	cachedAt     time.Time
}

// New creates a health Handler running checks on /ready.
func New(checks []Check, logger *slog.Logger) *Handler {
	return &Handler{checks: checks, logger: logger, ttl: readinessCacheTTL}
}

// RegisterRoutes adds the probe routes to r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.liveness).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/ready", h.readiness).Methods(http.MethodGet, http.MethodHead)
}

func (h *Handler) liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(livenessBody) //nolint:errcheck
}

func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	h.cacheMu.RLock()
	if h.cachedResult != nil && time.Since(h.cachedAt) < h.ttl {
		body := h.cachedResult
		status := h.cachedStatus
		h.cacheMu.RUnlock()
		writeJSON(w, status, body)
		return
	}
	h.cacheMu.RUnlock()

	type checkResult struct {
		name   string
		status string
		ok     bool
	}

	ch := make(chan checkResult, len(h.checks))
	for _, c := range h.checks {
		go func(c Check) {
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			defer cancel()
			if err := c.Run(ctx); err != nil {
				h.logger.Warn("readiness check failed", "check", c.Name, "error", err)
				ch <- checkResult{name: c.Name, status: err.Error()}
				return
			}
			ch <- checkResult{name: c.Name, status: "ok", ok: true}
		}(c)
	}

	results := make(map[string]string, len(h.checks))
	ready := true
	for range h.checks {
		res := <-ch
		results[res.name] = res.status
		if !res.ok {
			ready = false
		}
	}

	httpStatus := http.StatusOK
	statusStr := "ready"
	if !ready {
		httpStatus = http.StatusServiceUnavailable
		statusStr = "not ready"
	}

	body, _ := json.Marshal(map[string]interface{}{
		"status": statusStr,
		"checks": results,
	})
	body = append(body, '\n')

	h.cacheMu.Lock()
	h.cachedResult = body
	h.cachedStatus = httpStatus
	h.cachedAt = time.Now()
	h.cacheMu.Unlock()

	writeJSON(w, httpStatus, body)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body) //nolint:errcheck
}

// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

const checkTimeout = 5 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

// Handler serves the orchestrator probes. Readiness flips off during
// shutdown so the load balancer drains before connections close.
type Handler struct {
	db       Checker
	redis    Checker
	ready    atomic.Bool
	shutdown atomic.Bool
}

func NewHandler(db, redis Checker) *Handler {
	h := &Handler{
		db:    db,
		redis: redis,
	}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "shutting_down",
		})
		return
	}

	writeStatus(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "shutting_down",
		})
		return
	}

	if !h.ready.Load() {
		writeStatus(w, http.StatusServiceUnavailable, StatusResponse{
			Status: "not_ready",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	checks := h.runChecks(ctx)

	status := "ok"
	statusCode := http.StatusOK
	for _, check := range checks {
		if !check.Healthy {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	writeStatus(w, statusCode, ReadinessResponse{
		Status: status,
		Checks: checks,
	})
}

func (h *Handler) runChecks(ctx context.Context) []Check {
	var wg sync.WaitGroup
	checks := make([]Check, 2)

	wg.Add(2)

	go func() {
		defer wg.Done()
		checks[0] = runCheck(ctx, "database", h.db)
	}()

	go func() {
		defer wg.Done()
		checks[1] = runCheck(ctx, "redis", h.redis)
	}()

	wg.Wait()
	return checks
}

func runCheck(ctx context.Context, name string, checker Checker) Check {
	check := Check{
		Name:    name,
		Healthy: true,
	}

	if checker == nil {
		check.Healthy = false
		check.Message = name + " checker not configured"
		return check
	}

	start := time.Now()
	err := checker.Ping(ctx)
	check.Latency = time.Since(start).String()

	if err != nil {
		check.Healthy = false
		check.Message = "ping failed"
	}

	return check
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func writeStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(data)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string  `json:"status"`
	Checks []Check `json:"checks"`
}

type Check struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/esemenyrendezo/internal/metrics"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/response"
)

// Check pings one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.Data(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz pings every configured dependency.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	out := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			out[name] = "down"
			status = http.StatusServiceUnavailable
			metrics.SetDependencyHealth(name, false)
			continue
		}
		out[name] = "up"
		metrics.SetDependencyHealth(name, true)
	}
	response.Data(w, status, out)
}

package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// ReadinessCheck reports whether a dependency is ready to serve.
type ReadinessCheck func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes over HTTP.
type HealthHandler struct {
	logger *slog.Logger
	checks map[string]ReadinessCheck
}

// NewHealthHandler creates a health check HTTP handler.
func NewHealthHandler(logger *slog.Logger, checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{logger: logger, checks: checks}
}

// RegisterRoutes attaches health-check routes to the router.
func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.readiness).Methods(http.MethodGet)
}

func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "servicing",
	})
}

func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", "check", name, "error", err)
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":   "unavailable",
			"service":  "servicing",
			"failures": failures,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"service": "servicing",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}

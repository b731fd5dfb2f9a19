package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"stylesync-backend/pkg/api"
)

const readinessTimeout = 3 * time.Second

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// Ready handles GET /ready. Every registered check must pass.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(h.readiness))
	for name := range h.readiness {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := api.HealthResponse{Status: "ready", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := h.readiness[name](ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = "failing"
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	api.Success(w, status, resp)
}

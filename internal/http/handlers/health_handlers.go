package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

const checkTimeout = 2 * time.Second

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks    map[string]HealthCheck
	startedAt time.Time
	logger    zerolog.Logger
}

func NewHealthHandler(logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		checks:    map[string]HealthCheck{},
		startedAt: time.Now(),
		logger:    logger.With().Str("component", "health_handler").Logger(),
	}
}

// Register adds a named dependency check. Not safe to call once serving.
func (h *HealthHandler) Register(name string, check HealthCheck) {
	h.checks[name] = check
}

// Health godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "healthy",
		Checks: map[string]string{},
		Uptime: time.Since(h.startedAt).Round(time.Second).String(),
	}
	status := http.StatusOK

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := h.checks[name](ctx)
		cancel()

		if err != nil {
			resp.Checks[name] = "unhealthy: " + err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "healthy"
	}

	if err := writeJSON(w, status, resp); err != nil {
		h.logger.Error().Err(err).Msg("failed to write health response")
	}
}

package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/movement-management/internal/repo"
	"github.com/rs/zerolog"
)

type MetricsHandler struct {
	metricsRepo repo.MetricsRepository
	logger      zerolog.Logger
}

func NewMetricsHandler(r repo.MetricsRepository, logger zerolog.Logger) *MetricsHandler {
	return &MetricsHandler{metricsRepo: r, logger: logger}
}

// GetDashboardMetrics godoc
// @Summary Movement metrics for the dashboard
// @Tags metrics
// @Produce json
// @Success 200 {object} repo.Metrics
// @Failure 500 {string} string "Internal error"
// @Router /metrics/movements [get]
func (h *MetricsHandler) GetDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.metricsRepo.GetDashboardMetrics(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "failed to fetch metrics")
		return
	}
	if err := writeJSON(w, http.StatusOK, m); err != nil {
		h.logger.Error().Err(err).Msg("failed to write JSON response")
	}
}

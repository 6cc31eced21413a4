package handlers

import (
	"encoding/csv"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/movement-management/internal/models"
	"github.com/rogerio-castellano/movement-management/internal/service"
	"github.com/rs/zerolog"
)

// MovementHandler exposes MovementService over HTTP. It never looks inside a
// movement: path and body values go to the service as received and results come
// back as the service returned them.
type MovementHandler struct {
	service service.MovementService
	logger  zerolog.Logger
}

func NewMovementHandler(s service.MovementService, logger zerolog.Logger) *MovementHandler {
	return &MovementHandler{
		service: s,
		logger:  logger.With().Str("component", "movement_handler").Logger(),
	}
}

// FindMovements godoc
// @Summary List all movements
// @Description Streams every movement. Send Accept: application/x-ndjson for newline-delimited output.
// @Tags movements
// @Produce json
// @Success 200 {array} models.Movement
// @Failure 500 {string} string "Internal error"
// @Router /movement [get]
func (h *MovementHandler) FindMovements(w http.ResponseWriter, r *http.Request) {
	streamMovements(w, r, h.logger, h.service.FindMovements(r.Context()), "could not retrieve movements")
}

// FindByID godoc
// @Summary Get movement by ID
// @Tags movements
// @Produce json
// @Param id path string true "Movement ID"
// @Success 200 {object} models.Movement
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /movement/{id} [get]
func (h *MovementHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	movement, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, "could not fetch movement")
		return
	}

	if err := writeJSON(w, http.StatusOK, movement); err != nil {
		h.logger.Error().Err(err).Msg("failed to write movement")
	}
}

// FindMovementsByClientID godoc
// @Summary List movements of a client
// @Tags movements
// @Produce json
// @Param clientId path string true "Client ID"
// @Success 200 {array} models.Movement
// @Failure 500 {string} string "Internal error"
// @Router /movement/client/{clientId} [get]
func (h *MovementHandler) FindMovementsByClientID(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientId")
	streamMovements(w, r, h.logger, h.service.FindByClientID(r.Context(), clientID), "could not retrieve client movements")
}

// FindMovementsByProductID godoc
// @Summary List movements of a product
// @Tags movements
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {array} models.Movement
// @Failure 500 {string} string "Internal error"
// @Router /movement/product/{productId} [get]
func (h *MovementHandler) FindMovementsByProductID(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	streamMovements(w, r, h.logger, h.service.FindByProductID(r.Context(), productID), "could not retrieve product movements")
}

// CreateMovement godoc
// @Summary Create a movement
// @Description The server assigns the ID; an ID in the body is ignored.
// @Tags movements
// @Accept json
// @Produce json
// @Param movement body models.Movement true "Movement to create"
// @Success 201 {object} models.Movement
// @Failure 400 {string} string "Invalid input"
// @Failure 500 {string} string "Internal error"
// @Router /movement [post]
// @Security BearerAuth
func (h *MovementHandler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	var movement models.Movement
	if err := readJSON(w, r, &movement); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateMovement(r.Context(), movement)
	if err != nil {
		writeError(w, h.logger, err, "could not create movement")
		return
	}

	if err := writeJSON(w, http.StatusCreated, created); err != nil {
		h.logger.Error().Err(err).Msg("failed to write created movement")
	}
}

// UpdateMovement godoc
// @Summary Update a movement
// @Description Replaces the movement stored under the path ID. The ID never changes.
// @Tags movements
// @Accept json
// @Produce json
// @Param id path string true "Movement ID"
// @Param movement body models.Movement true "Updated movement"
// @Success 200 {object} models.Movement
// @Failure 400 {string} string "Invalid input"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /movement/{id} [put]
// @Security BearerAuth
func (h *MovementHandler) UpdateMovement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var movement models.Movement
	if err := readJSON(w, r, &movement); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateMovement(r.Context(), id, movement)
	if err != nil {
		writeError(w, h.logger, err, "could not update movement")
		return
	}

	if err := writeJSON(w, http.StatusOK, updated); err != nil {
		h.logger.Error().Err(err).Msg("failed to write updated movement")
	}
}

// DeleteMovement godoc
// @Summary Delete a movement
// @Tags movements
// @Param id path string true "Movement ID"
// @Success 204 "Deleted successfully"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /movement/{id} [delete]
// @Security BearerAuth
func (h *MovementHandler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteMovement(r.Context(), id); err != nil {
		writeError(w, h.logger, err, "could not delete movement")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportMovements godoc
// @Summary Export all movements
// @Tags movements
// @Produce text/csv, application/json
// @Param format query string true "Export format (csv or json)"
// @Success 200 {file} file
// @Failure 400 {string} string "Invalid input"
// @Failure 500 {string} string "Internal error"
// @Router /movement/export [get]
func (h *MovementHandler) ExportMovements(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "csv" && format != "json" {
		http.Error(w, "format must be 'csv' or 'json'", http.StatusBadRequest)
		return
	}

	movements := h.service.FindMovements(r.Context())

	switch format {
	case "json":
		streamMovements(w, r, h.logger, movements, "could not retrieve movements", http.Header{
			"Content-Disposition": {`attachment; filename="movements.json"`},
		})

	case "csv":
		csvWriter := csv.NewWriter(w)
		started := false
		for m, err := range movements {
			if err != nil {
				if !started {
					writeError(w, h.logger, err, "could not retrieve movements")
					return
				}
				h.logger.Error().Err(err).Msg("movement export aborted")
				panic(http.ErrAbortHandler)
			}
			if !started {
				writeCSVHeader(w, csvWriter)
				started = true
			}
			_ = csvWriter.Write([]string{
				m.ID,
				m.ClientID,
				m.ProductID,
				m.Type,
				m.Amount.String(),
				m.Description,
				m.CreatedAt.Format(time.RFC3339),
				m.UpdatedAt.Format(time.RFC3339),
			})
		}
		if !started {
			writeCSVHeader(w, csvWriter)
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			h.logger.Debug().Err(err).Msg("client stopped reading movement export")
		}
	}
}

func writeCSVHeader(w http.ResponseWriter, csvWriter *csv.Writer) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="movements.csv"`)
	w.WriteHeader(http.StatusOK)
	_ = csvWriter.Write([]string{"id", "client_id", "product_id", "type", "amount", "description", "created_at", "updated_at"})
}

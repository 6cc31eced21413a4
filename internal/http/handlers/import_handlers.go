package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rogerio-castellano/movement-management/internal/models"
	"github.com/shopspring/decimal"
)

const maxImportSize = 10 << 20

var errInvalidCSVHeader = errors.New("invalid CSV header")

type csvRow struct {
	line     int
	movement models.Movement
	err      error
}

// parseCSV reads movements keyed by header name, so a file produced by the
// export endpoint can be imported as is. Unknown columns are ignored.
func parseCSV(file io.Reader) ([]csvRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, errInvalidCSVHeader
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"client_id", "product_id", "amount"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", errInvalidCSVHeader, required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []csvRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}

		row := csvRow{line: line}
		amount, err := decimal.NewFromString(field(record, "amount"))
		if err != nil {
			row.err = fmt.Errorf("invalid amount %q", field(record, "amount"))
		}
		row.movement = models.Movement{
			ClientID:    field(record, "client_id"),
			ProductID:   field(record, "product_id"),
			Type:        field(record, "type"),
			Amount:      amount,
			Description: field(record, "description"),
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ImportMovements godoc
// @Summary Import movements via CSV
// @Description Creates one movement per row. Rows that cannot be parsed are reported and skipped.
// @Tags movements
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file with client_id, product_id and amount columns"
// @Success 200 {object} ImportMovementsResult
// @Failure 400 {string} string "Invalid file"
// @Failure 401 {string} string "Unauthorized"
// @Router /movement/import [post]
// @Security BearerAuth
func (h *MovementHandler) ImportMovements(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, err := parseCSV(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := ImportMovementsResult{Errors: []string{}}
	for _, row := range rows {
		if row.err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row.line, row.err))
			continue
		}
		if _, err := h.service.CreateMovement(r.Context(), row.movement); err != nil {
			h.logger.Error().Err(err).Int("row", row.line).Msg("failed to import movement")
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: could not create movement", row.line))
			continue
		}
		result.ImportedCount++
	}

	h.logger.Info().Int("imported", result.ImportedCount).Int("failed", len(result.Errors)).Msg("movements imported")
	if err := writeJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error().Err(err).Msg("failed to write import result")
	}
}

package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rogerio-castellano/movement-management/internal/repo"
	"github.com/shopspring/decimal"
)

func TestGetDashboardMetricsHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	createMovement(t, r, `{"clientId":"C1","productId":"P1","amount":100}`)
	createMovement(t, r, `{"clientId":"C1","productId":"P2","amount":50}`)
	createMovement(t, r, `{"clientId":"C2","productId":"P1","amount":25.5}`)

	w := doRequest(r, http.MethodGet, "/metrics/movements", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}

	var m repo.Metrics
	if err := json.NewDecoder(w.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode metrics: %v", err)
	}

	if m.TotalMovements != 3 {
		t.Errorf("expected 3 movements, got %d", m.TotalMovements)
	}
	if m.DistinctClients != 2 {
		t.Errorf("expected 2 clients, got %d", m.DistinctClients)
	}
	if m.DistinctProducts != 2 {
		t.Errorf("expected 2 products, got %d", m.DistinctProducts)
	}
	if !m.TotalAmount.Equal(decimal.RequireFromString("175.5")) {
		t.Errorf("expected total 175.5, got %s", m.TotalAmount)
	}
}

package repo_test

import (
	"context"
	"testing"

	"github.com/rogerio-castellano/movement-management/internal/repo"
	"github.com/shopspring/decimal"
)

func TestInMemoryMetricsRepository_GetDashboardMetrics(t *testing.T) {
	movements := repo.NewInMemoryMovementRepository()
	metrics := repo.NewInMemoryMetricsRepository(movements)

	empty, err := metrics.GetDashboardMetrics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.TotalMovements != 0 || !empty.TotalAmount.IsZero() {
		t.Errorf("expected zero metrics, got %+v", empty)
	}

	seed(t, movements,
		newMovement("m1", "C1", "P1", 100),
		newMovement("m2", "C1", "P2", 50),
		newMovement("m3", "C2", "P2", -30),
	)

	m, err := metrics.GetDashboardMetrics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
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
	if !m.TotalAmount.Equal(decimal.NewFromInt(120)) {
		t.Errorf("expected total amount 120, got %s", m.TotalAmount)
	}
}

package repo

import (
	"context"

	"github.com/shopspring/decimal"
)

// InMemoryMetricsRepository aggregates metrics by ranging over every stored movement.
type InMemoryMetricsRepository struct {
	movementRepo MovementRepository
}

func NewInMemoryMetricsRepository(movementRepo MovementRepository) *InMemoryMetricsRepository {
	return &InMemoryMetricsRepository{movementRepo: movementRepo}
}

// GetDashboardMetrics implements MetricsRepository.
func (i *InMemoryMetricsRepository) GetDashboardMetrics(ctx context.Context) (Metrics, error) {
	m := Metrics{TotalAmount: decimal.Zero}
	clients := map[string]struct{}{}
	products := map[string]struct{}{}

	for movement, err := range i.movementRepo.FindAll(ctx) {
		if err != nil {
			return Metrics{}, err
		}
		m.TotalMovements++
		m.TotalAmount = m.TotalAmount.Add(movement.Amount)
		clients[movement.ClientID] = struct{}{}
		products[movement.ProductID] = struct{}{}
	}

	m.DistinctClients = len(clients)
	m.DistinctProducts = len(products)
	return m, nil
}

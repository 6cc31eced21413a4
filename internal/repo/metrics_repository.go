package repo

import (
	"context"

	"github.com/shopspring/decimal"
)

type Metrics struct {
	TotalMovements   int             `json:"total_movements"`
	DistinctClients  int             `json:"distinct_clients"`
	DistinctProducts int             `json:"distinct_products"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

type MetricsRepository interface {
	GetDashboardMetrics(ctx context.Context) (Metrics, error)
}

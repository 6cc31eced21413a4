package repo

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresMetricsRepository struct {
	db *sql.DB
}

func NewPostgresMetricsRepository(db *sql.DB) *PostgresMetricsRepository {
	return &PostgresMetricsRepository{db: db}
}

func (r *PostgresMetricsRepository) GetDashboardMetrics(ctx context.Context) (Metrics, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var m Metrics
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT client_id),
		       COUNT(DISTINCT product_id),
		       COALESCE(SUM(amount), 0)
		FROM movements
	`).Scan(&m.TotalMovements, &m.DistinctClients, &m.DistinctProducts, &m.TotalAmount)
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to aggregate movement metrics: %w", err)
	}
	return m, nil
}

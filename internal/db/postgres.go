package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const schema = `
CREATE TABLE IF NOT EXISTS movements (
	id          TEXT PRIMARY KEY,
	client_id   TEXT NOT NULL,
	product_id  TEXT NOT NULL,
	type        TEXT NOT NULL DEFAULT '',
	amount      NUMERIC NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
ALTER TABLE movements ALTER COLUMN amount TYPE NUMERIC;
CREATE INDEX IF NOT EXISTS idx_movements_client_id ON movements (client_id);
CREATE INDEX IF NOT EXISTS idx_movements_product_id ON movements (product_id);
`

// Connect opens a pgx-backed pool for dbURL and checks it answers.
func Connect(ctx context.Context, dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates the movements table and its lookup indexes when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

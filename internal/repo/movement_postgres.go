package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rogerio-castellano/movement-management/internal/models"
)

const (
	queryTimeout = 3 * time.Second

	movementColumns = `id, client_id, product_id, type, amount, description, created_at, updated_at`
	selectMovements = `SELECT ` + movementColumns + ` FROM movements`
	uniqueViolation = "23505"
)

type PostgresMovementRepository struct {
	db *sql.DB
}

func NewPostgresMovementRepository(db *sql.DB) *PostgresMovementRepository {
	return &PostgresMovementRepository{db: db}
}

// FindAll streams every movement, newest first.
func (r *PostgresMovementRepository) FindAll(ctx context.Context) iter.Seq2[models.Movement, error] {
	return r.stream(ctx, selectMovements+` ORDER BY created_at DESC`)
}

// FindByID returns the movement stored under id
func (r *PostgresMovementRepository) FindByID(ctx context.Context, id string) (models.Movement, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	m, err := scanMovement(r.db.QueryRowContext(ctx, selectMovements+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Movement{}, ErrMovementNotFound
	}
	if err != nil {
		return models.Movement{}, fmt.Errorf("failed to fetch movement %s: %w", id, err)
	}
	return m, nil
}

// FindByClientID streams the movements owned by clientID, newest first.
func (r *PostgresMovementRepository) FindByClientID(ctx context.Context, clientID string) iter.Seq2[models.Movement, error] {
	return r.stream(ctx, selectMovements+` WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
}

// FindByProductID streams the movements tied to productID, newest first.
func (r *PostgresMovementRepository) FindByProductID(ctx context.Context, productID string) iter.Seq2[models.Movement, error] {
	return r.stream(ctx, selectMovements+` WHERE product_id = $1 ORDER BY created_at DESC`, productID)
}

// Create inserts a new movement
func (r *PostgresMovementRepository) Create(ctx context.Context, m models.Movement) (models.Movement, error) {
	query := `INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + movementColumns
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	created, err := scanMovement(r.db.QueryRowContext(ctx, query,
		m.ID, m.ClientID, m.ProductID, m.Type, m.Amount, m.Description, m.CreatedAt.UTC(), m.UpdatedAt.UTC()))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.Movement{}, ErrDuplicatedMovementID
		}
		return models.Movement{}, fmt.Errorf("failed to insert movement: %w", err)
	}
	return created, nil
}

// Update overwrites every column of the movement stored under m.ID
func (r *PostgresMovementRepository) Update(ctx context.Context, m models.Movement) (models.Movement, error) {
	query := `UPDATE movements
		SET client_id = $2, product_id = $3, type = $4, amount = $5, description = $6, created_at = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + movementColumns
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	updated, err := scanMovement(r.db.QueryRowContext(ctx, query,
		m.ID, m.ClientID, m.ProductID, m.Type, m.Amount, m.Description, m.CreatedAt.UTC(), m.UpdatedAt.UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Movement{}, ErrMovementNotFound
	}
	if err != nil {
		return models.Movement{}, fmt.Errorf("failed to update movement %s: %w", m.ID, err)
	}
	return updated, nil
}

// Delete removes the movement stored under id
func (r *PostgresMovementRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movement %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete movement %s: %w", id, err)
	}
	if affected == 0 {
		return ErrMovementNotFound
	}
	return nil
}

// stream runs query and yields one movement per row. The rows are released as
// soon as the consumer stops ranging.
func (r *PostgresMovementRepository) stream(ctx context.Context, query string, args ...any) iter.Seq2[models.Movement, error] {
	return func(yield func(models.Movement, error) bool) {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(models.Movement{}, fmt.Errorf("failed to execute query: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			m, err := scanMovement(rows)
			if err != nil {
				yield(models.Movement{}, fmt.Errorf("failed to scan movement: %w", err))
				return
			}
			if !yield(m, nil) {
				return
			}
		}

		// Check for iteration errors
		if err := rows.Err(); err != nil {
			yield(models.Movement{}, fmt.Errorf("failed to read movements: %w", err))
		}
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovement(row rowScanner) (models.Movement, error) {
	var m models.Movement
	err := row.Scan(&m.ID, &m.ClientID, &m.ProductID, &m.Type, &m.Amount, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

package repo

import (
	"context"
	"errors"
	"iter"

	"github.com/rogerio-castellano/movement-management/internal/models"
)

// ErrMovementNotFound is returned when no movement is stored under the requested ID.
var ErrMovementNotFound = errors.New("movement not found")

// ErrDuplicatedMovementID is returned when creating a movement under an ID already in use.
var ErrDuplicatedMovementID = errors.New("duplicated movement id")

// MovementRepository stores movements. List methods return lazy sequences that
// stop early when the consumer stops ranging or the context is cancelled.
type MovementRepository interface {
	FindAll(ctx context.Context) iter.Seq2[models.Movement, error]
	FindByID(ctx context.Context, id string) (models.Movement, error)
	FindByClientID(ctx context.Context, clientID string) iter.Seq2[models.Movement, error]
	FindByProductID(ctx context.Context, productID string) iter.Seq2[models.Movement, error]
	Create(ctx context.Context, m models.Movement) (models.Movement, error)
	Update(ctx context.Context, m models.Movement) (models.Movement, error)
	Delete(ctx context.Context, id string) error
}

// Collect drains a movement sequence into a slice.
func Collect(seq iter.Seq2[models.Movement, error]) ([]models.Movement, error) {
	movements := []models.Movement{}
	for m, err := range seq {
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, nil
}

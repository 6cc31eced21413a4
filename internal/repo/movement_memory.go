package repo

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/rogerio-castellano/movement-management/internal/models"
)

// InMemoryMovementRepository keeps movements in insertion order.
type InMemoryMovementRepository struct {
	mu        sync.RWMutex
	movements map[string]models.Movement
	order     []string
}

func NewInMemoryMovementRepository() *InMemoryMovementRepository {
	return &InMemoryMovementRepository{
		movements: map[string]models.Movement{},
	}
}

// FindAll returns every stored movement.
func (r *InMemoryMovementRepository) FindAll(ctx context.Context) iter.Seq2[models.Movement, error] {
	return r.filter(ctx, func(models.Movement) bool { return true })
}

// FindByID returns the movement stored under id.
func (r *InMemoryMovementRepository) FindByID(ctx context.Context, id string) (models.Movement, error) {
	if err := ctx.Err(); err != nil {
		return models.Movement{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.movements[id]
	if !ok {
		return models.Movement{}, ErrMovementNotFound
	}
	return m, nil
}

// FindByClientID returns the movements owned by clientID.
func (r *InMemoryMovementRepository) FindByClientID(ctx context.Context, clientID string) iter.Seq2[models.Movement, error] {
	return r.filter(ctx, func(m models.Movement) bool { return m.ClientID == clientID })
}

// FindByProductID returns the movements tied to productID.
func (r *InMemoryMovementRepository) FindByProductID(ctx context.Context, productID string) iter.Seq2[models.Movement, error] {
	return r.filter(ctx, func(m models.Movement) bool { return m.ProductID == productID })
}

// Create stores m under m.ID. A duplicate ID is rejected.
func (r *InMemoryMovementRepository) Create(ctx context.Context, m models.Movement) (models.Movement, error) {
	if err := ctx.Err(); err != nil {
		return models.Movement{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.movements[m.ID]; exists {
		return models.Movement{}, ErrDuplicatedMovementID
	}
	r.movements[m.ID] = m
	r.order = append(r.order, m.ID)
	return m, nil
}

// Update replaces the movement stored under m.ID.
func (r *InMemoryMovementRepository) Update(ctx context.Context, m models.Movement) (models.Movement, error) {
	if err := ctx.Err(); err != nil {
		return models.Movement{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.movements[m.ID]; !ok {
		return models.Movement{}, ErrMovementNotFound
	}
	r.movements[m.ID] = m
	return m, nil
}

// Delete removes the movement stored under id.
func (r *InMemoryMovementRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.movements[id]; !ok {
		return ErrMovementNotFound
	}
	delete(r.movements, id)
	r.order = slices.DeleteFunc(r.order, func(stored string) bool { return stored == id })
	return nil
}

// filter iterates over a snapshot taken when ranging starts, so consumers never
// hold the lock while they write responses.
func (r *InMemoryMovementRepository) filter(ctx context.Context, keep func(models.Movement) bool) iter.Seq2[models.Movement, error] {
	return func(yield func(models.Movement, error) bool) {
		r.mu.RLock()
		snapshot := make([]models.Movement, 0, len(r.order))
		for _, id := range r.order {
			if m := r.movements[id]; keep(m) {
				snapshot = append(snapshot, m)
			}
		}
		r.mu.RUnlock()

		for _, m := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(models.Movement{}, err)
				return
			}
			if !yield(m, nil) {
				return
			}
		}
	}
}

package service

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/movement-management/internal/events"
	"github.com/rogerio-castellano/movement-management/internal/models"
	"github.com/rogerio-castellano/movement-management/internal/repo"
	"github.com/rs/zerolog"
)

// MovementService is the contract the HTTP layer delegates to. Errors travel on the
// error return (or the error half of a sequence), never inside a movement.
type MovementService interface {
	FindMovements(ctx context.Context) iter.Seq2[models.Movement, error]
	FindByID(ctx context.Context, id string) (models.Movement, error)
	FindByClientID(ctx context.Context, clientID string) iter.Seq2[models.Movement, error]
	FindByProductID(ctx context.Context, productID string) iter.Seq2[models.Movement, error]
	CreateMovement(ctx context.Context, m models.Movement) (models.Movement, error)
	UpdateMovement(ctx context.Context, id string, m models.Movement) (models.Movement, error)
	DeleteMovement(ctx context.Context, id string) error
}

// MovementManager is the default MovementService. It owns identifiers and
// timestamps, persists through a repository and announces every change.
type MovementManager struct {
	repo      repo.MovementRepository
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
	newID     func() string
}

func NewMovementService(r repo.MovementRepository, p events.Publisher, logger zerolog.Logger) *MovementManager {
	if p == nil {
		p = events.NopPublisher{}
	}
	return &MovementManager{
		repo:      r,
		publisher: p,
		logger:    logger.With().Str("component", "movement_service").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (s *MovementManager) FindMovements(ctx context.Context) iter.Seq2[models.Movement, error] {
	return s.repo.FindAll(ctx)
}

func (s *MovementManager) FindByID(ctx context.Context, id string) (models.Movement, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *MovementManager) FindByClientID(ctx context.Context, clientID string) iter.Seq2[models.Movement, error] {
	return s.repo.FindByClientID(ctx, clientID)
}

func (s *MovementManager) FindByProductID(ctx context.Context, productID string) iter.Seq2[models.Movement, error] {
	return s.repo.FindByProductID(ctx, productID)
}

// CreateMovement stores m under a fresh ID. Any ID supplied by the caller is ignored.
func (s *MovementManager) CreateMovement(ctx context.Context, m models.Movement) (models.Movement, error) {
	now := s.now()
	m.ID = s.newID()
	m.CreatedAt = now
	m.UpdatedAt = now

	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return models.Movement{}, err
	}

	s.publish(ctx, events.MovementCreated, created)
	return created, nil
}

// UpdateMovement replaces the movement stored under id with m, keeping its ID and
// creation time.
func (s *MovementManager) UpdateMovement(ctx context.Context, id string, m models.Movement) (models.Movement, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.Movement{}, err
	}

	m.ID = current.ID
	m.CreatedAt = current.CreatedAt
	m.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, m)
	if err != nil {
		return models.Movement{}, err
	}

	s.publish(ctx, events.MovementUpdated, updated)
	return updated, nil
}

func (s *MovementManager) DeleteMovement(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.MovementDeleted, models.Movement{ID: id})
	return nil
}

// publish never fails the write that triggered it; the movement is already stored.
func (s *MovementManager) publish(ctx context.Context, eventType string, m models.Movement) {
	e := events.Event{Type: eventType, Movement: m, OccurredAt: s.now()}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Str("movement_id", m.ID).Msg("could not publish movement event")
	}
}

package events

import (
	"context"
	"time"

	"github.com/rogerio-castellano/movement-management/internal/models"
)

// Routing keys published for movement changes.
const (
	MovementCreated = "movement.created"
	MovementUpdated = "movement.updated"
	MovementDeleted = "movement.deleted"
)

type Event struct {
	Type       string          `json:"type"`
	Movement   models.Movement `json:"movement"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Publisher delivers movement change events to whoever listens downstream.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

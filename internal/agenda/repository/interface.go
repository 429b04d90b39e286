package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is an agenda entry as stored.
type Event struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	StartsAt    time.Time
	Price       float64
	Description string
	Location    string
	Latitude    *float64
	Longitude   *float64
	CreatedAt   time.Time
}

// HasCoordinates reports whether both coordinates are set.
func (e Event) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// CreateParams contains the fields for a new event.
type CreateParams struct {
	OwnerID     uuid.UUID
	Name        string
	StartsAt    time.Time
	Price       float64
	Description string
	Location    string
	Latitude    *float64
	Longitude   *float64
}

// EventReader provides read operations for events.
type EventReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Event, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Event, error)
	ListMissingCoordinates(ctx context.Context, limit int) ([]Event, error)
}

// EventWriter provides write operations for events.
type EventWriter interface {
	Create(ctx context.Context, params CreateParams) (Event, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	SetCoordinates(ctx context.Context, id uuid.UUID, latitude, longitude float64) error
}

// Repository combines all event operations.
type Repository interface {
	EventReader
	EventWriter
}

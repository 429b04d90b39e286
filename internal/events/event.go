// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"evntly_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserSignedUp is published when a new user successfully registers.
type UserSignedUp struct {
	BaseEvent
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
}

func (e UserSignedUp) EventName() string { return "auth.user.signed_up" }

// UserSignedIn is published after a successful sign-in.
type UserSignedIn struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
}

func (e UserSignedIn) EventName() string { return "auth.user.signed_in" }

// =============================================================================
// Agenda Domain Events
// =============================================================================

// AgendaEventCreated is published after an event has been stored.
type AgendaEventCreated struct {
	BaseEvent
	EventID        uuid.UUID `json:"eventId"`
	OwnerID        uuid.UUID `json:"ownerId"`
	Location       string    `json:"location"`
	HasCoordinates bool      `json:"hasCoordinates"`
}

func (e AgendaEventCreated) EventName() string { return "agenda.event.created" }

// AgendaEventDeleted is published after an event has been removed.
type AgendaEventDeleted struct {
	BaseEvent
	EventID uuid.UUID `json:"eventId"`
	OwnerID uuid.UUID `json:"ownerId"`
}

func (e AgendaEventDeleted) EventName() string { return "agenda.event.deleted" }

// AgendaEventGeocoded is published when background geocoding filled in the
// coordinates of an event saved without them.
type AgendaEventGeocoded struct {
	BaseEvent
	EventID   uuid.UUID `json:"eventId"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

func (e AgendaEventGeocoded) EventName() string { return "agenda.event.geocoded" }

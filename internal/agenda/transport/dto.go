package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateEventRequest contains data for a new agenda event. Price is text as
// typed in the form: up to eight integer digits and two decimals.
type CreateEventRequest struct {
	Name        string    `json:"name" validate:"notblank,max=200"`
	StartsAt    time.Time `json:"startsAt" validate:"required"`
	Price       string    `json:"price" validate:"required,price"`
	Description string    `json:"description" validate:"notblank,max=2000"`
	Location    string    `json:"location" validate:"notblank,max=500"`
	Latitude    *float64  `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64  `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// EventResponse represents an event in API responses.
type EventResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	StartsAt    time.Time `json:"startsAt"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EventListResponse wraps a list of events.
type EventListResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

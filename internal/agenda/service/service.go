package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"evntly_backend/internal/agenda/repository"
	"evntly_backend/internal/agenda/transport"
	"evntly_backend/internal/events"
	"evntly_backend/platform/apperr"
	"evntly_backend/platform/logger"
	"evntly_backend/platform/sanitize"
	"evntly_backend/platform/validator"
)

// MinLeadTime is how far in the future a new event must start.
const MinLeadTime = 24 * time.Hour

// GeocodeScheduler queues background geocoding for an event saved without
// coordinates.
type GeocodeScheduler interface {
	ScheduleEventGeocode(ctx context.Context, eventID uuid.UUID) error
}

// Geocoder resolves free-text locations to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (latitude, longitude float64, found bool, err error)
}

// Service provides business logic for agenda events.
type Service struct {
	repo      repository.Repository
	bus       events.Bus
	scheduler GeocodeScheduler
	geocoder  Geocoder
	now       func() time.Time
	log       *logger.Logger
}

// New creates a new agenda service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, now: time.Now, log: log}
}

// SetGeocodeScheduler enables background geocoding of new events.
func (s *Service) SetGeocodeScheduler(scheduler GeocodeScheduler) {
	s.scheduler = scheduler
}

// SetGeocoder sets the resolver used by GeocodeEvent.
func (s *Service) SetGeocoder(geocoder Geocoder) {
	s.geocoder = geocoder
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create stores a new event for ownerID.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req transport.CreateEventRequest) (transport.EventResponse, error) {
	params, err := s.buildCreateParams(ownerID, req)
	if err != nil {
		return transport.EventResponse{}, err
	}

	event, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.EventResponse{}, err
	}

	s.bus.Publish(ctx, events.AgendaEventCreated{
		BaseEvent:      events.NewBaseEvent(),
		EventID:        event.ID,
		OwnerID:        event.OwnerID,
		Location:       event.Location,
		HasCoordinates: event.HasCoordinates(),
	})

	if !event.HasCoordinates() && s.scheduler != nil {
		if err := s.scheduler.ScheduleEventGeocode(ctx, event.ID); err != nil {
			s.log.Warn("failed to schedule event geocoding", "eventId", event.ID, "error", err)
		}
	}

	return toResponse(event), nil
}

// List returns the owner's events, soonest first.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) (transport.EventListResponse, error) {
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return transport.EventListResponse{}, err
	}

	resp := transport.EventListResponse{
		Items: make([]transport.EventResponse, 0, len(items)),
		Total: len(items),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toResponse(item))
	}
	return resp, nil
}

// Delete removes an event. Only its owner may delete it.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.AgendaEventDeleted{
		BaseEvent: events.NewBaseEvent(),
		EventID:   id,
		OwnerID:   ownerID,
	})
	return nil
}

// GeocodeEvent fills in the coordinates of an event saved without them.
// A location the provider cannot find is not an error.
func (s *Service) GeocodeEvent(ctx context.Context, id uuid.UUID) error {
	if s.geocoder == nil {
		return fmt.Errorf("geocode event %s: no geocoder configured", id)
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.HasCoordinates() {
		return nil
	}

	lat, lon, found, err := s.geocoder.Geocode(ctx, event.Location)
	if err != nil {
		return fmt.Errorf("geocode event %s: %w", id, err)
	}
	if !found {
		s.log.Info("no geocode result for event", "eventId", id, "location", event.Location)
		return nil
	}

	if err := s.repo.SetCoordinates(ctx, id, lat, lon); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.AgendaEventGeocoded{
		BaseEvent: events.NewBaseEvent(),
		EventID:   id,
		OwnerID:   event.OwnerID,
		Latitude:  lat,
		Longitude: lon,
	})
	s.log.Info("event geocoded", "eventId", id, "lat", lat, "lon", lon)
	return nil
}

func (s *Service) buildCreateParams(ownerID uuid.UUID, req transport.CreateEventRequest) (repository.CreateParams, error) {
	name := sanitize.Line(req.Name)
	description := sanitize.Text(req.Description)
	location := sanitize.Line(req.Location)

	if name == "" {
		return repository.CreateParams{}, apperr.Validation("name is required")
	}
	if description == "" {
		return repository.CreateParams{}, apperr.Validation("description is required")
	}
	if location == "" {
		return repository.CreateParams{}, apperr.Validation("location is required")
	}
	if req.StartsAt.Before(s.now().Add(MinLeadTime)) {
		return repository.CreateParams{}, apperr.Validation("event must start at least 24 hours from now")
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return repository.CreateParams{}, apperr.Validation("latitude and longitude must be provided together")
	}

	price, err := ParsePrice(req.Price)
	if err != nil {
		return repository.CreateParams{}, err
	}

	return repository.CreateParams{
		OwnerID:     ownerID,
		Name:        name,
		StartsAt:    req.StartsAt.UTC(),
		Price:       price,
		Description: description,
		Location:    location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}, nil
}

// ParsePrice converts the typed price into a non-negative amount.
func ParsePrice(raw string) (float64, error) {
	if !validator.IsPrice(raw) {
		return 0, apperr.Validation("price must have at most 8 digits and 2 decimals")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, apperr.Validation("price must be a number")
	}
	if price < 0 {
		return 0, apperr.Validation("price must not be negative")
	}
	return price, nil
}

func toResponse(e repository.Event) transport.EventResponse {
	return transport.EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		StartsAt:    e.StartsAt,
		Price:       e.Price,
		Description: e.Description,
		Location:    e.Location,
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,
		CreatedAt:   e.CreatedAt,
	}
}

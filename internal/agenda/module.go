// Package agenda provides the event store bounded context module: creating,
// listing and deleting a user's agenda events, with a live-updating list.
package agenda

import (
	"context"

	"evntly_backend/internal/agenda/handler"
	"evntly_backend/internal/agenda/repository"
	"evntly_backend/internal/agenda/service"
	"evntly_backend/internal/events"
	apphttp "evntly_backend/internal/http"
	"evntly_backend/platform/logger"
	"evntly_backend/platform/sse"
	"evntly_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the agenda bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
	hub     *sse.Hub
	log     *logger.Logger

	// geocodeInline runs geocoding inside this process when no task queue
	// is configured.
	geocodeInline bool
}

// NewModule creates and initializes the agenda module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, hub *sse.Hub, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)

	return &Module{
		handler: handler.New(svc, hub, val),
		service: svc,
		repo:    repo,
		hub:     hub,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "agenda"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// SetGeocoding wires coordinate lookup. With a scheduler, events saved
// without coordinates are geocoded by the worker process; without one they
// are geocoded here, off the request path.
func (m *Module) SetGeocoding(geocoder service.Geocoder, scheduler service.GeocodeScheduler) {
	m.service.SetGeocoder(geocoder)
	if scheduler != nil {
		m.service.SetGeocodeScheduler(scheduler)
		m.geocodeInline = false
		return
	}
	m.geocodeInline = geocoder != nil
}

// RegisterRoutes mounts event routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/events")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.GET("/stream", m.handler.Stream)
	group.DELETE("/:id", m.handler.Delete)
}

// RegisterHandlers subscribes to agenda events to keep live lists fresh.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.AgendaEventCreated{}.EventName(), m)
	bus.Subscribe(events.AgendaEventDeleted{}.EventName(), m)
	bus.Subscribe(events.AgendaEventGeocoded{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.AgendaEventCreated:
		m.pushList(ctx, e.OwnerID)
		if !e.HasCoordinates && m.geocodeInline {
			return m.service.GeocodeEvent(ctx, e.EventID)
		}
		return nil
	case events.AgendaEventDeleted:
		m.pushList(ctx, e.OwnerID)
		return nil
	case events.AgendaEventGeocoded:
		m.pushList(ctx, e.OwnerID)
		return nil
	default:
		return nil
	}
}

func (m *Module) pushList(ctx context.Context, ownerID uuid.UUID) {
	topic := handler.LiveTopic(ownerID)
	if m.hub == nil || m.hub.Subscribers(topic) == 0 {
		return
	}

	list, err := m.service.List(ctx, ownerID)
	if err != nil {
		m.log.Warn("failed to refresh live event list", "ownerId", ownerID, "error", err)
		return
	}
	m.hub.Publish(topic, sse.Event{Type: handler.EventTypeList, Data: list})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

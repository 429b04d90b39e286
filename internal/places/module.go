package places

import (
	"context"

	apphttp "evntly_backend/internal/http"
	"evntly_backend/platform/config"
	"evntly_backend/platform/logger"
	"evntly_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// Module wires the place search sessions and lookup routes.
type Module struct {
	handler  *Handler
	sessions *Sessions
	lookup   *SharedLookup
}

// NewModule builds the search chain shared by every session:
// shared cache -> singleflight -> one-shot retry -> rate-limited client.
// rdb may be nil, in which case only the per-session caches are used.
func NewModule(cfg config.PlacesConfig, rdb redis.Cmdable, val *validator.Validator, log *logger.Logger) *Module {
	client := NewClient(OptionsFromConfig(cfg), log)
	retrying := WithRetry(client, cfg.GetPlacesRetryBackoff(), log)

	var shared SharedCache
	if rdb != nil {
		shared = NewRedisCache(rdb, cfg.GetPlacesSharedCacheTTL())
	}
	lookup := NewSharedLookup(retrying, shared, log)

	sessions := NewSessions(lookup, SessionOptions{
		IdleTTL:  cfg.GetPlacesSessionIdleTTL(),
		Debounce: cfg.GetPlacesDebounce(),
	}, log)

	return &Module{
		handler:  NewHandler(sessions, lookup, val),
		sessions: sessions,
		lookup:   lookup,
	}
}

func (m *Module) Name() string {
	return "places"
}

// Sessions returns the live session registry.
func (m *Module) Sessions() *Sessions {
	return m.sessions
}

// Lookup returns the shared search chain for other modules (e.g. the
// background geocoder of saved events).
func (m *Module) Lookup() Searcher {
	return m.lookup
}

// Run reaps idle sessions until ctx ends.
func (m *Module) Run(ctx context.Context) {
	m.sessions.Run(ctx)
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/places")
	group.GET("/search", m.handler.Lookup)
	group.POST("/sessions", m.handler.OpenSession)
	group.GET("/sessions/:id/state", m.handler.State)
	group.GET("/sessions/:id/stream", m.handler.Stream)
	group.POST("/sessions/:id/query", m.handler.SubmitQuery)
	group.POST("/sessions/:id/select", m.handler.SelectSuggestion)
	group.DELETE("/sessions/:id", m.handler.CloseSession)
}

var _ apphttp.Module = (*Module)(nil)

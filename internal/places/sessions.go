package places

import (
	"context"
	"sync"
	"time"

	"evntly_backend/platform/apperr"
	"evntly_backend/platform/logger"

	"github.com/google/uuid"
)

// DefaultSessionIdleTTL is how long an untouched form session survives.
const DefaultSessionIdleTTL = 15 * time.Minute

// Session is one add-event form's place search, owned by a single user.
type Session struct {
	ID       uuid.UUID
	OwnerID  uuid.UUID
	Pipeline *Pipeline

	mu       sync.Mutex
	lastUsed time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// SessionOptions configures a Sessions registry.
type SessionOptions struct {
	IdleTTL  time.Duration
	Debounce time.Duration
	// Now is overridable for tests.
	Now func() time.Time
}

// Sessions tracks the live form sessions of the process. Every session gets
// its own pipeline and cache; they all share one Searcher.
type Sessions struct {
	searcher Searcher
	opts     SessionOptions
	log      *logger.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewSessions creates an empty registry.
func NewSessions(searcher Searcher, opts SessionOptions, log *logger.Logger) *Sessions {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultSessionIdleTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Sessions{
		searcher: searcher,
		opts:     opts,
		log:      log,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Open starts a new session for owner.
func (r *Sessions) Open(ownerID uuid.UUID) *Session {
	id := uuid.New()
	pipeline := NewPipeline(r.searcher, NewMemoryCache(), PipelineOptions{
		Debounce: r.opts.Debounce,
	}, r.log.WithField("placesSession", id.String()))

	s := &Session{
		ID:       id,
		OwnerID:  ownerID,
		Pipeline: pipeline,
		lastUsed: r.opts.Now(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.log.Debug("place search session opened", "sessionId", s.ID, "ownerId", ownerID)
	return s
}

// Get returns the session and marks it as used.
func (r *Sessions) Get(id, ownerID uuid.UUID) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok {
		return nil, apperr.NotFound("place search session not found")
	}
	if s.OwnerID != ownerID {
		return nil, apperr.Forbidden("place search session belongs to another user")
	}

	s.touch(r.opts.Now())
	return s, nil
}

// Close ends the session, cancelling its pending work.
func (r *Sessions) Close(id, ownerID uuid.UUID) error {
	s, err := r.Get(id, ownerID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	s.Pipeline.Close()
	r.log.Debug("place search session closed", "sessionId", id)
	return nil
}

// Len reports the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reap closes every session idle for longer than the TTL and returns how
// many it closed.
func (r *Sessions) Reap() int {
	cutoff := r.opts.Now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Pipeline.Close()
	}
	if len(expired) > 0 {
		r.log.Info("reaped idle place search sessions", "count", len(expired))
	}
	return len(expired)
}

// Run reaps idle sessions until ctx ends, then closes the rest.
func (r *Sessions) Run(ctx context.Context) {
	interval := r.opts.IdleTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return
		case <-ticker.C:
			r.Reap()
		}
	}
}

// CloseAll closes every session.
func (r *Sessions) CloseAll() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.Pipeline.Close()
	}
}

package places

import (
	"errors"
	"net/http"

	"evntly_backend/platform/apperr"
	"evntly_backend/platform/httpkit"
	"evntly_backend/platform/sse"
	"evntly_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidSession   = "invalid session ID"
	msgLookupFailed     = "address lookup service unavailable"

	eventTypeState = "state"
)

// Handler exposes the place search sessions and the one-shot lookup.
type Handler struct {
	sessions *Sessions
	lookup   Searcher
	val      *validator.Validator
}

// NewHandler creates a places handler.
func NewHandler(sessions *Sessions, lookup Searcher, val *validator.Validator) *Handler {
	return &Handler{sessions: sessions, lookup: lookup, val: val}
}

// OpenSession handles POST /api/v1/places/sessions
func (h *Handler) OpenSession(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	s := h.sessions.Open(identity.UserID())
	httpkit.JSON(c, http.StatusCreated, OpenSessionResponse{
		SessionID: s.ID,
		State:     s.Pipeline.State(),
	})
}

// SubmitQuery handles POST /api/v1/places/sessions/:id/query
func (h *Handler) SubmitQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}

	s.Pipeline.SubmitQuery(req.Text)
	c.Status(http.StatusAccepted)
}

// SelectSuggestion handles POST /api/v1/places/sessions/:id/select
func (h *Handler) SelectSuggestion(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}

	httpkit.OK(c, s.Pipeline.SelectSuggestion(req.suggestion()))
}

// State handles GET /api/v1/places/sessions/:id/state
func (h *Handler) State(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	httpkit.OK(c, s.Pipeline.State())
}

// Stream handles GET /api/v1/places/sessions/:id/stream
// Every state change is pushed as a "state" event; the current state is sent
// first. The stream ends when the client leaves or the session closes.
func (h *Handler) Stream(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	states, cancel := s.Pipeline.Subscribe()
	defer cancel()

	sse.WriteHeaders(c)
	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case state, open := <-states:
			if !open {
				return
			}
			if err := sse.Send(c, eventTypeState, state); err != nil {
				return
			}
		}
	}
}

// CloseSession handles DELETE /api/v1/places/sessions/:id
func (h *Handler) CloseSession(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidSession, nil)
		return
	}

	if httpkit.HandleError(c, h.sessions.Close(id, identity.UserID())) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Lookup handles GET /api/v1/places/search?q=...
func (h *Handler) Lookup(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'q' is required (min 3 chars)", nil)
		return
	}

	results, err := h.lookup.Search(c.Request.Context(), req.Query)
	if err != nil {
		httpkit.HandleError(c, lookupError(err))
		return
	}
	if results == nil {
		results = []Suggestion{}
	}

	httpkit.OK(c, LookupResponse{Suggestions: results})
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidSession, nil)
		return nil, false
	}

	s, err := h.sessions.Get(id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return nil, false
	}
	return s, true
}

// lookupError maps a provider failure onto an API error. The message shown
// under the field is passed along as details.
func lookupError(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	details := gin.H{"message": ErrorMessage(err)}
	if code, ok := StatusCode(err); ok && code == http.StatusTooManyRequests {
		return apperr.Wrap(apperr.KindTooManyRequests, MsgRateLimited, err).WithDetails(details)
	}
	return apperr.Wrap(apperr.KindUnavailable, msgLookupFailed, err).WithDetails(details)
}

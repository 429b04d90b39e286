package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"evntly_backend/internal/agenda/service"
	"evntly_backend/internal/agenda/transport"
	"evntly_backend/platform/httpkit"
	"evntly_backend/platform/sse"
	"evntly_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid event ID"

	// EventTypeList is the SSE event carrying a full, fresh event list.
	EventTypeList = "events"
)

// Handler handles HTTP requests for agenda events.
type Handler struct {
	svc *service.Service
	hub *sse.Hub
	val *validator.Validator
}

// New creates a new agenda handler.
func New(svc *service.Service, hub *sse.Hub, val *validator.Validator) *Handler {
	return &Handler{svc: svc, hub: hub, val: val}
}

// Create stores a new event.
// POST /api/v1/events
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// List returns the caller's events.
// GET /api/v1/events
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.List(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes one of the caller's events.
// DELETE /api/v1/events/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), identity.UserID(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream pushes the caller's full event list now and after every change.
// GET /api/v1/events/stream
func (h *Handler) Stream(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	userID := identity.UserID()

	// subscribe before reading so no change between the two is missed
	updates, cancel := h.hub.Subscribe(LiveTopic(userID))
	defer cancel()

	current, err := h.svc.List(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}

	sse.WriteHeaders(c)
	if err := sse.Send(c, EventTypeList, current); err != nil {
		return
	}
	sse.Stream(c, updates)
}

// LiveTopic is the hub topic carrying a user's event list.
func LiveTopic(ownerID uuid.UUID) string {
	return "agenda:" + ownerID.String()
}

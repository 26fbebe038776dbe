package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/internal/middleware"
	"github.com/volunteerhub/backend/internal/services"
	"github.com/volunteerhub/backend/pkg/response"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Create creates a DRAFT event for the caller's approved NGO
// POST /api/events
func (h *EventHandler) Create(c *gin.Context) {
	var req services.CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.Create(middleware.CurrentPrincipal(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, event)
}

// List returns published events, soonest first
// GET /api/events
func (h *EventHandler) List(c *gin.Context) {
	var req services.EventListRequest
	if !bindQuery(c, &req) {
		return
	}

	events, err := h.eventService.ListPublic(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, events)
}

// Urgent returns up to five published events of the coming week that still
// need volunteers
// GET /api/events/urgent
func (h *EventHandler) Urgent(c *gin.Context) {
	events, err := h.eventService.Urgent(c.Query("city"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, events)
}

// Mine returns the events of the caller's NGO with participation counts
// GET /api/events/my
func (h *EventHandler) Mine(c *gin.Context) {
	events, err := h.eventService.Mine(middleware.CurrentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, events)
}

// GetByID
// GET /api/events/:id
func (h *EventHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.Get(id, middleware.OptionalPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, event)
}

// Manage returns the event with its participants for the owner
// GET /api/events/:id/manage
func (h *EventHandler) Manage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	view, err := h.eventService.Manage(id, middleware.CurrentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, view)
}

// Update
// PATCH /api/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.Update(id, &req, middleware.CurrentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, event)
}

// Delete removes the event and its participations
// DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.Delete(id, middleware.CurrentPrincipal(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "event deleted successfully"})
}

// Pending lists DRAFT events awaiting moderation
// GET /api/admin/events/pending
func (h *EventHandler) Pending(c *gin.Context) {
	events, err := h.eventService.Pending(middleware.CurrentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, events)
}

// Moderate publishes or rejects a DRAFT event
// POST /api/admin/events/:id/approve
func (h *EventHandler) Moderate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.ModerateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.Moderate(id, &req, middleware.CurrentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, event)
}

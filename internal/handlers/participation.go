package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/internal/middleware"
	"github.com/volunteerhub/backend/internal/services"
	"github.com/volunteerhub/backend/pkg/response"
)

type ParticipationHandler struct {
	participationService *services.ParticipationService
}

func NewParticipationHandler(participationService *services.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{participationService: participationService}
}

// Participate signs the caller up for an event
// POST /api/events/:id/participate
func (h *ParticipationHandler) Participate(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	participation, err := h.participationService.Participate(eventID, middleware.CurrentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, participation)
}

// Update approves or rejects a sign-up, or records attendance
// PATCH /api/participations/:id
func (h *ParticipationHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateParticipationRequest
	if !bindJSON(c, &req) {
		return
	}

	participation, err := h.participationService.UpdateStatus(id, &req, middleware.CurrentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, participation)
}

// Mine lists the caller's participations
// GET /api/participations/my
func (h *ParticipationHandler) Mine(c *gin.Context) {
	participations, err := h.participationService.ListMine(middleware.CurrentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, participations)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/internal/middleware"
	"github.com/volunteerhub/backend/internal/services"
	"github.com/volunteerhub/backend/pkg/response"
)

type NGOHandler struct {
	ngoService *services.NGOService
}

func NewNGOHandler(ngoService *services.NGOService) *NGOHandler {
	return &NGOHandler{ngoService: ngoService}
}

// Register creates a PENDING NGO owned by the caller
// POST /api/ngo
func (h *NGOHandler) Register(c *gin.Context) {
	var req services.RegisterNGORequest
	if !bindJSON(c, &req) {
		return
	}

	ngo, err := h.ngoService.Register(middleware.CurrentPrincipal(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, ngo)
}

// List returns approved NGOs; staff may ask for other statuses
// GET /api/ngo
func (h *NGOHandler) List(c *gin.Context) {
	var req services.NGOListRequest
	if !bindQuery(c, &req) {
		return
	}

	ngos, err := h.ngoService.List(&req, middleware.OptionalPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, ngos)
}

// GetByID
// GET /api/ngo/:id
func (h *NGOHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ngo, err := h.ngoService.Get(id, middleware.OptionalPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, ngo)
}

// Mine returns the caller's NGO
// GET /api/ngo/my
func (h *NGOHandler) Mine(c *gin.Context) {
	ngo, err := h.ngoService.Mine(middleware.CurrentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, ngo)
}

// Patch updates the profile, or moderates the NGO when the body carries a
// status. A body with both is rejected.
// PATCH /api/ngo/:id
func (h *NGOHandler) Patch(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.NGOPatchRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := req.CheckMixed(); err != nil {
		response.Error(c, err)
		return
	}

	principal := middleware.CurrentPrincipal(c)
	if req.Status != nil {
		ngo, err := h.ngoService.ChangeStatus(id, &services.NGOStatusRequest{
			Status:          *req.Status,
			RejectionReason: req.RejectionReason,
		}, principal)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, ngo)
		return
	}

	ngo, err := h.ngoService.UpdateProfile(id, &req.UpdateNGORequest, principal)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, ngo)
}

// Delete removes the NGO with its events and projects
// DELETE /api/ngo/:id
func (h *NGOHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.ngoService.Delete(id, middleware.CurrentPrincipal(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "ngo deleted successfully"})
}

// Pending lists NGOs awaiting moderation
// GET /api/admin/ngo/pending
func (h *NGOHandler) Pending(c *gin.Context) {
	ngos, err := h.ngoService.ListPending(middleware.CurrentPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, ngos)
}

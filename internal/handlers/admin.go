package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/internal/middleware"
	"github.com/volunteerhub/backend/internal/services"
	"github.com/volunteerhub/backend/pkg/response"
)

type AdminHandler struct {
	statsService *services.StatsService
	userService  *services.UserService
	auditService *services.AuditService
}

func NewAdminHandler(statsService *services.StatsService, userService *services.UserService, auditService *services.AuditService) *AdminHandler {
	return &AdminHandler{
		statsService: statsService,
		userService:  userService,
		auditService: auditService,
	}
}

// GetStats returns the admin dashboard counters
// GET /api/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.Admin()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// ListUsers returns paginated users
// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req services.UserListRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := h.userService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// DeleteUser removes a user with everything they own
// DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(id, middleware.CurrentPrincipal(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "user deleted successfully"})
}

// ListAuditLogs
// GET /api/admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	var req services.AuditLogListRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := h.auditService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

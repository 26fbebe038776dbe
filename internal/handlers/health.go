package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports the state of the process and its dependencies.
type HealthHandler struct {
	db           *gorm.DB
	queue        services.TaskQueue
	hub          *services.NotificationHub
	statsService *services.StatsService
}

func NewHealthHandler(db *gorm.DB, queue services.TaskQueue, hub *services.NotificationHub, statsService *services.StatsService) *HealthHandler {
	return &HealthHandler{
		db:           db,
		queue:        queue,
		hub:          hub,
		statsService: statsService,
	}
}

// CheckHealth returns the health status of all subsystems.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"
	code := 200

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}
	if dbStatus != "ok" {
		overall = "unhealthy"
		code = 503
	}

	queueMode := "sync"
	if h.queue != nil && h.queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	c.JSON(code, gin.H{
		"status":  overall,
		"service": "volunteerhub",
		"components": gin.H{
			"database":    dbStatus,
			"queue_mode":  queueMode,
			"sse_clients": h.hub.ClientCount(),
		},
	})
}

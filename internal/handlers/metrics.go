package handlers

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/pkg/logger"
)

var startTime = time.Now()

// Metrics returns Prometheus-compatible text format metrics.
// GET /metrics
func (h *HealthHandler) Metrics(c *gin.Context) {
	var b strings.Builder

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	writeGauge(&b, "volunteerhub_uptime_seconds", "Time since server start in seconds", time.Since(startTime).Seconds())
	writeGauge(&b, "volunteerhub_goroutines", "Number of active goroutines", float64(runtime.NumGoroutine()))
	writeGauge(&b, "volunteerhub_memory_alloc_bytes", "Current heap allocation in bytes", float64(m.Alloc))
	writeGauge(&b, "volunteerhub_gc_runs_total", "Total number of GC runs", float64(m.NumGC))

	if sqlDB, err := h.db.DB(); err == nil {
		stats := sqlDB.Stats()
		writeGauge(&b, "volunteerhub_db_open_connections", "Number of open DB connections", float64(stats.OpenConnections))
		writeGauge(&b, "volunteerhub_db_in_use_connections", "Number of in-use DB connections", float64(stats.InUse))
	}

	writeGauge(&b, "volunteerhub_sse_active_clients", "Number of active SSE connections", float64(h.hub.ClientCount()))

	queueAsync := 0.0
	if h.queue != nil && h.queue.IsAsync() {
		queueAsync = 1.0
	}
	writeGauge(&b, "volunteerhub_queue_async_enabled", "Whether async queue (Redis) is enabled (1=yes, 0=no)", queueAsync)

	if stats, err := h.statsService.Admin(); err != nil {
		logger.Warn().Err(err).Msg("[Metrics] failed to load domain counters")
	} else {
		writeGauge(&b, "volunteerhub_ngos_total", "Total number of NGOs", float64(stats.TotalNGOs))
		writeGauge(&b, "volunteerhub_ngos_pending", "NGOs awaiting moderation", float64(stats.PendingNGOs))
		writeGauge(&b, "volunteerhub_events_total", "Total number of events", float64(stats.TotalEvents))
		writeGauge(&b, "volunteerhub_events_pending", "Events awaiting moderation", float64(stats.PendingEvents))
		writeGauge(&b, "volunteerhub_volunteers_total", "Total number of volunteers", float64(stats.TotalVolunteers))
	}

	c.Data(200, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
}

func writeGauge(b *strings.Builder, name, help string, value float64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
	fmt.Fprintf(b, "%s %g\n\n", name, value)
}

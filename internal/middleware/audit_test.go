package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/backend/internal/config"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/internal/services"
	"github.com/volunteerhub/backend/pkg/response"
	"gorm.io/gorm"
)

func newAuditDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.OpenDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "audit.db"),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() { _ = models.CloseDB(db) })
	return db
}

func auditRouter(db *gorm.DB, role string) *gin.Engine {
	router := gin.New()
	router.Use(AuditLog(services.NewAuditService(db)))
	withRole := func(c *gin.Context) {
		c.Set(ContextUserID, uint(1))
		c.Set(ContextRole, role)
		c.Next()
	}
	router.POST("/api/admin/events/:id/approve", withRole, func(c *gin.Context) {
		response.Success(c, nil)
	})
	router.PATCH("/api/ngo/:id", withRole, func(c *gin.Context) {
		response.Error(c, response.NewBadRequest("invalid status transition"))
	})
	router.GET("/api/admin/stats", withRole, func(c *gin.Context) {
		response.Success(c, nil)
	})
	return router
}

func TestAuditLog_RecordsStaffWrites(t *testing.T) {
	db := newAuditDB(t)
	router := auditRouter(db, models.RoleModerator)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/admin/events/12/approve", strings.NewReader(`{"action":"approve"}`))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PATCH", "/api/ngo/4", strings.NewReader(`{"status":"BLOCKED"}`))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var entries []models.AuditLog
	require.NoError(t, db.Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)

	assert.Equal(t, "events", entries[0].Resource)
	assert.Equal(t, "approve", entries[0].Action)
	assert.Equal(t, "/api/admin/events/12/approve", entries[0].Path)
	assert.Equal(t, http.StatusOK, entries[0].Status)
	assert.Equal(t, models.RoleModerator, entries[0].Role)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, uint(1), *entries[0].UserID)
	assert.Equal(t, `{"action":"approve"}`, entries[0].Body)

	assert.Equal(t, "ngo", entries[1].Resource)
	assert.Equal(t, "update", entries[1].Action)
	assert.Equal(t, http.StatusBadRequest, entries[1].Status)
}

func TestAuditLog_SkipsReadsAndNonStaff(t *testing.T) {
	db := newAuditDB(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/admin/stats", nil)
	auditRouter(db, models.RoleAdmin).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/admin/events/1/approve", strings.NewReader(`{}`))
	auditRouter(db, models.RoleNGO).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestParseRouteInfo(t *testing.T) {
	cases := []struct {
		path, method     string
		resource, action string
	}{
		{"/api/ngo/:id", "PATCH", "ngo", "update"},
		{"/api/ngo/:id", "DELETE", "ngo", "delete"},
		{"/api/articles", "POST", "articles", "create"},
		{"/api/admin/events/:id/approve", "POST", "events", "approve"},
		{"/api/admin/users/:id", "DELETE", "users", "delete"},
		{"/api/participations/:id", "PATCH", "participations", "update"},
		{"", "POST", "unknown", "post"},
	}
	for _, tc := range cases {
		resource, action := parseRouteInfo(tc.path, tc.method)
		assert.Equal(t, tc.resource, resource, tc.path)
		assert.Equal(t, tc.action, action, tc.path)
	}
}

func TestMaskSensitiveFields(t *testing.T) {
	masked := maskSensitiveFields(`{"email":"a@b.c","password": "hunter22","name":"Anna"}`)
	assert.Equal(t, `{"email":"a@b.c","password": "***","name":"Anna"}`, masked)

	assert.Equal(t, `{"reason":"spam"}`, maskSensitiveFields(`{"reason":"spam"}`))
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/backend/internal/models"
)

func TestAuditService_RecordAndList(t *testing.T) {
	f := newFixture(t)
	svc := NewAuditService(f.db)
	admin := f.user(t, models.RoleAdmin)
	moderator := f.user(t, models.RoleModerator)

	for i := 0; i < 3; i++ {
		svc.Record(&models.AuditLog{UserID: &admin.ID, Role: admin.Role, Resource: "ngo", Action: "update", Method: "PATCH", Path: "/api/ngo/1", Status: 200})
	}
	svc.Record(&models.AuditLog{UserID: &moderator.ID, Role: moderator.Role, Resource: "event", Action: "approve", Method: "POST", Path: "/api/admin/events/1/approve", Status: 200})

	all, err := svc.List(&AuditLogListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, 20, all.PageSize)

	byUser, err := svc.List(&AuditLogListRequest{UserID: moderator.ID})
	require.NoError(t, err)
	require.Len(t, byUser.Items, 1)
	assert.Equal(t, "approve", byUser.Items[0].Action)

	byResource, err := svc.List(&AuditLogListRequest{Resource: "ngo", PageSize: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), byResource.Total)
	assert.Len(t, byResource.Items, 1)

	today := time.Now().Format("2006-01-02")
	byDate, err := svc.List(&AuditLogListRequest{StartDate: today, EndDate: today})
	require.NoError(t, err)
	assert.Equal(t, int64(4), byDate.Total)

	tomorrowDate := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	empty, err := svc.List(&AuditLogListRequest{StartDate: tomorrowDate})
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
}

func TestAuditService_Cleanup(t *testing.T) {
	f := newFixture(t)
	svc := NewAuditService(f.db)

	svc.Record(&models.AuditLog{Resource: "ngo", Action: "delete", CreatedAt: time.Now().AddDate(0, 0, -100)})
	svc.Record(&models.AuditLog{Resource: "ngo", Action: "delete", CreatedAt: time.Now().AddDate(0, 0, -10)})

	deleted, err := svc.Cleanup(0)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = svc.Cleanup(90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	left, err := svc.List(&AuditLogListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), left.Total)
}

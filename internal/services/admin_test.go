package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/response"
)

func TestStatsService_Admin(t *testing.T) {
	f := newFixture(t)
	svc := NewStatsService(f.db)
	_, ngo := f.approvedNGO(t)
	f.ngo(t, f.user(t, models.RoleNGO), models.NGOStatusPending)
	f.event(t, ngo, models.EventStatusDraft, tomorrow(), 3)
	f.event(t, ngo, models.EventStatusPublished, tomorrow(), 3)
	f.user(t, models.RoleVolunteer)
	f.user(t, models.RoleVolunteer)
	require.NoError(t, f.db.Create(&models.Article{Title: "Статья", Slug: "statya"}).Error)

	stats, err := svc.Admin()
	require.NoError(t, err)
	assert.Equal(t, &AdminStats{
		TotalNGOs:       2,
		TotalVolunteers: 2,
		TotalEvents:     2,
		PendingNGOs:     1,
		PendingEvents:   1,
		TotalArticles:   1,
	}, stats)
}

func TestUserService_List(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db)
	for i := 0; i < 3; i++ {
		f.user(t, models.RoleVolunteer)
	}
	ngoUser := f.user(t, models.RoleNGO)

	all, err := svc.List(&UserListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)

	ngos, err := svc.List(&UserListRequest{Role: models.RoleNGO})
	require.NoError(t, err)
	require.Len(t, ngos.Items, 1)
	assert.Equal(t, ngoUser.ID, ngos.Items[0].ID)

	found, err := svc.List(&UserListRequest{Search: ngoUser.Email})
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.Total)

	paged, err := svc.List(&UserListRequest{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), paged.Total)
	assert.Len(t, paged.Items, 1)
}

func TestUserService_DeleteReleasesSeats(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db)
	admin := f.user(t, models.RoleAdmin)
	_, ngo := f.approvedNGO(t)
	event := f.event(t, ngo, models.EventStatusPublished, tomorrow(), 2)
	volunteer := f.user(t, models.RoleVolunteer)
	f.participation(t, volunteer, event, models.ParticipationApproved)
	require.NoError(t, f.notifier.Notify(f.db, volunteer.ID, models.NotificationEventReminder, "t", "m", ""))

	requireAppError(t, svc.Delete(volunteer.ID, principalOf(f.user(t, models.RoleModerator))), response.ErrForbidden)
	requireAppError(t, svc.Delete(admin.ID, principalOf(admin)), response.ErrValidation)

	require.NoError(t, svc.Delete(volunteer.ID, principalOf(admin)))

	var stored models.Event
	require.NoError(t, f.db.First(&stored, event.ID).Error)
	assert.Zero(t, stored.ApprovedCount)

	var users, participations, notifications int64
	f.db.Model(&models.User{}).Where("id = ?", volunteer.ID).Count(&users)
	f.db.Model(&models.EventParticipation{}).Count(&participations)
	f.db.Model(&models.Notification{}).Count(&notifications)
	assert.Zero(t, users+participations+notifications)

	requireAppError(t, svc.Delete(volunteer.ID, principalOf(admin)), response.ErrNotFound)
}

func TestUserService_DeleteNGOOwnerRemovesOrganization(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db)
	owner, ngo := f.approvedNGO(t)
	f.event(t, ngo, models.EventStatusPublished, tomorrow(), 2)

	require.NoError(t, svc.Delete(owner.ID, principalOf(f.user(t, models.RoleAdmin))))

	var ngos, events int64
	f.db.Model(&models.NGO{}).Count(&ngos)
	f.db.Model(&models.Event{}).Count(&events)
	assert.Zero(t, ngos+events)
}

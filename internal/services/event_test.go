package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/response"
	"gorm.io/gorm"
)

func validCreateEventRequest() *CreateEventRequest {
	return &CreateEventRequest{
		Title:            "Посадка деревьев",
		Description:      strings.Repeat("Высаживаем молодые липы вдоль набережной. ", 2),
		StartDate:        nextWeek(),
		Address:          "Набережная, 12",
		City:             "Москва",
		VolunteersNeeded: 10,
		HelpType:         []string{"Экология"},
	}
}

func TestEventService_Create(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)

	event, err := svc.Create(principalOf(owner), validCreateEventRequest())
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusDraft, event.Status)
	assert.Equal(t, ngo.ID, event.NGOID)
	assert.Zero(t, event.ApprovedCount)
}

func TestEventService_Create_RequiresApprovedNGO(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)

	pendingOwner := f.user(t, models.RoleNGO)
	f.ngo(t, pendingOwner, models.NGOStatusPending)
	_, err := svc.Create(principalOf(pendingOwner), validCreateEventRequest())
	requireAppError(t, err, response.ErrForbidden)

	withoutNGO := f.user(t, models.RoleNGO)
	_, err = svc.Create(principalOf(withoutNGO), validCreateEventRequest())
	requireAppError(t, err, response.ErrForbidden)

	var count int64
	f.db.Model(&models.Event{}).Count(&count)
	assert.Zero(t, count)
}

func TestEventService_Create_Validation(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, _ := f.approvedNGO(t)

	tests := []struct {
		name   string
		mutate func(r *CreateEventRequest)
	}{
		{"short title", func(r *CreateEventRequest) { r.Title = "abc" }},
		{"short description", func(r *CreateEventRequest) { r.Description = "мало" }},
		{"no volunteers", func(r *CreateEventRequest) { r.VolunteersNeeded = 0 }},
		{"no help type", func(r *CreateEventRequest) { r.HelpType = nil }},
		{"blank help type", func(r *CreateEventRequest) { r.HelpType = []string{"  "} }},
		{"missing start", func(r *CreateEventRequest) { r.StartDate = time.Time{} }},
		{"end before start", func(r *CreateEventRequest) {
			end := r.StartDate.Add(-time.Hour)
			r.EndDate = &end
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateEventRequest()
			tt.mutate(req)
			_, err := svc.Create(principalOf(owner), req)
			requireAppError(t, err, response.ErrValidation)
		})
	}
}

func TestEventService_Moderate_Approve(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	event := f.event(t, ngo, models.EventStatusDraft, nextWeek(), 5)

	moderated, err := svc.Moderate(event.ID, &ModerateEventRequest{Action: "approve"}, principalOf(f.user(t, models.RoleModerator)))
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusPublished, moderated.Status)

	assert.Len(t, f.notifications(t, owner.ID, models.NotificationEventApproved), 1)
	assert.Empty(t, f.notifications(t, owner.ID, models.NotificationEventRejected))

	var total int64
	f.db.Model(&models.Notification{}).Where("user_id = ?", owner.ID).Count(&total)
	assert.Equal(t, int64(1), total)
}

func TestEventService_Moderate_Reject(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	event := f.event(t, ngo, models.EventStatusDraft, nextWeek(), 5)

	_, err := svc.Moderate(event.ID, &ModerateEventRequest{Action: "reject", Reason: "мало деталей"}, principalOf(f.user(t, models.RoleAdmin)))
	require.NoError(t, err)

	var stored models.Event
	require.NoError(t, f.db.First(&stored, event.ID).Error)
	assert.Equal(t, models.EventStatusCancelled, stored.Status)
	assert.Equal(t, "мало деталей", stored.ModerationNote)

	rejected := f.notifications(t, owner.ID, models.NotificationEventRejected)
	require.Len(t, rejected, 1)
	assert.Contains(t, rejected[0].Message, "Причина: мало деталей")
}

func TestEventService_Moderate_Rules(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	draft := f.event(t, ngo, models.EventStatusDraft, nextWeek(), 5)
	published := f.event(t, ngo, models.EventStatusPublished, nextWeek(), 5)
	moderator := principalOf(f.user(t, models.RoleModerator))

	_, err := svc.Moderate(draft.ID, &ModerateEventRequest{Action: "approve"}, principalOf(owner))
	requireAppError(t, err, response.ErrForbidden)

	_, err = svc.Moderate(published.ID, &ModerateEventRequest{Action: "reject"}, moderator)
	requireAppError(t, err, response.ErrValidation)

	_, err = svc.Moderate(draft.ID, &ModerateEventRequest{Action: "publish"}, moderator)
	requireAppError(t, err, response.ErrValidation)

	_, err = svc.Moderate(9999, &ModerateEventRequest{Action: "approve"}, moderator)
	requireAppError(t, err, response.ErrNotFound)
}

func TestEventService_Update(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	event := f.event(t, ngo, models.EventStatusPublished, nextWeek(), 5)
	f.participation(t, f.user(t, models.RoleVolunteer), event, models.ParticipationApproved)

	updated, err := svc.Update(event.ID, &UpdateEventRequest{
		Title:    ptr("Новый субботник"),
		HelpType: &[]string{"Дети", "Экология"},
	}, principalOf(owner))
	require.NoError(t, err)
	assert.Equal(t, "Новый субботник", updated.Title)
	assert.Equal(t, models.EventStatusPublished, updated.Status)
	assert.Equal(t, 1, updated.ApprovedCount)

	var stored models.Event
	require.NoError(t, f.db.First(&stored, event.ID).Error)
	assert.Equal(t, "Новый субботник", stored.Title)
	assert.Equal(t, 1, stored.ApprovedCount)
	assert.Equal(t, 5, stored.VolunteersNeeded)
}

func TestEventService_Update_Status(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	event := f.event(t, ngo, models.EventStatusDraft, nextWeek(), 5)

	_, err := svc.Update(event.ID, &UpdateEventRequest{Status: ptr(models.EventStatusPublished)}, principalOf(owner))
	requireAppError(t, err, response.ErrValidation)

	updated, err := svc.Update(event.ID, &UpdateEventRequest{Status: ptr(models.EventStatusCancelled)}, principalOf(owner))
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCancelled, updated.Status)
}

func TestEventService_Update_KeepsConcurrentModeration(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	event := f.event(t, ngo, models.EventStatusDraft, nextWeek(), 5)

	afterLoadOnce(t, f.db, "events", func(db *gorm.DB) {
		require.NoError(t, db.Exec("UPDATE events SET status = ?, moderation_note = ? WHERE id = ?",
			models.EventStatusPublished, "ok", event.ID).Error)
	})

	updated, err := svc.Update(event.ID, &UpdateEventRequest{Title: ptr("Субботник в парке")}, principalOf(owner))
	require.NoError(t, err)
	assert.Equal(t, "Субботник в парке", updated.Title)
	assert.Equal(t, models.EventStatusPublished, updated.Status)

	var stored models.Event
	require.NoError(t, f.db.First(&stored, event.ID).Error)
	assert.Equal(t, models.EventStatusPublished, stored.Status)
	assert.Equal(t, "ok", stored.ModerationNote)
}

func TestEventService_Update_WithdrawRacesModeration(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	event := f.event(t, ngo, models.EventStatusDraft, nextWeek(), 5)

	afterLoadOnce(t, f.db, "events", func(db *gorm.DB) {
		require.NoError(t, db.Exec("UPDATE events SET status = ? WHERE id = ?", models.EventStatusPublished, event.ID).Error)
	})

	_, err := svc.Update(event.ID, &UpdateEventRequest{
		Title:  ptr("Отменённый субботник"),
		Status: ptr(models.EventStatusCancelled),
	}, principalOf(owner))
	requireAppError(t, err, response.ErrValidation)
	assert.Equal(t, "invalid status transition", err.Error())

	var stored models.Event
	require.NoError(t, f.db.First(&stored, event.ID).Error)
	assert.Equal(t, models.EventStatusPublished, stored.Status)
	assert.Equal(t, event.Title, stored.Title)
}

func TestEventService_Update_Capacity(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	event := f.event(t, ngo, models.EventStatusPublished, nextWeek(), 5)
	for i := 0; i < 3; i++ {
		f.participation(t, f.user(t, models.RoleVolunteer), event, models.ParticipationApproved)
	}

	_, err := svc.Update(event.ID, &UpdateEventRequest{VolunteersNeeded: ptr(2)}, principalOf(owner))
	requireAppError(t, err, response.ErrValidation)

	updated, err := svc.Update(event.ID, &UpdateEventRequest{VolunteersNeeded: ptr(3)}, principalOf(owner))
	require.NoError(t, err)
	assert.Equal(t, 3, updated.VolunteersNeeded)
	assert.Zero(t, updated.SpotsLeft())

	var stored models.Event
	require.NoError(t, f.db.First(&stored, event.ID).Error)
	assert.Equal(t, 3, stored.VolunteersNeeded)
	assert.Equal(t, 3, stored.ApprovedCount)
}

func TestEventService_Update_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	_, ngo := f.approvedNGO(t)
	event := f.event(t, ngo, models.EventStatusPublished, nextWeek(), 5)
	otherOwner, _ := f.approvedNGO(t)

	for _, p := range []Principal{principalOf(otherOwner), principalOf(f.user(t, models.RoleAdmin))} {
		_, err := svc.Update(event.ID, &UpdateEventRequest{Title: ptr("Чужое событие")}, p)
		requireAppError(t, err, response.ErrForbidden)
		requireAppError(t, svc.Delete(event.ID, p), response.ErrForbidden)
	}
}

func TestEventService_Delete(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	event := f.event(t, ngo, models.EventStatusPublished, nextWeek(), 5)
	f.participation(t, f.user(t, models.RoleVolunteer), event, models.ParticipationPending)

	require.NoError(t, svc.Delete(event.ID, principalOf(owner)))

	var events, participations int64
	f.db.Model(&models.Event{}).Count(&events)
	f.db.Model(&models.EventParticipation{}).Count(&participations)
	assert.Zero(t, events)
	assert.Zero(t, participations)

	requireAppError(t, svc.Delete(event.ID, principalOf(owner)), response.ErrNotFound)
}

func TestEventService_ListPublic(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	_, ngo := f.approvedNGO(t)
	later := f.event(t, ngo, models.EventStatusPublished, nextWeek(), 5)
	sooner := f.event(t, ngo, models.EventStatusPublished, tomorrow(), 5)
	f.event(t, ngo, models.EventStatusDraft, tomorrow(), 5)
	f.event(t, ngo, models.EventStatusCancelled, tomorrow(), 5)

	events, err := svc.ListPublic(&EventListRequest{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, sooner.ID, events[0].ID)
	assert.Equal(t, later.ID, events[1].ID)
	require.NotNil(t, events[0].NGO)
	assert.Equal(t, ngo.ID, events[0].NGO.ID)

	events, err = svc.ListPublic(&EventListRequest{StartDate: time.Now().Add(72 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, later.ID, events[0].ID)
}

func TestEventService_ListPublic_Filters(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	_, ngo := f.approvedNGO(t)
	eco := f.event(t, ngo, models.EventStatusPublished, tomorrow(), 5)
	kids := f.event(t, ngo, models.EventStatusPublished, tomorrow(), 5)
	require.NoError(t, f.db.Model(&models.Event{}).Where("id = ?", kids.ID).
		Updates(map[string]interface{}{"help_type": models.StringList{"Дети"}, "city": "Казань"}).Error)

	events, err := svc.ListPublic(&EventListRequest{HelpType: "Экология"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, eco.ID, events[0].ID)

	events, err = svc.ListPublic(&EventListRequest{City: "Казань"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, kids.ID, events[0].ID)

	events, err = svc.ListPublic(&EventListRequest{HelpType: "Эко"})
	require.NoError(t, err)
	assert.Empty(t, events, "help type matches whole elements only")
}

func TestEventService_Urgent(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	_, ngo := f.approvedNGO(t)

	for i := 0; i < 6; i++ {
		f.event(t, ngo, models.EventStatusPublished, time.Now().Add(time.Duration(i+1)*time.Hour), 5)
	}
	full := f.event(t, ngo, models.EventStatusPublished, time.Now().Add(30*time.Minute), 1)
	f.participation(t, f.user(t, models.RoleVolunteer), full, models.ParticipationApproved)
	f.event(t, ngo, models.EventStatusPublished, time.Now().Add(10*24*time.Hour), 5)
	f.event(t, ngo, models.EventStatusPublished, yesterday(), 5)
	f.event(t, ngo, models.EventStatusDraft, tomorrow(), 5)

	events, err := svc.Urgent("")
	require.NoError(t, err)
	require.Len(t, events, 5)
	for i, e := range events {
		assert.NotEqual(t, full.ID, e.ID)
		assert.Positive(t, e.SpotsLeft())
		if i > 0 {
			assert.False(t, e.StartDate.Before(events[i-1].StartDate))
		}
	}

	events, err = svc.Urgent("Казань")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventService_GetVisibility(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	draft := f.event(t, ngo, models.EventStatusDraft, nextWeek(), 5)
	published := f.event(t, ngo, models.EventStatusPublished, nextWeek(), 5)

	_, err := svc.Get(published.ID, nil)
	require.NoError(t, err)

	_, err = svc.Get(draft.ID, nil)
	requireAppError(t, err, response.ErrNotFound)

	volunteer := principalOf(f.user(t, models.RoleVolunteer))
	_, err = svc.Get(draft.ID, &volunteer)
	requireAppError(t, err, response.ErrNotFound)

	ownerP := principalOf(owner)
	_, err = svc.Get(draft.ID, &ownerP)
	require.NoError(t, err)

	moderator := principalOf(f.user(t, models.RoleModerator))
	_, err = svc.Get(draft.ID, &moderator)
	require.NoError(t, err)
}

func TestEventService_MineCounts(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	soon := f.event(t, ngo, models.EventStatusPublished, tomorrow(), 5)
	late := f.event(t, ngo, models.EventStatusDraft, nextWeek(), 5)
	f.participation(t, f.user(t, models.RoleVolunteer), soon, models.ParticipationApproved)
	f.participation(t, f.user(t, models.RoleVolunteer), soon, models.ParticipationPending)
	f.participation(t, f.user(t, models.RoleVolunteer), soon, models.ParticipationRejected)

	_, otherNGO := f.approvedNGO(t)
	f.event(t, otherNGO, models.EventStatusPublished, tomorrow(), 5)

	items, err := svc.Mine(principalOf(owner))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, late.ID, items[0].ID)
	assert.Equal(t, soon.ID, items[1].ID)
	assert.Equal(t, int64(3), items[1].ParticipantsCount)
	assert.Equal(t, int64(1), items[1].PendingCount)
	assert.Zero(t, items[0].ParticipantsCount)

	_, err = svc.Mine(principalOf(f.user(t, models.RoleNGO)))
	requireAppError(t, err, response.ErrNotFound)
}

func TestEventService_Manage(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	event := f.event(t, ngo, models.EventStatusPublished, tomorrow(), 5)
	volunteer := f.user(t, models.RoleVolunteer)
	f.participation(t, volunteer, event, models.ParticipationPending)

	view, err := svc.Manage(event.ID, principalOf(owner))
	require.NoError(t, err)
	require.Len(t, view.Participants, 1)
	assert.Equal(t, volunteer.Email, view.Participants[0].User.Email)
	assert.Equal(t, models.ParticipationPending, view.Participants[0].Status)

	_, err = svc.Manage(event.ID, principalOf(volunteer))
	requireAppError(t, err, response.ErrForbidden)

	_, err = svc.Manage(event.ID, principalOf(f.user(t, models.RoleAdmin)))
	require.NoError(t, err)
}

func TestEventService_Pending(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.db, f.notifier)
	owner, ngo := f.approvedNGO(t)
	draft := f.event(t, ngo, models.EventStatusDraft, nextWeek(), 5)
	f.event(t, ngo, models.EventStatusPublished, nextWeek(), 5)

	events, err := svc.Pending(principalOf(f.user(t, models.RoleModerator)))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, draft.ID, events[0].ID)

	_, err = svc.Pending(principalOf(owner))
	requireAppError(t, err, response.ErrForbidden)
}

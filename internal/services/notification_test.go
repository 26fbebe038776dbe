package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/response"
	"gorm.io/gorm"
)

func TestNotificationService_TransactionPushesAfterCommit(t *testing.T) {
	f := newFixture(t)
	hub := NewNotificationHub()
	f.notifier.SetHub(hub)
	user := f.user(t, models.RoleVolunteer)
	ch := hub.Subscribe("client-1", user.ID)
	defer hub.Unsubscribe("client-1")

	rollback := errors.New("rollback")
	err := f.notifier.Transaction(func(tx *gorm.DB, n *TxNotifier) error {
		require.NoError(t, n.Notify(user.ID, models.NotificationEventReminder, "t", "m", ""))
		select {
		case <-ch:
			t.Fatal("pushed before commit")
		default:
		}
		return rollback
	})
	require.ErrorIs(t, err, rollback)
	assert.Empty(t, f.notifications(t, user.ID, models.NotificationEventReminder))
	select {
	case ev := <-ch:
		t.Fatalf("rolled back notification was pushed: %+v", ev)
	default:
	}

	require.NoError(t, f.notifier.Transaction(func(tx *gorm.DB, n *TxNotifier) error {
		return n.Notify(user.ID, models.NotificationEventReminder, "Напоминание", "m", "/events/1")
	}))
	assert.Len(t, f.notifications(t, user.ID, models.NotificationEventReminder), 1)
	select {
	case ev := <-ch:
		assert.Equal(t, "Напоминание", ev.Title)
	default:
		t.Fatal("expected a live notification after commit")
	}
}

func TestNotificationService_NotifyPublishesToHub(t *testing.T) {
	f := newFixture(t)
	hub := NewNotificationHub()
	f.notifier.SetHub(hub)
	user := f.user(t, models.RoleVolunteer)
	ch := hub.Subscribe("client-1", user.ID)
	defer hub.Unsubscribe("client-1")

	require.NoError(t, f.notifier.Notify(f.db, user.ID, models.NotificationNewVolunteer, "Новый волонтёр", "m", ""))

	select {
	case ev := <-ch:
		assert.Equal(t, models.NotificationNewVolunteer, ev.Type)
		assert.Equal(t, "Новый волонтёр", ev.Title)
	default:
		t.Fatal("expected a live notification")
	}
}

func TestNotificationService_SendEmailSwallowsErrors(t *testing.T) {
	f := newFixture(t)
	f.queue.err = errors.New("queue down")
	assert.NotPanics(t, func() {
		f.notifier.SendEmail("a@example.com", "subject", "<p>hi</p>")
	})

	f.queue.err = nil
	f.notifier.SendEmail("", "subject", "<p>hi</p>")
	assert.Empty(t, f.queue.tasks)
}

func TestNotificationService_ListAndMark(t *testing.T) {
	f := newFixture(t)
	svc := f.notifier
	user := f.user(t, models.RoleVolunteer)
	other := f.user(t, models.RoleVolunteer)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Notify(f.db, user.ID, models.NotificationEventReminder, "t", "m", ""))
	}
	require.NoError(t, svc.Notify(f.db, other.ID, models.NotificationEventReminder, "t", "m", ""))

	list, err := svc.List(user.ID, &NotificationListRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	assert.Equal(t, int64(3), list.UnreadCount)
	assert.Greater(t, list.Items[0].ID, list.Items[2].ID, "newest first")

	marked, err := svc.MarkRead(user.ID, &MarkNotificationRequest{ID: list.Items[0].ID})
	require.NoError(t, err)
	assert.True(t, marked.Read)

	list, err = svc.List(user.ID, &NotificationListRequest{Unread: true})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, int64(2), list.UnreadCount)

	unmarked, err := svc.MarkRead(user.ID, &MarkNotificationRequest{ID: list.Items[0].ID, Read: ptr(false)})
	require.NoError(t, err)
	assert.False(t, unmarked.Read)

	otherList, err := svc.List(other.ID, &NotificationListRequest{})
	require.NoError(t, err)
	_, err = svc.MarkRead(user.ID, &MarkNotificationRequest{ID: otherList.Items[0].ID})
	requireAppError(t, err, response.ErrNotFound)

	changed, err := svc.MarkAllRead(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	list, err = svc.List(user.ID, &NotificationListRequest{})
	require.NoError(t, err)
	assert.Zero(t, list.UnreadCount)
}

func TestNotificationService_Delete(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, models.RoleVolunteer)
	other := f.user(t, models.RoleVolunteer)
	require.NoError(t, f.notifier.Notify(f.db, user.ID, models.NotificationEventReminder, "t", "m", ""))
	list, err := f.notifier.List(user.ID, &NotificationListRequest{})
	require.NoError(t, err)
	id := list.Items[0].ID

	requireAppError(t, f.notifier.Delete(other.ID, id), response.ErrNotFound)
	require.NoError(t, f.notifier.Delete(user.ID, id))
	requireAppError(t, f.notifier.Delete(user.ID, id), response.ErrNotFound)
}

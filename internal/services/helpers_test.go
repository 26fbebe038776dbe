package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/backend/internal/config"
	"github.com/volunteerhub/backend/internal/models"
	"gorm.io/gorm"
)

// recordingQueue captures emails instead of sending them.
type recordingQueue struct {
	mu    sync.Mutex
	tasks []*EmailTask
	err   error
}

func (q *recordingQueue) Enqueue(task *EmailTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error  { return nil }

func (q *recordingQueue) sentTo(addr string) []*EmailTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*EmailTask
	for _, t := range q.tasks {
		if t.To == addr {
			out = append(out, t)
		}
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	queue    *recordingQueue
	notifier *NotificationService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.OpenDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "services.db"),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() { _ = models.CloseDB(db) })
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	queue := &recordingQueue{}
	return &fixture{db: db, queue: queue, notifier: NewNotificationService(db, queue)}
}

var fixtureSeq int64

func nextSeq() int64 { return atomic.AddInt64(&fixtureSeq, 1) }

func (f *fixture) user(t *testing.T, role string) *models.User {
	t.Helper()
	n := nextSeq()
	u := &models.User{
		Email:        fmt.Sprintf("user%d@example.com", n),
		Name:         fmt.Sprintf("User %d", n),
		Role:         role,
		AuthProvider: models.AuthProviderLocal,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) ngo(t *testing.T, owner *models.User, status string) *models.NGO {
	t.Helper()
	n := &models.NGO{
		UserID:           owner.ID,
		LegalName:        "АНО Помощь",
		BrandName:        fmt.Sprintf("Помощь %d", owner.ID),
		INN:              fmt.Sprintf("%010d", nextSeq()),
		Description:      strings.Repeat("Описание организации. ", 5),
		City:             "Москва",
		Address:          "ул. Ленина, 1",
		Phone:            "+79990000000",
		Email:            owner.Email,
		Categories:       models.StringList{"Экология"},
		OrganizationType: "АНО",
		Status:           status,
	}
	require.NoError(t, f.db.Create(n).Error)
	return n
}

// approvedNGO creates an NGO user with an approved organization.
func (f *fixture) approvedNGO(t *testing.T) (*models.User, *models.NGO) {
	t.Helper()
	owner := f.user(t, models.RoleNGO)
	return owner, f.ngo(t, owner, models.NGOStatusApproved)
}

func (f *fixture) event(t *testing.T, ngo *models.NGO, status string, start time.Time, needed int) *models.Event {
	t.Helper()
	e := &models.Event{
		NGOID:            ngo.ID,
		Title:            fmt.Sprintf("Субботник %d", nextSeq()),
		Description:      strings.Repeat("Уборка территории парка. ", 4),
		StartDate:        start,
		Address:          "Парк Горького",
		City:             ngo.City,
		VolunteersNeeded: needed,
		HelpType:         models.StringList{"Экология"},
		Status:           status,
	}
	require.NoError(t, f.db.Create(e).Error)
	return e
}

func (f *fixture) participation(t *testing.T, user *models.User, event *models.Event, status string) *models.EventParticipation {
	t.Helper()
	p := &models.EventParticipation{UserID: user.ID, EventID: event.ID, Status: status}
	require.NoError(t, f.db.Create(p).Error)
	if status == models.ParticipationApproved {
		require.NoError(t, f.db.Model(&models.Event{}).Where("id = ?", event.ID).
			UpdateColumn("approved_count", gorm.Expr("approved_count + 1")).Error)
	}
	return p
}

func (f *fixture) notifications(t *testing.T, userID uint, notificationType string) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, f.db.Where("user_id = ? AND type = ?", userID, notificationType).Find(&out).Error)
	return out
}

func principalOf(u *models.User) Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

func ptr[T any](v T) *T { return &v }

// requireAppError asserts err is an *AppError matching the sentinel.
func requireAppError(t *testing.T, err error, target error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, target), "expected %v, got %T: %v", target, err, err)
}

var (
	tomorrow  = func() time.Time { return time.Now().Add(24 * time.Hour) }
	nextWeek  = func() time.Time { return time.Now().Add(6 * 24 * time.Hour) }
	yesterday = func() time.Time { return time.Now().Add(-24 * time.Hour) }
)

// afterLoadOnce runs fn right after the first SELECT from table, standing in
// for another request that commits between a service's read and its write.
func afterLoadOnce(t *testing.T, db *gorm.DB, table string, fn func(db *gorm.DB)) {
	t.Helper()
	var once sync.Once
	err := db.Callback().Query().After("gorm:query").Register("test:interleave_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table != table || tx.Error != nil {
			return
		}
		once.Do(func() { fn(tx.Session(&gorm.Session{NewDB: true})) })
	})
	require.NoError(t, err)
}

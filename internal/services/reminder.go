package services

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/volunteerhub/backend/internal/config"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	jobEventReminders   = "event_reminders"
	jobAuditCleanup     = "audit_cleanup"
	reminderWindow      = 24 * time.Hour
	jobRunRetention     = 7 * 24 * time.Hour
	defaultReminderCron = "0 9 * * *"
)

// ReminderService runs the scheduled jobs: event reminders for volunteers
// and audit log retention.
type ReminderService struct {
	db            *gorm.DB
	notifier      *NotificationService
	audit         *AuditService
	cronExpr      string
	retentionDays int
	scheduler     *cron.Cron
}

func NewReminderService(db *gorm.DB, notifier *NotificationService, audit *AuditService, cfg *config.Config) *ReminderService {
	expr := cfg.Reminders.Cron
	if expr == "" {
		expr = defaultReminderCron
	}
	return &ReminderService{
		db:            db,
		notifier:      notifier,
		audit:         audit,
		cronExpr:      expr,
		retentionDays: cfg.Audit.RetentionDays,
	}
}

func (s *ReminderService) StartScheduler() error {
	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc(s.cronExpr, s.runScheduled); err != nil {
		return err
	}
	s.scheduler.Start()
	logger.Info().Str("cron", s.cronExpr).Msg("[Reminder] Scheduler started")
	return nil
}

// StopScheduler waits for a running job to finish.
func (s *ReminderService) StopScheduler() {
	if s.scheduler != nil {
		<-s.scheduler.Stop().Done()
	}
}

func (s *ReminderService) runScheduled() {
	now := time.Now()

	s.runOnce(jobEventReminders, now.Format("2006-01-02T15:04"), func() {
		sent, err := s.SendReminders(now)
		if err != nil {
			logger.Error().Err(err).Msg("[Reminder] failed to send reminders")
			return
		}
		logger.Info().Int("sent", sent).Msg("[Reminder] reminders sent")
	})

	s.runOnce(jobAuditCleanup, now.Format("2006-01-02"), func() {
		deleted, err := s.audit.Cleanup(s.retentionDays)
		if err != nil {
			logger.Error().Err(err).Msg("[Reminder] audit cleanup failed")
			return
		}
		if deleted > 0 {
			logger.Info().Int64("deleted", deleted).Int("retention_days", s.retentionDays).Msg("[Reminder] old audit logs removed")
		}

		pruned, err := s.PruneJobRuns(now)
		if err != nil {
			logger.Error().Err(err).Msg("[Reminder] job run cleanup failed")
			return
		}
		if pruned > 0 {
			logger.Info().Int64("deleted", pruned).Msg("[Reminder] old job runs removed")
		}
	})
}

// PruneJobRuns drops claims older than a week. Reminder keys are per minute,
// so the table would otherwise grow with every tick.
func (s *ReminderService) PruneJobRuns(now time.Time) (int64, error) {
	result := s.db.Where("started_at < ?", now.Add(-jobRunRetention)).Delete(&models.JobRun{})
	return result.RowsAffected, result.Error
}

// runOnce runs fn unless another instance already claimed jobName for
// runKey. The claim is the insert into job_runs.
func (s *ReminderService) runOnce(jobName, runKey string, fn func()) bool {
	host, _ := os.Hostname()
	run := models.JobRun{JobName: jobName, RunKey: runKey, Host: host, StartedAt: time.Now()}
	if err := s.db.Create(&run).Error; err != nil {
		if models.IsUniqueViolation(err) {
			logger.Debug().Str("job", jobName).Str("key", runKey).Msg("[Reminder] already claimed by another instance")
		} else {
			logger.Error().Err(err).Str("job", jobName).Msg("[Reminder] failed to claim job run")
		}
		return false
	}
	fn()
	return true
}

// SendReminders notifies approved volunteers of published events starting
// within 24 hours of now. Each participation is reminded at most once.
func (s *ReminderService) SendReminders(now time.Time) (int, error) {
	upcoming := s.db.Model(&models.Event{}).
		Select("id").
		Where("status = ? AND start_date > ? AND start_date <= ?", models.EventStatusPublished, now, now.Add(reminderWindow))

	var participations []models.EventParticipation
	if err := s.db.Preload("Event").Preload("User").
		Where("status = ? AND reminder_sent_at IS NULL", models.ParticipationApproved).
		Where("event_id IN (?)", upcoming).
		Find(&participations).Error; err != nil {
		return 0, err
	}

	sent := 0
	for _, part := range participations {
		if part.Event == nil {
			continue
		}
		claimed := false
		err := s.notifier.Transaction(func(tx *gorm.DB, n *TxNotifier) error {
			result := tx.Model(&models.EventParticipation{}).
				Where("id = ? AND reminder_sent_at IS NULL", part.ID).
				UpdateColumn("reminder_sent_at", now)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return nil
			}
			claimed = true
			return n.Notify(part.UserID, models.NotificationEventReminder,
				"Напоминание о событии",
				"Событие «"+part.Event.Title+"» начнётся "+part.Event.StartDate.Format("02.01.2006 в 15:04")+".",
				eventLink(part.Event.ID))
		})
		if err != nil {
			logger.Warn().Err(err).Uint("participation_id", part.ID).Msg("[Reminder] failed to record reminder")
			continue
		}
		if !claimed {
			continue
		}
		sent++
		if part.User != nil {
			s.notifier.SendEmail(part.User.Email, "Напоминание: "+part.Event.Title,
				eventReminderEmail(part.Event.Title, part.Event.StartDate.Format("02.01.2006 15:04")))
		}
	}
	return sent, nil
}

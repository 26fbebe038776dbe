package services

import (
	"strconv"
	"time"

	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/logger"
	"github.com/volunteerhub/backend/pkg/response"
	"gorm.io/gorm"
)

type ParticipationService struct {
	db              *gorm.DB
	notifier        *NotificationService
	appURL          string
	requireApproval bool
}

func NewParticipationService(db *gorm.DB, notifier *NotificationService, appURL string, requireApproval bool) *ParticipationService {
	return &ParticipationService{
		db:              db,
		notifier:        notifier,
		appURL:          appURL,
		requireApproval: requireApproval,
	}
}

type UpdateParticipationRequest struct {
	Status   string `json:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Attended *bool  `json:"attended"`
}

func eventLink(eventID uint) string {
	return "/events/" + strconv.FormatUint(uint64(eventID), 10)
}

func errEventFull() error {
	return response.NewConflict("event is full")
}

// reserveSeat takes one seat of the event. The conditional UPDATE is the
// only writer of approved_count, so concurrent callers can never push it past
// volunteers_needed: once the event is full, zero rows match.
func reserveSeat(tx *gorm.DB, eventID uint) error {
	result := tx.Model(&models.Event{}).
		Where("id = ? AND approved_count < volunteers_needed", eventID).
		UpdateColumn("approved_count", gorm.Expr("approved_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errEventFull()
	}
	return nil
}

// Participate signs the volunteer up for a published upcoming event.
func (s *ParticipationService) Participate(eventID uint, p Principal) (*models.EventParticipation, error) {
	if p.Role != models.RoleVolunteer {
		return nil, response.NewForbidden("only volunteers can sign up for events")
	}

	var event models.Event
	if err := s.db.Preload("NGO.User").First(&event, eventID).Error; err != nil {
		return nil, notFoundOr(err, "event not found")
	}
	if event.Status != models.EventStatusPublished {
		return nil, response.NewNotFound("event not found")
	}
	if event.StartDate.Before(time.Now()) {
		return nil, response.NewBadRequest("event has already started")
	}
	if event.ApprovedCount >= event.VolunteersNeeded {
		return nil, errEventFull()
	}

	var existing int64
	if err := s.db.Model(&models.EventParticipation{}).
		Where("user_id = ? AND event_id = ?", p.UserID, event.ID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, response.NewConflict("already registered for this event")
	}

	var volunteer models.User
	if err := s.db.First(&volunteer, p.UserID).Error; err != nil {
		return nil, notFoundOr(err, "user not found")
	}

	status := models.ParticipationApproved
	if s.requireApproval {
		status = models.ParticipationPending
	}
	participation := &models.EventParticipation{
		UserID:  p.UserID,
		EventID: event.ID,
		Status:  status,
	}

	err := s.notifier.Transaction(func(tx *gorm.DB, n *TxNotifier) error {
		if status == models.ParticipationApproved {
			if err := reserveSeat(tx, event.ID); err != nil {
				return err
			}
		}
		if err := tx.Create(participation).Error; err != nil {
			if models.IsUniqueViolation(err) {
				return response.NewConflict("already registered for this event")
			}
			return err
		}
		if event.NGO == nil {
			return nil
		}
		return n.Notify(event.NGO.UserID, models.NotificationNewVolunteer,
			"Новый волонтёр",
			volunteer.Name+" записался на событие «"+event.Title+"».",
			eventLink(event.ID)+"/manage")
	})
	if err != nil {
		return nil, err
	}

	if event.NGO != nil && event.NGO.User != nil {
		s.notifier.SendEmail(event.NGO.User.Email, "Новый волонтёр на событие",
			newVolunteerEmail(s.appURL, volunteer.Name, event.Title))
	}

	logger.Info().Uint("event_id", event.ID).Uint("user_id", p.UserID).Str("status", status).Msg("[Participation] signed up")
	return participation, nil
}

func (s *ParticipationService) load(participationID uint) (*models.EventParticipation, error) {
	var participation models.EventParticipation
	if err := s.db.Preload("Event.NGO").Preload("User").First(&participation, participationID).Error; err != nil {
		return nil, notFoundOr(err, "participation not found")
	}
	return &participation, nil
}

// UpdateStatus reviews a sign-up. The event owner or an admin approves or
// rejects a PENDING participation; approving an APPROVED one is a no-op.
// Attended, when present, is applied through MarkAttendance rules.
func (s *ParticipationService) UpdateStatus(participationID uint, req *UpdateParticipationRequest, p Principal) (*models.EventParticipation, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	participation, err := s.load(participationID)
	if err != nil {
		return nil, err
	}
	if !p.CanManageEvent(participation.Event) {
		return nil, response.NewForbidden("you cannot manage this event")
	}

	if req.Status != "" {
		if err := s.transition(participation, req.Status); err != nil {
			return nil, err
		}
	}
	if req.Attended != nil {
		if err := s.setAttended(participation, *req.Attended); err != nil {
			return nil, err
		}
	}
	return participation, nil
}

func (s *ParticipationService) transition(participation *models.EventParticipation, to string) error {
	from := participation.Status
	if from == models.ParticipationApproved && to == models.ParticipationApproved {
		return nil
	}
	if from != models.ParticipationPending || (to != models.ParticipationApproved && to != models.ParticipationRejected) {
		return response.NewBadRequest("invalid status transition")
	}

	event := participation.Event
	link := eventLink(event.ID)

	err := s.notifier.Transaction(func(tx *gorm.DB, n *TxNotifier) error {
		if to == models.ParticipationApproved {
			if err := reserveSeat(tx, event.ID); err != nil {
				return err
			}
		}
		result := tx.Model(&models.EventParticipation{}).
			Where("id = ? AND status = ?", participation.ID, models.ParticipationPending).
			Update("status", to)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewBadRequest("invalid status transition")
		}

		if to == models.ParticipationApproved {
			return n.Notify(participation.UserID, models.NotificationParticipationApproved,
				"Заявка одобрена",
				"Ваша заявка на событие «"+event.Title+"» одобрена!",
				link)
		}
		return n.Notify(participation.UserID, models.NotificationParticipationRejected,
			"Заявка отклонена",
			"Ваша заявка на событие «"+event.Title+"» отклонена.",
			link)
	})
	if err != nil {
		return err
	}

	participation.Status = to
	if to == models.ParticipationApproved {
		event.ApprovedCount++
		if participation.User != nil {
			s.notifier.SendEmail(participation.User.Email, "Ваша заявка одобрена!", participationApprovedEmail(event.Title))
		}
	}
	logger.Info().Uint("participation_id", participation.ID).Str("from", from).Str("to", to).Msg("[Participation] status changed")
	return nil
}

// MarkAttendance records whether an approved volunteer came to a started
// event. It never changes the participation status.
func (s *ParticipationService) MarkAttendance(participationID uint, attended bool, p Principal) (*models.EventParticipation, error) {
	participation, err := s.load(participationID)
	if err != nil {
		return nil, err
	}
	if !p.CanManageEvent(participation.Event) {
		return nil, response.NewForbidden("you cannot manage this event")
	}
	if err := s.setAttended(participation, attended); err != nil {
		return nil, err
	}
	return participation, nil
}

func (s *ParticipationService) setAttended(participation *models.EventParticipation, attended bool) error {
	if participation.Event.StartDate.After(time.Now()) {
		return response.NewBadRequest("event has not started yet")
	}
	if participation.Status != models.ParticipationApproved {
		return response.NewBadRequest("only approved participants can be marked as attended")
	}
	if err := s.db.Model(&models.EventParticipation{}).
		Where("id = ?", participation.ID).
		UpdateColumn("attended", attended).Error; err != nil {
		return err
	}
	participation.Attended = attended
	return nil
}

// ListMine returns the caller's sign-ups, newest first.
func (s *ParticipationService) ListMine(p Principal) ([]models.EventParticipation, error) {
	participations := make([]models.EventParticipation, 0)
	err := s.db.Preload("Event.NGO").
		Where("user_id = ?", p.UserID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&participations).Error
	return participations, err
}

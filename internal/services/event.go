package services

import (
	"errors"
	"time"

	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/logger"
	"github.com/volunteerhub/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultEventListLimit = 100
	urgentEventLimit      = 5
	urgentEventWindow     = 7 * 24 * time.Hour
)

type EventService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewEventService(db *gorm.DB, notifier *NotificationService) *EventService {
	return &EventService{db: db, notifier: notifier}
}

type CreateEventRequest struct {
	Title            string     `json:"title" binding:"required,min=5,max=255"`
	Description      string     `json:"description" binding:"required,min=50"`
	StartDate        time.Time  `json:"start_date" binding:"required"`
	EndDate          *time.Time `json:"end_date"`
	Address          string     `json:"address" binding:"required,min=5,max=500"`
	City             string     `json:"city" binding:"required,min=2,max=100"`
	Latitude         *float64   `json:"latitude" binding:"omitempty,latitude"`
	Longitude        *float64   `json:"longitude" binding:"omitempty,longitude"`
	VolunteersNeeded int        `json:"volunteers_needed" binding:"required,min=1,max=100000"`
	HelpType         []string   `json:"help_type" binding:"required,min=1,dive,notblank"`
}

// UpdateEventRequest is a partial update by the owning NGO. Status may only
// be set to CANCELLED.
type UpdateEventRequest struct {
	Title            *string    `json:"title" binding:"omitempty,min=5,max=255"`
	Description      *string    `json:"description" binding:"omitempty,min=50"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	Address          *string    `json:"address" binding:"omitempty,min=5,max=500"`
	City             *string    `json:"city" binding:"omitempty,min=2,max=100"`
	Latitude         *float64   `json:"latitude" binding:"omitempty,latitude"`
	Longitude        *float64   `json:"longitude" binding:"omitempty,longitude"`
	VolunteersNeeded *int       `json:"volunteers_needed" binding:"omitempty,min=1,max=100000"`
	HelpType         *[]string  `json:"help_type" binding:"omitempty,min=1,dive,notblank"`
	Status           *string    `json:"status"`
}

type ModerateEventRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Reason string `json:"reason" binding:"max=2000"`
}

type EventListRequest struct {
	City      string    `form:"city"`
	HelpType  string    `form:"help_type"`
	StartDate time.Time `form:"start_date" time_format:"2006-01-02"`
	Limit     int       `form:"limit" binding:"omitempty,min=1,max=500"`
}

// EventWithCounts is an owner's view of an event.
type EventWithCounts struct {
	*models.Event
	ParticipantsCount int64 `json:"participants_count"`
	PendingCount      int64 `json:"pending_count"`
}

type ParticipantView struct {
	ID        uint              `json:"id"`
	Status    string            `json:"status"`
	Attended  bool              `json:"attended"`
	CreatedAt time.Time         `json:"created_at"`
	User      models.PublicUser `json:"user"`
}

type EventManageView struct {
	Event        *models.Event     `json:"event"`
	Participants []ParticipantView `json:"participants"`
}

func endBeforeStart(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return response.NewValidation("request validation failed", []response.FieldError{
			{Field: "end_date", Message: "Must not be earlier than start_date"},
		})
	}
	return nil
}

// ownedApprovedNGO returns the caller's NGO if it may publish events.
func (s *EventService) ownedApprovedNGO(p Principal) (*models.NGO, error) {
	var ngo models.NGO
	if err := s.db.Where("user_id = ?", p.UserID).First(&ngo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewForbidden("only approved NGOs can create events")
		}
		return nil, err
	}
	if ngo.Status != models.NGOStatusApproved {
		return nil, response.NewForbidden("only approved NGOs can create events")
	}
	return &ngo, nil
}

// Create adds a DRAFT event that waits for moderation.
func (s *EventService) Create(p Principal, req *CreateEventRequest) (*models.Event, error) {
	ngo, err := s.ownedApprovedNGO(p)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := endBeforeStart(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	event := &models.Event{
		NGOID:            ngo.ID,
		Title:            req.Title,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Address:          req.Address,
		City:             req.City,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		VolunteersNeeded: req.VolunteersNeeded,
		HelpType:         models.StringList(req.HelpType),
		Status:           models.EventStatusDraft,
	}
	if err := s.db.Create(event).Error; err != nil {
		return nil, err
	}

	logger.Info().Uint("event_id", event.ID).Uint("ngo_id", ngo.ID).Msg("[Event] created")
	return event, nil
}

func (s *EventService) load(eventID uint) (*models.Event, error) {
	var event models.Event
	if err := s.db.Preload("NGO").First(&event, eventID).Error; err != nil {
		return nil, notFoundOr(err, "event not found")
	}
	return &event, nil
}

// Moderate publishes (approve) or cancels (reject) a DRAFT event and tells
// the owning NGO.
func (s *EventService) Moderate(eventID uint, req *ModerateEventRequest, p Principal) (*models.Event, error) {
	if !p.IsStaff() {
		return nil, response.NewForbidden("moderator or admin role required")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	event, err := s.load(eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventStatusDraft {
		return nil, response.NewBadRequest("invalid status transition")
	}

	to := models.EventStatusPublished
	notificationType := models.NotificationEventApproved
	title := "Событие опубликовано"
	message := "Событие «" + event.Title + "» прошло модерацию и опубликовано."
	if req.Action == "reject" {
		to = models.EventStatusCancelled
		notificationType = models.NotificationEventRejected
		title = "Событие отклонено"
		message = "Событие «" + event.Title + "» отклонено модератором."
		if req.Reason != "" {
			message += " Причина: " + req.Reason
		}
	}

	err = s.notifier.Transaction(func(tx *gorm.DB, n *TxNotifier) error {
		result := tx.Model(&models.Event{}).
			Where("id = ? AND status = ?", event.ID, models.EventStatusDraft).
			Updates(map[string]interface{}{"status": to, "moderation_note": req.Reason})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewBadRequest("invalid status transition")
		}
		if event.NGO == nil {
			return nil
		}
		return n.Notify(event.NGO.UserID, notificationType, title, message, "/ngo/events")
	})
	if err != nil {
		return nil, err
	}

	event.Status = to
	event.ModerationNote = req.Reason
	logger.Info().Uint("event_id", event.ID).Str("status", to).Uint("by", p.UserID).Msg("[Event] moderated")
	return event, nil
}

// Update edits an event owned by the caller.
func (s *EventService) Update(eventID uint, req *UpdateEventRequest, p Principal) (*models.Event, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Status != nil && *req.Status != models.EventStatusCancelled {
		return nil, response.NewValidation("request validation failed", []response.FieldError{
			{Field: "status", Message: "Only CANCELLED can be set"},
		})
	}

	event, err := s.load(eventID)
	if err != nil {
		return nil, err
	}
	if !p.OwnsEvent(event) {
		return nil, response.NewForbidden("you cannot edit this event")
	}

	setString(&event.Title, req.Title)
	setString(&event.Description, req.Description)
	setString(&event.Address, req.Address)
	setString(&event.City, req.City)
	if req.StartDate != nil {
		event.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		event.EndDate = req.EndDate
	}
	if req.Latitude != nil {
		event.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		event.Longitude = req.Longitude
	}
	if req.HelpType != nil {
		event.HelpType = models.StringList(*req.HelpType)
	}
	if err := endBeforeStart(event.StartDate, event.EndDate); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.VolunteersNeeded != nil {
			// capacity may shrink only down to the seats already given away
			result := tx.Model(&models.Event{}).
				Where("id = ? AND approved_count <= ?", event.ID, *req.VolunteersNeeded).
				UpdateColumn("volunteers_needed", *req.VolunteersNeeded)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return response.NewValidation("request validation failed", []response.FieldError{
					{Field: "volunteers_needed", Message: "Must not be lower than the number of approved volunteers"},
				})
			}
			event.VolunteersNeeded = *req.VolunteersNeeded
		}
		if err := tx.Omit(clause.Associations, "approved_count", "volunteers_needed", "status", "moderation_note").
			Save(event).Error; err != nil {
			return err
		}
		if req.Status == nil || event.Status == models.EventStatusCancelled {
			return nil
		}
		// withdraw only from the status the owner saw
		result := tx.Model(&models.Event{}).
			Where("id = ? AND status = ?", event.ID, event.Status).
			UpdateColumn("status", models.EventStatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewBadRequest("invalid status transition")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(event.ID)
}

// Delete removes an event owned by the caller with its participations.
func (s *EventService) Delete(eventID uint, p Principal) error {
	event, err := s.load(eventID)
	if err != nil {
		return err
	}
	if !p.OwnsEvent(event) {
		return response.NewForbidden("you cannot delete this event")
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return models.DeleteEventCascade(tx, event.ID)
	}); err != nil {
		return err
	}
	logger.Info().Uint("event_id", eventID).Uint("by", p.UserID).Msg("[Event] deleted")
	return nil
}

// ListPublic lists PUBLISHED events, soonest first.
func (s *EventService) ListPublic(req *EventListRequest) ([]models.Event, error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultEventListLimit
	}

	query := s.db.Preload("NGO").Where("status = ?", models.EventStatusPublished)
	if req.City != "" {
		query = query.Where("city = ?", req.City)
	}
	if req.HelpType != "" {
		query = query.Where("help_type LIKE ? ESCAPE '!'", jsonElementPattern(req.HelpType))
	}
	if !req.StartDate.IsZero() {
		query = query.Where("start_date >= ?", req.StartDate)
	}

	events := make([]models.Event, 0)
	err := query.Order("start_date ASC").Order("id ASC").Limit(limit).Find(&events).Error
	return events, err
}

// Urgent returns up to five published events that start within a week and
// still need volunteers.
func (s *EventService) Urgent(city string) ([]models.Event, error) {
	now := time.Now()
	query := s.db.Preload("NGO").
		Where("status = ?", models.EventStatusPublished).
		Where("start_date >= ? AND start_date <= ?", now, now.Add(urgentEventWindow)).
		Where("approved_count < volunteers_needed")
	if city != "" {
		query = query.Where("city = ?", city)
	}

	events := make([]models.Event, 0)
	err := query.Order("start_date ASC").Limit(urgentEventLimit).Find(&events).Error
	return events, err
}

// Mine lists every event of the caller's NGO, newest start first.
func (s *EventService) Mine(p Principal) ([]EventWithCounts, error) {
	var ngo models.NGO
	if err := s.db.Select("id").Where("user_id = ?", p.UserID).First(&ngo).Error; err != nil {
		return nil, notFoundOr(err, "NGO not found")
	}

	var events []models.Event
	if err := s.db.Where("ngo_id = ?", ngo.ID).Order("start_date DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []EventWithCounts{}, nil
	}

	ids := make([]uint, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	var rows []struct {
		EventID uint   `gorm:"column:event_id"`
		Status  string `gorm:"column:status"`
		Total   int64  `gorm:"column:total"`
	}
	if err := s.db.Model(&models.EventParticipation{}).
		Select("event_id, status, COUNT(*) AS total").
		Where("event_id IN ?", ids).
		Group("event_id, status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	byEvent := make(map[uint]*EventWithCounts, len(events))
	items := make([]EventWithCounts, len(events))
	for i := range events {
		items[i] = EventWithCounts{Event: &events[i]}
		byEvent[events[i].ID] = &items[i]
	}
	for _, r := range rows {
		item := byEvent[r.EventID]
		item.ParticipantsCount += r.Total
		if r.Status == models.ParticipationPending {
			item.PendingCount += r.Total
		}
	}
	return items, nil
}

// Pending is the moderation queue of DRAFT events.
func (s *EventService) Pending(p Principal) ([]models.Event, error) {
	if !p.IsStaff() {
		return nil, response.NewForbidden("moderator or admin role required")
	}
	events := make([]models.Event, 0)
	err := s.db.Preload("NGO").
		Where("status = ?", models.EventStatusDraft).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}

// Get returns a public event, or a draft/cancelled one to its owner and staff.
func (s *EventService) Get(eventID uint, p *Principal) (*models.Event, error) {
	event, err := s.load(eventID)
	if err != nil {
		return nil, err
	}
	if !p.CanSeeEvent(event) {
		return nil, response.NewNotFound("event not found")
	}
	return event, nil
}

// Manage is the owner's view with every participation and the volunteers'
// contact fields.
func (s *EventService) Manage(eventID uint, p Principal) (*EventManageView, error) {
	event, err := s.load(eventID)
	if err != nil {
		return nil, err
	}
	if !p.CanManageEvent(event) {
		return nil, response.NewForbidden("you cannot manage this event")
	}

	var participations []models.EventParticipation
	if err := s.db.Preload("User").
		Where("event_id = ?", event.ID).
		Order("created_at ASC").
		Find(&participations).Error; err != nil {
		return nil, err
	}

	view := &EventManageView{Event: event, Participants: make([]ParticipantView, 0, len(participations))}
	for _, part := range participations {
		pv := ParticipantView{ID: part.ID, Status: part.Status, Attended: part.Attended, CreatedAt: part.CreatedAt}
		if part.User != nil {
			pv.User = part.User.Public()
		}
		view.Participants = append(view.Participants, pv)
	}
	return view, nil
}

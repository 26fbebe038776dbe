package services

import (
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/logger"
	"github.com/volunteerhub/backend/pkg/response"
	"gorm.io/gorm"
)

// NotificationService writes in-app notifications and hands emails to the
// task queue. Notifications are part of the caller's transaction; live pushes
// and emails are best effort and only go out after the domain change committed.
type NotificationService struct {
	db    *gorm.DB
	queue TaskQueue
	hub   *NotificationHub
}

func NewNotificationService(db *gorm.DB, queue TaskQueue) *NotificationService {
	return &NotificationService{db: db, queue: queue}
}

// Notify persists a notification with db and pushes it to connected clients
// right away. Writes that belong to a larger transaction go through
// Transaction instead.
func (s *NotificationService) Notify(db *gorm.DB, userID uint, notificationType, title, message, link string) error {
	if err := createNotification(db, userID, notificationType, title, message, link); err != nil {
		return err
	}
	s.publish(userID, NotificationEvent{Type: notificationType, Title: title})
	return nil
}

// Transaction runs fn in a transaction on s.db. Notifications written through
// the TxNotifier commit or roll back with it, and reach connected clients only
// after the commit succeeded.
func (s *NotificationService) Transaction(fn func(tx *gorm.DB, n *TxNotifier) error) error {
	n := &TxNotifier{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		n.tx = tx
		n.pending = n.pending[:0]
		return fn(tx, n)
	})
	if err != nil {
		return err
	}
	for _, push := range n.pending {
		s.publish(push.userID, push.event)
	}
	return nil
}

func (s *NotificationService) publish(userID uint, event NotificationEvent) {
	if s.hub != nil {
		s.hub.Publish(userID, event)
	}
}

func createNotification(db *gorm.DB, userID uint, notificationType, title, message, link string) error {
	return db.Create(&models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
		Link:    link,
	}).Error
}

type pendingPush struct {
	userID uint
	event  NotificationEvent
}

// TxNotifier writes notifications inside a NotificationService.Transaction.
type TxNotifier struct {
	tx      *gorm.DB
	pending []pendingPush
}

func (n *TxNotifier) Notify(userID uint, notificationType, title, message, link string) error {
	if err := createNotification(n.tx, userID, notificationType, title, message, link); err != nil {
		return err
	}
	n.pending = append(n.pending, pendingPush{userID: userID, event: NotificationEvent{Type: notificationType, Title: title}})
	return nil
}

// SetHub enables live pushes to connected clients.
func (s *NotificationService) SetHub(hub *NotificationHub) {
	s.hub = hub
}

// SendEmail queues an email. Failures are logged and swallowed: a lost email
// never fails the operation that triggered it.
func (s *NotificationService) SendEmail(to, subject, html string) {
	if to == "" || s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(&EmailTask{To: to, Subject: subject, HTML: html}); err != nil {
		logger.Warn().Err(err).Str("to", to).Str("subject", subject).Msg("[Notification] failed to queue email")
	}
}

type NotificationListRequest struct {
	Unread bool `form:"unread"`
	Limit  int  `form:"limit" binding:"omitempty,min=1,max=100"`
}

type NotificationListResponse struct {
	Items       []models.Notification `json:"items"`
	UnreadCount int64                 `json:"unread_count"`
}

func (s *NotificationService) List(userID uint, req *NotificationListRequest) (*NotificationListResponse, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}

	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if req.Unread {
		query = query.Where("is_read = ?", false)
	}

	items := make([]models.Notification, 0)
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}

	var unread int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return nil, err
	}

	return &NotificationListResponse{Items: items, UnreadCount: unread}, nil
}

type MarkNotificationRequest struct {
	ID   uint  `json:"id" binding:"required"`
	Read *bool `json:"read"`
}

// MarkRead sets the read flag of one of the recipient's notifications.
// Other users' notifications are reported as not found.
func (s *NotificationService) MarkRead(userID uint, req *MarkNotificationRequest) (*models.Notification, error) {
	read := true
	if req.Read != nil {
		read = *req.Read
	}

	var n models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", req.ID, userID).First(&n).Error; err != nil {
		return nil, notFoundOr(err, "notification not found")
	}
	if err := s.db.Model(&n).Update("is_read", read).Error; err != nil {
		return nil, err
	}
	n.Read = read
	return &n, nil
}

// MarkAllRead returns the number of notifications that changed.
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (s *NotificationService) Delete(userID, id uint) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("notification not found")
	}
	return nil
}

package models

import "time"

// EventParticipation links a volunteer to an event. A user has at most one
// row per event, enforced by the composite unique index.
type EventParticipation struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"uniqueIndex:idx_participation_user_event;not null" json:"user_id"`
	EventID        uint       `gorm:"uniqueIndex:idx_participation_user_event;not null;index" json:"event_id"`
	Status         string     `gorm:"size:20;not null;index" json:"status"`
	Attended       bool       `gorm:"not null;default:false" json:"attended"`
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`
	Event          *Event     `gorm:"foreignKey:EventID" json:"event,omitempty"`
	User           *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (EventParticipation) TableName() string { return "event_participations" }

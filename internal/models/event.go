package models

import (
	"time"

	"github.com/volunteerhub/backend/internal/utils"
	"gorm.io/gorm"
)

// Event is published by an approved NGO after moderation.
//
// ApprovedCount mirrors the number of APPROVED participations. It is only
// ever changed through a conditional UPDATE so that it can never pass
// VolunteersNeeded.
type Event struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	NGOID            uint                 `gorm:"column:ngo_id;not null;index" json:"ngo_id"`
	Title            string               `gorm:"size:255;not null" json:"title"`
	Description      string               `gorm:"type:text" json:"description"`
	StartDate        time.Time            `gorm:"not null;index" json:"start_date"`
	EndDate          *time.Time           `json:"end_date"`
	Address          string               `gorm:"size:500" json:"address"`
	City             string               `gorm:"size:100;index" json:"city"`
	Latitude         *float64             `json:"latitude"`
	Longitude        *float64             `json:"longitude"`
	VolunteersNeeded int                  `gorm:"not null" json:"volunteers_needed"`
	ApprovedCount    int                  `gorm:"not null;default:0" json:"volunteers_count"`
	HelpType         StringList           `json:"help_type"`
	Status           string               `gorm:"size:20;not null;index" json:"status"`
	ModerationNote   string               `gorm:"type:text" json:"moderation_note,omitempty"`
	SearchText       string               `gorm:"type:text" json:"-"`
	NGO              *NGO                 `gorm:"foreignKey:NGOID" json:"ngo,omitempty"`
	Participations   []EventParticipation `gorm:"foreignKey:EventID" json:"participations,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func (Event) TableName() string { return "events" }

func (e *Event) BeforeSave(tx *gorm.DB) error {
	e.SearchText = utils.FoldJoin(e.Title, e.Description, e.City, e.Address, e.HelpType.Join(" "))
	return nil
}

// SpotsLeft is the remaining capacity, never negative.
func (e *Event) SpotsLeft() int {
	if left := e.VolunteersNeeded - e.ApprovedCount; left > 0 {
		return left
	}
	return 0
}

// IsPublic reports whether anonymous visitors may see the event.
func (e *Event) IsPublic() bool {
	return e.Status == EventStatusPublished || e.Status == EventStatusCompleted
}

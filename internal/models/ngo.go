package models

import (
	"time"

	"github.com/volunteerhub/backend/internal/utils"
	"gorm.io/gorm"
)

// NGO is an organization profile owned by exactly one user.
type NGO struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	LegalName        string     `gorm:"size:255;not null" json:"legal_name"`
	BrandName        string     `gorm:"size:255;not null" json:"brand_name"`
	INN              string     `gorm:"column:inn;uniqueIndex;size:12;not null" json:"inn"`
	Description      string     `gorm:"type:text" json:"description"`
	Mission          string     `gorm:"type:text" json:"mission"`
	City             string     `gorm:"size:100;index" json:"city"`
	Address          string     `gorm:"size:500" json:"address"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	Phone            string     `gorm:"size:50" json:"phone"`
	Email            string     `gorm:"size:255" json:"email"`
	Website          string     `gorm:"size:500" json:"website"`
	VKLink           string     `gorm:"column:vk_link;size:500" json:"vk_link"`
	TelegramLink     string     `gorm:"size:500" json:"telegram_link"`
	Logo             string     `gorm:"size:500" json:"logo"`
	CoverImage       string     `gorm:"size:500" json:"cover_image"`
	Categories       StringList `json:"categories"`
	OrganizationType string     `gorm:"size:100" json:"organization_type"`
	Status           string     `gorm:"size:20;not null;index" json:"status"`
	RejectionReason  string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	SearchText       string     `gorm:"type:text" json:"-"`
	User             *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Events           []Event    `gorm:"foreignKey:NGOID" json:"events,omitempty"`
	Projects         []Project  `gorm:"foreignKey:NGOID" json:"projects,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (NGO) TableName() string { return "ngos" }

// BeforeSave keeps the folded search column in sync with the indexed fields.
func (n *NGO) BeforeSave(tx *gorm.DB) error {
	n.SearchText = utils.FoldJoin(n.BrandName, n.LegalName, n.Description, n.City, n.Categories.Join(" "))
	return nil
}

// HasLocation reports whether the NGO can be placed on the map.
func (n *NGO) HasLocation() bool {
	return n.Latitude != nil && n.Longitude != nil
}

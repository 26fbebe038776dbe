package models

import "time"

// Project is an NGO portfolio entry.
type Project struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	NGOID       uint       `gorm:"column:ngo_id;not null;index" json:"ngo_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Images      StringList `json:"images"`
	NGO         *NGO       `gorm:"foreignKey:NGOID" json:"ngo,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

package models

import "time"

// User is a portal account. Role never changes through the public API.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password     string     `gorm:"size:255" json:"-"` // bcrypt hash, empty for OAuth-only users
	Name         string     `gorm:"size:100" json:"name"`
	Image        string     `gorm:"size:500" json:"image"`
	Role         string     `gorm:"size:20;not null;index" json:"role"`
	City         string     `gorm:"size:100" json:"city"`
	AuthProvider string     `gorm:"size:20;default:local" json:"auth_provider"` // local, vk
	ProviderID   string     `gorm:"size:100;index" json:"-"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	NGO          *NGO       `gorm:"foreignKey:UserID" json:"ngo,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// PublicUser is the subset of a user shown to NGOs managing their events.
type PublicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
	City  string `json:"city"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image, City: u.City}
}

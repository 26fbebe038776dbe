package models

import "time"

// RefreshToken is a rotating session token. Only the SHA-256 of the token is
// stored; rotation revokes the old row and points it at its successor.
type RefreshToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	TokenHash  string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	RevokedAt  *time.Time `gorm:"index" json:"revoked_at,omitempty"`
	ReplacedBy *uint      `json:"replaced_by,omitempty"`
	IP         string     `gorm:"size:64" json:"ip,omitempty"`
	UserAgent  string     `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// Active reports whether the token can still be exchanged at t.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

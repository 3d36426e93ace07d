package models

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`

	// Diagnostic only, never used for authorization
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Session) TableName() string {
	return "user_sessions"
}

// Expired reports whether the session is past its expiry. A session is
// valid iff the row exists and Expired() is false.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type VerificationType string

const (
	VerificationTypeEmail VerificationType = "email_verification"
	VerificationTypePhone VerificationType = "phone_verification"
)

type VerificationCode struct {
	Base
	Target    string           `gorm:"index;not null" json:"target"` // email address or phone number
	Code      string           `gorm:"not null" json:"-"`
	Type      VerificationType `gorm:"not null" json:"type"`
	UserID    *uuid.UUID       `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ExpiresAt time.Time        `gorm:"not null" json:"expires_at"`
	Used      bool             `gorm:"default:false" json:"used"`
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}

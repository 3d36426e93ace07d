package models

import (
	"time"

	"github.com/google/uuid"
)

type StreamingPlatform struct {
	Base
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	BaseURL  string `json:"base_url,omitempty"`
	LogoURL  string `json:"logo_url,omitempty"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

func (StreamingPlatform) TableName() string {
	return "streaming_platforms"
}

type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusLive      SubmissionStatus = "live"
	SubmissionStatusRejected  SubmissionStatus = "rejected"
)

// PlatformSubmission is the fan-out of one approved track to one
// streaming platform. Each row has an independent lifecycle.
type PlatformSubmission struct {
	Base
	TrackID      uuid.UUID        `gorm:"type:uuid;index;not null" json:"track_id"`
	PlatformID   uuid.UUID        `gorm:"type:uuid;index;not null" json:"platform_id"`
	Status       SubmissionStatus `gorm:"not null;default:'submitted'" json:"status"`
	StreamingURL string           `json:"streaming_url,omitempty"`
	SubmittedAt  time.Time        `json:"submitted_at"`
	ReviewedAt   *time.Time       `json:"reviewed_at,omitempty"`

	// Relationships
	Track    *Track             `gorm:"foreignKey:TrackID" json:"-"`
	Platform *StreamingPlatform `gorm:"foreignKey:PlatformID" json:"platform,omitempty"`
}

func (PlatformSubmission) TableName() string {
	return "platform_submissions"
}

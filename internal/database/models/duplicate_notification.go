package models

import "github.com/google/uuid"

type DuplicateStatus string

const (
	DuplicateStatusPending  DuplicateStatus = "pending"
	DuplicateStatusReviewed DuplicateStatus = "reviewed"
)

// DuplicateNotification records a possible external match for a submitted
// track. Advisory only: it never mutates the track and never blocks a
// submission.
type DuplicateNotification struct {
	Base
	TrackID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"track_id"`
	ExternalPlatform string          `gorm:"not null" json:"external_platform"`
	ExternalID       string          `json:"external_id,omitempty"`
	SimilarityScore  float64         `json:"similarity_score"`
	Details          string          `gorm:"type:jsonb;default:'{}'" json:"details,omitempty"`
	Status           DuplicateStatus `gorm:"not null;default:'pending'" json:"status"`

	// Relationships
	Track *Track `gorm:"foreignKey:TrackID" json:"-"`
}

func (DuplicateNotification) TableName() string {
	return "duplicate_notifications"
}

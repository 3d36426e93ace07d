package models

import (
	"time"

	"github.com/google/uuid"
)

// Approval is an append-only audit record of a status decision. The
// decision itself lives on Track.Status; this row records who made it.
type Approval struct {
	Base
	TrackID    uuid.UUID   `gorm:"type:uuid;index;not null" json:"track_id"`
	AnalystID  string      `gorm:"not null" json:"analyst_id"`
	Status     TrackStatus `gorm:"not null" json:"status"`
	Comments   string      `gorm:"type:text" json:"comments,omitempty"`
	ReviewedAt time.Time   `gorm:"not null" json:"reviewed_at"`

	// Relationships
	Track *Track `gorm:"foreignKey:TrackID" json:"-"`
}

func (Approval) TableName() string {
	return "approvals"
}

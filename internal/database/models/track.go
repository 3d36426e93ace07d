package models

import (
	"time"

	"github.com/google/uuid"
)

type TrackStatus string

const (
	TrackStatusPending  TrackStatus = "pending"
	TrackStatusApproved TrackStatus = "approved"
	TrackStatusRejected TrackStatus = "rejected"
)

type Track struct {
	Base
	ArtistID uuid.UUID `gorm:"type:uuid;index;not null" json:"artist_id"`

	// Core metadata
	Title       string `gorm:"not null" json:"title"`
	Genre       string `gorm:"not null" json:"genre"`
	Year        int    `gorm:"not null" json:"year"`
	Album       string `json:"album,omitempty"`
	TrackNumber int    `json:"track_number,omitempty"`
	Language    string `json:"language,omitempty"`
	Lyrics      string `gorm:"type:text" json:"lyrics,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	RecordLabel string `json:"record_label,omitempty"`

	// Technical
	Duration   int    `json:"duration,omitempty"` // seconds
	BitRate    int    `json:"bit_rate,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Channels   string `json:"channels,omitempty"`
	FileFormat string `json:"file_format,omitempty"`
	FileURL    string `json:"file_url,omitempty"`
	CoverArtURL string `json:"cover_art_url,omitempty"`

	// Rights
	Composer        string `json:"composer,omitempty"`
	Lyricist        string `json:"lyricist,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	CopyrightHolder string `json:"copyright_holder,omitempty"`
	PROSociety      string `json:"pro_society,omitempty"`
	LicenseType     string `json:"license_type,omitempty"`

	// System-generated identifiers
	ISRCCode string `gorm:"uniqueIndex" json:"isrc_code,omitempty"`
	ISWCCode string `gorm:"uniqueIndex" json:"iswc_code,omitempty"`

	Status TrackStatus `gorm:"not null;index;default:'pending'" json:"status"`

	// Relationships
	Artist                 *Artist                 `gorm:"foreignKey:ArtistID" json:"artist,omitempty"`
	Approvals              []Approval              `gorm:"foreignKey:TrackID" json:"-"`
	DuplicateNotifications []DuplicateNotification `gorm:"foreignKey:TrackID" json:"-"`
	PlatformSubmissions    []PlatformSubmission    `gorm:"foreignKey:TrackID" json:"-"`
}

func (Track) TableName() string {
	return "tracks"
}

package models

import "github.com/google/uuid"

type AccountType string

const (
	AccountTypeArtist AccountType = "artist"
	AccountTypeLabel  AccountType = "label"
)

// MaxArtists returns the artist-count ceiling for the account type.
func (t AccountType) MaxArtists() int {
	if t == AccountTypeLabel {
		return 5
	}
	return 2
}

type Artist struct {
	Base
	UserID      uuid.UUID   `gorm:"type:uuid;index;not null" json:"user_id"`
	Name        string      `gorm:"not null" json:"name"`
	Genre       string      `json:"genre,omitempty"`
	Bio         string      `gorm:"type:text" json:"bio,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
	AccountType AccountType `gorm:"not null;default:'artist'" json:"account_type"`

	// Relationships
	User   *User   `gorm:"foreignKey:UserID" json:"-"`
	Tracks []Track `gorm:"foreignKey:ArtistID" json:"-"`
}

func (Artist) TableName() string {
	return "artists"
}

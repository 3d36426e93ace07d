package models

import "time"

type User struct {
	Base
	Email         *string    `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone         *string    `gorm:"uniqueIndex" json:"phone,omitempty"`
	PasswordHash  string     `gorm:"not null" json:"-"`
	CountryCode   string     `gorm:"default:'PT'" json:"country_code"`
	EmailVerified bool       `gorm:"default:false" json:"email_verified"`
	PhoneVerified bool       `gorm:"default:false" json:"phone_verified"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	LastLogin     *time.Time `json:"last_login,omitempty"`

	// Relationships
	Artists  []Artist  `gorm:"foreignKey:UserID" json:"artists,omitempty"`
	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Identifier returns whichever of email/phone is set. A user always has
// at least one.
func (u *User) Identifier() string {
	if u.Email != nil && *u.Email != "" {
		return *u.Email
	}
	if u.Phone != nil {
		return *u.Phone
	}
	return ""
}

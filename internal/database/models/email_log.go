package models

type EmailLog struct {
	Base
	UserEmail string `gorm:"index;not null" json:"user_email"`
	Subject   string `gorm:"not null" json:"subject"`
	Status    string `gorm:"default:'sent'" json:"status"`
}

func (EmailLog) TableName() string {
	return "email_logs"
}

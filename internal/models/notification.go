package models

import "time"

const (
	NotificationSent   = "sent"
	NotificationFailed = "failed"
	NotificationDead   = "dead"
)

type Notification struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID        *uint `gorm:"index" json:"user_id"`
	AppointmentID *uint `gorm:"index" json:"appointment_id"`

	Type      string     `gorm:"size:50;not null" json:"type"`
	Channel   string     `gorm:"size:20;not null" json:"channel"`
	Recipient string     `gorm:"size:100" json:"recipient"`
	Message   string     `gorm:"size:255" json:"message"`
	Status    string     `gorm:"size:20;index" json:"status"`
	Attempts  int        `json:"attempts"`
	LastError string     `gorm:"type:text" json:"last_error"`
	SentAt    *time.Time `json:"sent_at"`

	CreatedAt time.Time `json:"created_at"`
}

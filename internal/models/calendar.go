package models

import "time"

const ProviderGoogle = "google"

// CalendarToken holds the OAuth credentials of one user for one provider.
type CalendarToken struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID   uint   `gorm:"uniqueIndex:idx_calendar_token_user_provider;not null" json:"user_id"`
	Provider string `gorm:"size:20;uniqueIndex:idx_calendar_token_user_provider;not null" json:"provider"`

	AccessToken  string    `gorm:"type:text;not null" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	ExpiresAt    time.Time `gorm:"index" json:"expires_at"`
	Email        string    `gorm:"size:100" json:"email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CalendarEvent links an appointment to the event created for it in an external calendar.
type CalendarEvent struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint   `gorm:"uniqueIndex:idx_calendar_event_appointment_provider;not null" json:"appointment_id"`
	UserID        uint   `gorm:"index;not null" json:"user_id"`
	Provider      string `gorm:"size:20;uniqueIndex:idx_calendar_event_appointment_provider;not null" json:"provider"`

	ExternalEventID string `gorm:"size:255;not null" json:"external_event_id"`
	CalendarID      string `gorm:"size:255" json:"calendar_id"`
	Synced          bool   `json:"synced"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

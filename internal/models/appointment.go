package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	ServiceID uint    `gorm:"not null" json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service"`

	SlotID *uint             `gorm:"index" json:"slot_id"`
	Slot   *AvailabilitySlot `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"slot,omitempty"`

	Status      string    `gorm:"size:20;default:'CONFIRMED';index" json:"status"`
	Location    string    `gorm:"size:255" json:"location"`
	ScheduledAt time.Time `gorm:"type:date;index" json:"scheduled_at"`
	Description string    `gorm:"size:1000" json:"description"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

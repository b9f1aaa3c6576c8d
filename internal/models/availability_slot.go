package models

import "time"

type AvailabilitySlot struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AdminID uint `gorm:"index:idx_slot_admin_window,priority:1;not null" json:"admin_id"`
	Admin   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	ServiceID uint    `gorm:"index;not null" json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"service"`

	StartTime time.Time `gorm:"index:idx_slot_admin_window,priority:2;not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Booked    bool      `gorm:"default:false;index" json:"booked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import (
	"strings"
	"time"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Surname      string `gorm:"size:100" json:"surname"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;default:'ROLE_USER'" json:"role"`

	Enabled                   bool       `gorm:"default:false" json:"enabled"`
	VerificationCode          string     `gorm:"size:10" json:"-"`
	VerificationCodeExpiresAt *time.Time `json:"-"`
	PasswordResetCode         string     `gorm:"size:10" json:"-"`
	PasswordResetExpiresAt    *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

func (u User) IsAdmin() bool {
	return strings.EqualFold(u.Role, RoleAdmin)
}

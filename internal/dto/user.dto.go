package dto

import "github.com/BruksfildServices01/makeup-scheduler/internal/models"

type UserResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Role    string `json:"role"`
	Enabled bool   `json:"enabled"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:      u.ID,
		Name:    u.Name,
		Surname: u.Surname,
		Email:   u.Email,
		Phone:   u.Phone,
		Role:    u.Role,
		Enabled: u.Enabled,
	}
}

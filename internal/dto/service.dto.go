package dto

import "github.com/BruksfildServices01/makeup-scheduler/internal/models"

type ServiceResponse struct {
	ServiceID   uint    `json:"serviceId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	DurationMin int     `json:"durationMin"`
	Price       float64 `json:"price"`
}

func NewServiceResponse(s *models.Service) ServiceResponse {
	return ServiceResponse{
		ServiceID:   s.ID,
		Name:        s.Name,
		Description: s.Description,
		DurationMin: s.DurationMin,
		Price:       s.Price,
	}
}

func NewServiceList(items []models.Service) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(items))
	for i := range items {
		out = append(out, NewServiceResponse(&items[i]))
	}
	return out
}

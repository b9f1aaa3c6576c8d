package dto

import (
	"time"

	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/timezone"
)

type SlotResponse struct {
	SlotID      uint      `json:"slotId"`
	ServiceID   uint      `json:"serviceId"`
	ServiceName string    `json:"serviceName"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	IsBooked    bool      `json:"isBooked"`
}

func NewSlotResponse(s *models.AvailabilitySlot) SlotResponse {
	loc := timezone.AppLocation()
	return SlotResponse{
		SlotID:      s.ID,
		ServiceID:   s.ServiceID,
		ServiceName: s.Service.Name,
		StartTime:   s.StartTime.In(loc),
		EndTime:     s.EndTime.In(loc),
		IsBooked:    s.Booked,
	}
}

func NewSlotList(items []models.AvailabilitySlot) []SlotResponse {
	out := make([]SlotResponse, 0, len(items))
	for i := range items {
		out = append(out, NewSlotResponse(&items[i]))
	}
	return out
}

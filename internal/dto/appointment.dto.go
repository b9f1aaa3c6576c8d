package dto

import (
	"time"

	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/timezone"
)

type AppointmentResponse struct {
	AppointmentID      uint       `json:"appointmentId"`
	UserID             uint       `json:"userId"`
	UserName           string     `json:"userName"`
	ServiceID          uint       `json:"serviceId"`
	ServiceName        string     `json:"serviceName"`
	ServiceDescription string     `json:"serviceDescription"`
	DurationMin        int        `json:"durationMin"`
	Price              float64    `json:"price"`
	Status             string     `json:"status"`
	Location           string     `json:"location"`
	ScheduledAt        string     `json:"scheduledAt"`
	SlotID             *uint      `json:"slotId,omitempty"`
	StartTime          *time.Time `json:"startTime,omitempty"`
	EndTime            *time.Time `json:"endTime,omitempty"`
	Description        string     `json:"description"`
}

func NewAppointmentResponse(ap *models.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		AppointmentID:      ap.ID,
		UserID:             ap.UserID,
		UserName:           ap.User.FullName(),
		ServiceID:          ap.ServiceID,
		ServiceName:        ap.Service.Name,
		ServiceDescription: ap.Service.Description,
		DurationMin:        ap.Service.DurationMin,
		Price:              ap.Service.Price,
		Status:             ap.Status,
		Location:           ap.Location,
		ScheduledAt:        ap.ScheduledAt.Format("2006-01-02"),
		SlotID:             ap.SlotID,
		Description:        ap.Description,
	}
	if ap.Slot != nil {
		loc := timezone.AppLocation()
		start := ap.Slot.StartTime.In(loc)
		end := ap.Slot.EndTime.In(loc)
		resp.StartTime = &start
		resp.EndTime = &end
	}
	return resp
}

func NewAppointmentList(items []models.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(items))
	for i := range items {
		out = append(out, NewAppointmentResponse(&items[i]))
	}
	return out
}

package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

type Repository interface {
	// User
	GetUser(ctx context.Context, id uint) (*models.User, error)

	// Appointment
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error
	ListAppointmentsByUser(ctx context.Context, userID uint) ([]models.Appointment, error)
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
	ListAppointmentsOn(ctx context.Context, day time.Time, status Status) ([]models.Appointment, error)
}

package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

type Queries struct {
	repo domain.Repository
}

func NewQueries(repo domain.Repository) *Queries {
	return &Queries{repo: repo}
}

// Get returns an appointment visible to the requester: its owner or an admin.
func (q *Queries) Get(ctx context.Context, appointmentID, requesterID uint) (*models.Appointment, error) {
	ap, err := q.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if ap.UserID == requesterID {
		return ap, nil
	}

	requester, err := q.repo.GetUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() {
		return nil, errNotOwner
	}
	return ap, nil
}

func (q *Queries) ListMine(ctx context.Context, userID uint) ([]models.Appointment, error) {
	return q.repo.ListAppointmentsByUser(ctx, userID)
}

func (q *Queries) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return q.repo.ListAppointments(ctx)
}

package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
	"github.com/BruksfildServices01/makeup-scheduler/internal/timezone"
)

type CancelAppointment struct {
	repo   domain.Repository
	slots  SlotStore
	tx     Transactor
	events EventPublisher
}

func NewCancelAppointment(
	repo domain.Repository,
	slots SlotStore,
	tx Transactor,
	events EventPublisher,
) *CancelAppointment {
	return &CancelAppointment{
		repo:   repo,
		slots:  slots,
		tx:     tx,
		events: events,
	}
}

// Execute cancels an appointment on behalf of its owner or an admin and
// frees the slot it held.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	requesterID uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	requester, err := uc.repo.GetUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if ap.UserID != requester.ID && !requester.IsAdmin() {
		return nil, errNotOwner
	}

	now := timezone.Now()
	if err := domain.Cancel(ap, now); err != nil {
		return nil, err
	}

	released := false
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
			return err
		}
		if ap.SlotID == nil {
			return nil
		}
		freed, err := uc.slots.ReleaseUnheld(ctx, *ap.SlotID)
		released = freed
		return err
	})
	if err != nil {
		return nil, err
	}

	if ap.Slot != nil {
		ap.Slot.Booked = !released
	}

	uc.events.Publish(notify.Event{
		Kind:          notify.KindCancelled,
		AppointmentID: ap.ID,
		OwnerID:       ap.UserID,
		ActorID:       requester.ID,
		Status:        ap.Status,
		OccurredAt:    now,
	})

	return ap, nil
}

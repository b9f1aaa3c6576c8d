package appointment

import (
	"context"

	"github.com/rs/zerolog/log"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
	"github.com/BruksfildServices01/makeup-scheduler/internal/timezone"
)

type UpdateAppointmentStatus struct {
	repo   domain.Repository
	slots  SlotStore
	tx     Transactor
	events EventPublisher
}

func NewUpdateAppointmentStatus(
	repo domain.Repository,
	slots SlotStore,
	tx Transactor,
	events EventPublisher,
) *UpdateAppointmentStatus {
	return &UpdateAppointmentStatus{
		repo:   repo,
		slots:  slots,
		tx:     tx,
		events: events,
	}
}

// Execute is the admin status workflow. Moving to CANCELLED frees the slot;
// moving out of CANCELLED takes the slot back and fails if it was rebooked.
func (uc *UpdateAppointmentStatus) Execute(
	ctx context.Context,
	appointmentID uint,
	statusName string,
	adminID uint,
) (*models.Appointment, error) {

	target, err := domain.ParseStatus(statusName)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	heldBefore := domain.HoldsSlot(ap)
	now := timezone.Now()
	domain.Transition(ap, target, now)
	holdsAfter := domain.HoldsSlot(ap)

	slotBooked := ap.Slot != nil && ap.Slot.Booked
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if !heldBefore && holdsAfter {
			booked, err := uc.slots.TryBook(ctx, *ap.SlotID)
			if err != nil {
				return err
			}
			if !booked {
				return errSlotTaken
			}
			slotBooked = true
		}

		if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		if heldBefore && !holdsAfter {
			released, err := uc.slots.ReleaseUnheld(ctx, *ap.SlotID)
			if err != nil {
				return err
			}
			if !released {
				log.Warn().Uint("appointment_id", ap.ID).Uint("slot_id", *ap.SlotID).Msg("slot held by another appointment, left booked")
			}
			slotBooked = !released
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ap.Slot != nil {
		ap.Slot.Booked = slotBooked
	}

	uc.events.Publish(notify.Event{
		Kind:          notify.KindStatusChanged,
		AppointmentID: ap.ID,
		OwnerID:       ap.UserID,
		ActorID:       adminID,
		Status:        ap.Status,
		OccurredAt:    now,
	})

	return ap, nil
}

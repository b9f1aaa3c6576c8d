package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
	"github.com/BruksfildServices01/makeup-scheduler/internal/timezone"
)

type RescheduleAppointment struct {
	repo   domain.Repository
	slots  SlotStore
	gate   SlotGate
	tx     Transactor
	events EventPublisher
}

func NewRescheduleAppointment(
	repo domain.Repository,
	slots SlotStore,
	gate SlotGate,
	tx Transactor,
	events EventPublisher,
) *RescheduleAppointment {
	return &RescheduleAppointment{
		repo:   repo,
		slots:  slots,
		gate:   gate,
		tx:     tx,
		events: events,
	}
}

type RescheduleInput struct {
	AppointmentID uint
	NewSlotID     uint
	ServiceID     uint
	RequesterID   uint
}

// Execute moves an appointment to another slot of the same service.
// Only the owner may reschedule.
func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleInput,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if ap.UserID != in.RequesterID {
		return nil, errNotOwner
	}
	if err := domain.CanReschedule(domain.Status(ap.Status)); err != nil {
		return nil, err
	}

	ok, err := uc.gate.CanBookSlot(ctx, in.NewSlotID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errSlotUnavailable
	}

	newSlot, err := uc.slots.GetSlot(ctx, in.NewSlotID)
	if err != nil {
		return nil, err
	}
	if newSlot.Booked {
		return nil, errSlotTaken
	}
	if newSlot.ServiceID != in.ServiceID || ap.ServiceID != in.ServiceID {
		return nil, errServiceMismatch
	}

	var previousStart, previousEnd *time.Time
	if ap.Slot != nil {
		s, e := ap.Slot.StartTime, ap.Slot.EndTime
		previousStart, previousEnd = &s, &e
	}
	oldSlotID := ap.SlotID

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		booked, err := uc.slots.TryBook(ctx, newSlot.ID)
		if err != nil {
			return err
		}
		if !booked {
			return errSlotTaken
		}

		ap.SlotID = &newSlot.ID
		ap.ScheduledAt = timezone.DateOf(newSlot.StartTime)
		if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		if oldSlotID != nil {
			_, err := uc.slots.ReleaseUnheld(ctx, *oldSlotID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	newSlot.Booked = true
	ap.Slot = newSlot

	uc.events.Publish(notify.Event{
		Kind:          notify.KindRescheduled,
		AppointmentID: ap.ID,
		OwnerID:       ap.UserID,
		ActorID:       in.RequesterID,
		Status:        ap.Status,
		PreviousStart: previousStart,
		PreviousEnd:   previousEnd,
		OccurredAt:    time.Now(),
	})

	return ap, nil
}

package appointment

import (
	"context"
	"strings"
	"time"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
	"github.com/BruksfildServices01/makeup-scheduler/internal/timezone"
)

type BookAppointment struct {
	repo   domain.Repository
	slots  SlotStore
	gate   SlotGate
	tx     Transactor
	events EventPublisher
}

func NewBookAppointment(
	repo domain.Repository,
	slots SlotStore,
	gate SlotGate,
	tx Transactor,
	events EventPublisher,
) *BookAppointment {
	return &BookAppointment{
		repo:   repo,
		slots:  slots,
		gate:   gate,
		tx:     tx,
		events: events,
	}
}

type BookAppointmentInput struct {
	UserID      uint
	SlotID      uint
	ServiceID   uint
	Location    string
	Description string
}

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookAppointmentInput,
) (*models.Appointment, error) {

	// =========================
	// Eligibility
	// =========================

	user, err := uc.repo.GetUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	ok, err := uc.gate.CanBookSlot(ctx, in.SlotID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errSlotUnavailable
	}

	slot, err := uc.slots.GetSlot(ctx, in.SlotID)
	if err != nil {
		return nil, err
	}
	if slot.Booked {
		return nil, errSlotTaken
	}
	if slot.ServiceID != in.ServiceID {
		return nil, errServiceMismatch
	}

	// =========================
	// Persist
	// =========================

	ap := &models.Appointment{
		UserID:      user.ID,
		ServiceID:   slot.ServiceID,
		SlotID:      &slot.ID,
		Status:      string(domain.InitialStatus()),
		Location:    strings.TrimSpace(in.Location),
		ScheduledAt: timezone.DateOf(slot.StartTime),
		Description: strings.TrimSpace(in.Description),
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		booked, err := uc.slots.TryBook(ctx, slot.ID)
		if err != nil {
			return err
		}
		if !booked {
			return errSlotTaken
		}
		return uc.repo.CreateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	slot.Booked = true
	ap.User = *user
	ap.Service = slot.Service
	ap.Slot = slot

	// =========================
	// Post-commit
	// =========================

	uc.events.Publish(notify.Event{
		Kind:          notify.KindBooked,
		AppointmentID: ap.ID,
		OwnerID:       user.ID,
		ActorID:       user.ID,
		Status:        ap.Status,
		OccurredAt:    time.Now(),
	})

	return ap, nil
}

package availability

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

type SlotInput struct {
	ServiceID uint
	StartTime time.Time
	EndTime   time.Time
}

func (r *Registry) CreateSlot(
	ctx context.Context,
	adminID uint,
	in SlotInput,
) (*models.AvailabilitySlot, error) {

	if err := domain.ValidateWindow(in.StartTime, in.EndTime, r.now()); err != nil {
		return nil, err
	}

	service, err := r.repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	slot := &models.AvailabilitySlot{
		AdminID:   adminID,
		ServiceID: service.ID,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Booked:    false,
	}

	err = r.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := r.ensureNoOverlap(ctx, adminID, in.StartTime, in.EndTime, 0); err != nil {
			return err
		}
		return r.repo.CreateSlot(ctx, slot)
	})
	if err != nil {
		return nil, err
	}

	slot.Service = *service
	return slot, nil
}

func (r *Registry) ensureNoOverlap(
	ctx context.Context,
	adminID uint,
	start, end time.Time,
	excludeID uint,
) error {

	existing, err := r.repo.FindOverlapping(ctx, adminID, start, end, excludeID)
	if err != nil {
		return err
	}
	for _, s := range existing {
		if domain.Overlaps(start, end, s.StartTime, s.EndTime) {
			return httperr.Conflict("slot_overlap", "Slot overlaps with an existing availability slot.")
		}
	}
	return nil
}

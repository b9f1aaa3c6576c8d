package availability

import (
	"context"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

func (r *Registry) UpdateSlot(
	ctx context.Context,
	slotID uint,
	in SlotInput,
) (*models.AvailabilitySlot, error) {

	var slot *models.AvailabilitySlot

	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		slot, err = r.repo.GetSlot(ctx, slotID)
		if err != nil {
			return err
		}
		if err := domain.EnsureMutable(slot); err != nil {
			return err
		}
		if err := domain.ValidateWindow(in.StartTime, in.EndTime, r.now()); err != nil {
			return err
		}

		if in.ServiceID != slot.ServiceID {
			service, err := r.repo.GetService(ctx, in.ServiceID)
			if err != nil {
				return err
			}
			slot.ServiceID = service.ID
			slot.Service = *service
		}

		if err := r.ensureNoOverlap(ctx, slot.AdminID, in.StartTime, in.EndTime, slot.ID); err != nil {
			return err
		}

		slot.StartTime = in.StartTime
		slot.EndTime = in.EndTime
		return r.repo.UpdateSlot(ctx, slot)
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

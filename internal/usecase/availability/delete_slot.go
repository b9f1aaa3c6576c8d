package availability

import (
	"context"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/availability"
)

func (r *Registry) DeleteSlot(ctx context.Context, slotID uint) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		slot, err := r.repo.GetSlot(ctx, slotID)
		if err != nil {
			return err
		}
		if err := domain.EnsureMutable(slot); err != nil {
			return err
		}
		return r.repo.DeleteSlot(ctx, slot.ID)
	})
}

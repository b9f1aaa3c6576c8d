package availability

import (
	"context"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
)

// MarkBooked flips the slot to booked with a conditional update. Losing the
// race, or finding it already booked, is a state error.
func (r *Registry) MarkBooked(ctx context.Context, slotID uint) error {
	if _, err := r.repo.GetSlot(ctx, slotID); err != nil {
		return err
	}

	ok, err := r.repo.TryBook(ctx, slotID)
	if err != nil {
		return err
	}
	if !ok {
		return httperr.State("slot_already_booked", "Slot is already booked.")
	}
	return nil
}

// ReleaseSlot frees a slot. A confirmed or pending appointment still holding
// it is cancelled in the same transaction; a completed one blocks the release.
func (r *Registry) ReleaseSlot(ctx context.Context, actorID, slotID uint) error {
	var cancelledID uint

	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := r.repo.GetSlot(ctx, slotID); err != nil {
			return err
		}

		id, err := r.repo.CancelSlotHolder(ctx, slotID, r.now())
		if err != nil {
			return err
		}
		cancelledID = id

		return r.repo.Release(ctx, slotID)
	})
	if err != nil {
		return err
	}

	if cancelledID != 0 {
		r.events.Publish(notify.Event{
			Kind:          notify.KindStatusChanged,
			AppointmentID: cancelledID,
			ActorID:       actorID,
			Status:        string(domain.StatusCancelled),
		})
	}
	return nil
}

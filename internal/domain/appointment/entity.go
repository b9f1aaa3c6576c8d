package appointment

import (
	"time"

	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

// Transition applies an admin status change. No transition is forbidden;
// the timestamps follow the target status.
func Transition(ap *models.Appointment, target Status, now time.Time) {
	ap.Status = string(target)

	switch target {
	case StatusCancelled:
		ap.CancelledAt = &now
	case StatusCompleted:
		ap.CompletedAt = &now
	default:
		ap.CancelledAt = nil
		ap.CompletedAt = nil
	}
}

// HoldsSlot reports whether the appointment keeps its slot booked.
func HoldsSlot(ap *models.Appointment) bool {
	return ap.SlotID != nil && Status(ap.Status).HoldsSlot()
}

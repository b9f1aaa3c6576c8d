package availability

import (
	"time"

	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
// Touching windows do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func ValidateWindow(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return httperr.Validation("invalid_window", "Start and end time are required.")
	}
	if !start.Before(end) {
		return httperr.Validation("invalid_window", "Start time must be before end time.")
	}
	if start.Before(now) {
		return httperr.Validation("slot_in_past", "Cannot create slots in the past.")
	}
	return nil
}

// Bookable is the single eligibility rule for booking and rescheduling.
func Bookable(slot *models.AvailabilitySlot, now time.Time) bool {
	return slot != nil && !slot.Booked && slot.StartTime.After(now)
}

func EnsureMutable(slot *models.AvailabilitySlot) error {
	if slot.Booked {
		return httperr.Conflict("slot_booked", "Slot is booked and cannot be changed.")
	}
	return nil
}

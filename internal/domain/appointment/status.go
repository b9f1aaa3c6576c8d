package appointment

import (
	"strings"

	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// SlotFreeingStatus is the only status in which an appointment no longer
// holds its slot. Persistence filters and the holder index use it too.
const SlotFreeingStatus = StatusCancelled

var knownStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusCancelled,
	StatusCompleted,
}

// ParseStatus resolves a status name case-insensitively.
func ParseStatus(name string) (Status, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	for _, s := range knownStatuses {
		if string(s) == want {
			return s, nil
		}
	}
	return "", httperr.NotFoundErr("status_not_found", "Status '"+name+"' does not exist.")
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// HoldsSlot reports whether an appointment in this status keeps its slot
// booked. Only cancellation gives the slot back; a completed appointment
// still owns it.
func (s Status) HoldsSlot() bool {
	return s != SlotFreeingStatus
}

// ===============================
// Validations
// ===============================

func CanCancel(current Status) error {
	if current.IsTerminal() {
		return httperr.State("invalid_state", "Appointment is already "+strings.ToLower(string(current))+".")
	}
	return nil
}

func CanReschedule(current Status) error {
	if current.IsTerminal() {
		return httperr.State("invalid_state", "Cannot reschedule a "+strings.ToLower(string(current))+" appointment.")
	}
	return nil
}

// ErrSlotHeld reports that another appointment already holds the slot.
var ErrSlotHeld = httperr.Conflict("slot_already_booked", "This time slot has just been booked by someone else.")

// CanReleaseHeldSlot guards the admin release cascade, which may cancel the
// holder but never rewrites a completed visit.
func CanReleaseHeldSlot(holder Status) error {
	if holder == StatusCompleted {
		return httperr.State("slot_completed", "Slot belongs to a completed appointment and cannot be released.")
	}
	return nil
}

func InitialStatus() Status {
	return StatusConfirmed
}

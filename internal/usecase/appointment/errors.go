package appointment

import (
	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
)

var (
	errSlotUnavailable = httperr.Conflict("slot_unavailable", "This time slot is no longer available or has already passed.")
	errSlotTaken       = domain.ErrSlotHeld
	errServiceMismatch = httperr.Mismatch("service_mismatch", "Selected slot is not for the requested service.")
	errNotOwner        = httperr.Forbidden("not_appointment_owner", "You can only manage your own appointments.")
)

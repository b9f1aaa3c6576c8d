package notify

import (
	"context"
	"time"
)

type Kind string

const (
	KindBooked        Kind = "appointment_booked"
	KindRescheduled   Kind = "appointment_rescheduled"
	KindCancelled     Kind = "appointment_cancelled"
	KindStatusChanged Kind = "appointment_status_changed"
	KindReminder      Kind = "appointment_reminder"
)

// Event describes a committed appointment change. Handlers reload whatever
// else they need, so the event stays small.
type Event struct {
	Kind          Kind
	AppointmentID uint
	OwnerID       uint
	ActorID       uint
	Status        string

	// Set on reschedule: the window the appointment moved away from.
	PreviousStart *time.Time
	PreviousEnd   *time.Time

	OccurredAt time.Time
}

// Handler is one post-commit side effect. A returned error triggers a retry.
type Handler interface {
	Name() string
	Handle(ctx context.Context, ev Event) error
}

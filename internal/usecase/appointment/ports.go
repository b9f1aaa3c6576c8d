package appointment

import (
	"context"

	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
)

// SlotGate is the single bookability check shared by booking and rescheduling.
type SlotGate interface {
	CanBookSlot(ctx context.Context, slotID uint) (bool, error)
}

type SlotStore interface {
	GetSlot(ctx context.Context, id uint) (*models.AvailabilitySlot, error)
	TryBook(ctx context.Context, id uint) (bool, error)

	// ReleaseUnheld frees the slot unless an appointment still holds it and
	// reports whether the slot was freed.
	ReleaseUnheld(ctx context.Context, id uint) (bool, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventPublisher interface {
	Publish(ev notify.Event)
}

package availability

import (
	"context"
	"time"

	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

// Window filters slot listings. Zero ServiceID means every service.
type Window struct {
	ServiceID uint
	From      time.Time
	To        time.Time
}

type Repository interface {
	GetService(ctx context.Context, id uint) (*models.Service, error)

	GetSlot(ctx context.Context, id uint) (*models.AvailabilitySlot, error)
	CreateSlot(ctx context.Context, slot *models.AvailabilitySlot) error
	UpdateSlot(ctx context.Context, slot *models.AvailabilitySlot) error
	DeleteSlot(ctx context.Context, id uint) error

	// FindOverlapping returns the admin's slots intersecting [start,end),
	// skipping excludeID when non-zero.
	FindOverlapping(ctx context.Context, adminID uint, start, end time.Time, excludeID uint) ([]models.AvailabilitySlot, error)

	// TryBook flips booked false->true atomically and reports whether this call won.
	TryBook(ctx context.Context, id uint) (bool, error)
	Release(ctx context.Context, id uint) error

	// ReleaseUnheld frees the slot unless an appointment still holds it and
	// reports whether the slot was freed.
	ReleaseUnheld(ctx context.Context, id uint) (bool, error)

	// CancelSlotHolder cancels the appointment holding the slot and returns
	// its id, or 0 when there is none. A completed holder is a state error.
	CancelSlotHolder(ctx context.Context, slotID uint, now time.Time) (uint, error)

	ListAvailable(ctx context.Context, w Window, now time.Time) ([]models.AvailabilitySlot, error)
	ListSlots(ctx context.Context) ([]models.AvailabilitySlot, error)
	ListSlotsByService(ctx context.Context, serviceID uint) ([]models.AvailabilitySlot, error)
}

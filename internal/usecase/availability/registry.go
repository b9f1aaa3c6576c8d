package availability

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
	"github.com/BruksfildServices01/makeup-scheduler/internal/timezone"
)

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventPublisher interface {
	Publish(ev notify.Event)
}

// Registry owns the lifecycle of availability slots: creation, edits,
// removal and the booked flag.
type Registry struct {
	repo   domain.Repository
	tx     Transactor
	events EventPublisher
	now    func() time.Time
}

func NewRegistry(
	repo domain.Repository,
	tx Transactor,
	events EventPublisher,
) *Registry {
	return &Registry{
		repo:   repo,
		tx:     tx,
		events: events,
		now:    timezone.Now,
	}
}

// CanBookSlot is true iff the slot exists, is free and starts in the future.
// Unknown slots are reported as not bookable rather than as an error.
func (r *Registry) CanBookSlot(ctx context.Context, slotID uint) (bool, error) {
	slot, err := r.repo.GetSlot(ctx, slotID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return domain.Bookable(slot, r.now()), nil
}

// IsSlotAvailable only looks at the booked flag. An unknown slot is simply
// not available.
func (r *Registry) IsSlotAvailable(ctx context.Context, slotID uint) (bool, error) {
	slot, err := r.repo.GetSlot(ctx, slotID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return !slot.Booked, nil
}

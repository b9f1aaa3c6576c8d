package availability

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

const defaultWindow = 30 * 24 * time.Hour

// ListAvailable returns free slots starting inside the window and after now.
// An empty window defaults to the next 30 days.
func (r *Registry) ListAvailable(ctx context.Context, w domain.Window) ([]models.AvailabilitySlot, error) {
	now := r.now()

	if w.From.IsZero() {
		w.From = now
	}
	if w.To.IsZero() {
		w.To = w.From.Add(defaultWindow)
	}
	if w.To.Before(w.From) {
		return nil, httperr.Validation("invalid_window", "'from' must be before 'to'.")
	}

	return r.repo.ListAvailable(ctx, w, now)
}

func (r *Registry) ListSlots(ctx context.Context) ([]models.AvailabilitySlot, error) {
	return r.repo.ListSlots(ctx)
}

func (r *Registry) ListSlotsByService(ctx context.Context, serviceID uint) ([]models.AvailabilitySlot, error) {
	if _, err := r.repo.GetService(ctx, serviceID); err != nil {
		return nil, err
	}
	return r.repo.ListSlotsByService(ctx, serviceID)
}

func (r *Registry) GetSlot(ctx context.Context, slotID uint) (*models.AvailabilitySlot, error) {
	return r.repo.GetSlot(ctx, slotID)
}

package calendar

import (
	"context"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
)

// SyncHandler mirrors committed appointment changes into the owner's calendar.
type SyncHandler struct {
	service *Service
}

func NewSyncHandler(service *Service) *SyncHandler {
	return &SyncHandler{service: service}
}

func (h *SyncHandler) Name() string { return "calendar" }

func (h *SyncHandler) Handle(ctx context.Context, ev notify.Event) error {
	action := actionFor(ev)
	if action == "" || !h.service.Enabled() {
		return nil
	}

	ap, err := h.service.appointments.GetAppointment(ctx, ev.AppointmentID)
	if err != nil {
		return err
	}

	connected, err := h.service.IsConnected(ctx, ap.UserID)
	if err != nil {
		return err
	}
	if !connected {
		return nil
	}

	// The stored status decides; a cancelled appointment is always removed.
	switch {
	case domain.Status(ap.Status) == domain.StatusCancelled:
		action = "delete"
	case action == "delete":
		action = "update"
	}

	switch action {
	case "create":
		return h.service.CreateEvent(ctx, ap)
	case "update":
		return h.service.UpdateEvent(ctx, ap)
	default:
		return h.service.DeleteEvent(ctx, ap)
	}
}

func actionFor(ev notify.Event) string {
	switch ev.Kind {
	case notify.KindBooked:
		return "create"
	case notify.KindRescheduled:
		return "update"
	case notify.KindCancelled:
		return "delete"
	case notify.KindStatusChanged:
		if ev.Status == string(domain.StatusCancelled) {
			return "delete"
		}
		return "update"
	default:
		return ""
	}
}

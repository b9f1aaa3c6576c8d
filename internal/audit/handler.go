package audit

import (
	"context"

	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
)

type Sink interface {
	Log(ctx context.Context, e Entry) error
}

// Handler writes one audit row per appointment event.
type Handler struct {
	sink Sink
}

func NewHandler(sink Sink) *Handler {
	return &Handler{sink: sink}
}

func (h *Handler) Name() string { return "audit" }

func (h *Handler) Handle(ctx context.Context, ev notify.Event) error {
	return h.sink.Log(ctx, EntryFor(ev))
}

func EntryFor(ev notify.Event) Entry {
	e := Entry{
		Action: string(ev.Kind),
		Entity: "appointment",
	}
	if ev.ActorID != 0 {
		actor := ev.ActorID
		e.UserID = &actor
	}
	if ev.AppointmentID != 0 {
		id := ev.AppointmentID
		e.EntityID = &id
	}

	meta := map[string]any{}
	if ev.OwnerID != 0 {
		meta["owner_id"] = ev.OwnerID
	}
	if ev.Status != "" {
		meta["status"] = ev.Status
	}
	if ev.PreviousStart != nil {
		meta["previous_start"] = ev.PreviousStart
	}
	if len(meta) > 0 {
		e.Metadata = meta
	}
	return e
}

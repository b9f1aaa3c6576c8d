package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
)

type sinkFunc func(ctx context.Context, e Entry) error

func (f sinkFunc) Log(ctx context.Context, e Entry) error { return f(ctx, e) }

func TestHandler_MapsEventToEntry(t *testing.T) {
	prev := time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)
	var got Entry
	h := NewHandler(sinkFunc(func(ctx context.Context, e Entry) error {
		got = e
		return nil
	}))

	err := h.Handle(context.Background(), notify.Event{
		Kind:          notify.KindRescheduled,
		AppointmentID: 11,
		OwnerID:       4,
		ActorID:       4,
		PreviousStart: &prev,
	})
	require.NoError(t, err)

	assert.Equal(t, "appointment_rescheduled", got.Action)
	assert.Equal(t, "appointment", got.Entity)
	require.NotNil(t, got.EntityID)
	assert.Equal(t, uint(11), *got.EntityID)
	require.NotNil(t, got.UserID)
	assert.Equal(t, uint(4), *got.UserID)
	assert.Contains(t, got.Metadata, "previous_start")
}

func TestEntryFor_SystemEventHasNoActor(t *testing.T) {
	e := EntryFor(notify.Event{Kind: notify.KindReminder, AppointmentID: 2})
	assert.Nil(t, e.UserID)
	assert.Nil(t, e.Metadata)
}

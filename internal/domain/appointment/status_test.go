package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

func TestParseStatus_CaseInsensitive(t *testing.T) {
	for _, in := range []string{"completed", "COMPLETED", "Completed", " completed "} {
		s, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, StatusCompleted, s)
	}
}

func TestParseStatus_UnknownIsNotFound(t *testing.T) {
	_, err := ParseStatus("archived")
	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
	assert.True(t, httperr.IsBusiness(err, "status_not_found"))
}

func TestCancel_RejectsTerminalStates(t *testing.T) {
	now := time.Now()

	ap := &models.Appointment{Status: string(StatusConfirmed)}
	require.NoError(t, Cancel(ap, now))
	assert.Equal(t, string(StatusCancelled), ap.Status)
	require.NotNil(t, ap.CancelledAt)

	err := Cancel(ap, now)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))

	done := &models.Appointment{Status: string(StatusCompleted)}
	assert.Error(t, Cancel(done, now))
}

func TestCanReschedule(t *testing.T) {
	assert.NoError(t, CanReschedule(StatusConfirmed))
	assert.NoError(t, CanReschedule(StatusPending))
	assert.True(t, httperr.IsKind(CanReschedule(StatusCancelled), httperr.KindState))
	assert.True(t, httperr.IsKind(CanReschedule(StatusCompleted), httperr.KindState))
}

func TestTransition_SetsTimestamps(t *testing.T) {
	now := time.Now()
	ap := &models.Appointment{Status: string(StatusConfirmed)}

	Transition(ap, StatusCompleted, now)
	assert.Equal(t, "COMPLETED", ap.Status)
	require.NotNil(t, ap.CompletedAt)

	Transition(ap, StatusConfirmed, now)
	assert.Nil(t, ap.CompletedAt)
	assert.Nil(t, ap.CancelledAt)
}

func TestCanReleaseHeldSlot(t *testing.T) {
	assert.NoError(t, CanReleaseHeldSlot(StatusConfirmed))
	assert.NoError(t, CanReleaseHeldSlot(StatusPending))
	assert.True(t, httperr.IsBusiness(CanReleaseHeldSlot(StatusCompleted), "slot_completed"))
	assert.False(t, SlotFreeingStatus.HoldsSlot())
	assert.True(t, StatusCompleted.HoldsSlot())
}

func TestHoldsSlot(t *testing.T) {
	slotID := uint(4)
	assert.True(t, HoldsSlot(&models.Appointment{SlotID: &slotID, Status: "CONFIRMED"}))
	assert.True(t, HoldsSlot(&models.Appointment{SlotID: &slotID, Status: "COMPLETED"}))
	assert.False(t, HoldsSlot(&models.Appointment{SlotID: &slotID, Status: "CANCELLED"}))
	assert.False(t, HoldsSlot(&models.Appointment{Status: "CONFIRMED"}))
}

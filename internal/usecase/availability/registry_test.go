package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
	"github.com/BruksfildServices01/makeup-scheduler/internal/testutil"
)

var fixedNow = time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store    *testutil.Store
	events   *testutil.Events
	registry *Registry
	admin    models.User
	service  models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore()
	events := &testutil.Events{}

	reg := NewRegistry(store, store, events)
	reg.now = func() time.Time { return fixedNow }

	return &fixture{
		store:    store,
		events:   events,
		registry: reg,
		admin:    store.AddUser(models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}),
		service:  store.AddService(models.Service{Name: "Evening Makeup", DurationMin: 60, Price: 120}),
	}
}

func (f *fixture) window(h int) SlotInput {
	start := fixedNow.Add(time.Duration(h) * time.Hour)
	return SlotInput{ServiceID: f.service.ID, StartTime: start, EndTime: start.Add(time.Hour)}
}

func TestCreateSlot_Succeeds(t *testing.T) {
	f := newFixture(t)

	slot, err := f.registry.CreateSlot(context.Background(), f.admin.ID, f.window(2))
	require.NoError(t, err)

	assert.NotZero(t, slot.ID)
	assert.False(t, slot.Booked)
	assert.Equal(t, f.service.Name, slot.Service.Name)
}

func TestCreateSlot_ValidatesWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inverted := f.window(2)
	inverted.EndTime = inverted.StartTime.Add(-time.Minute)
	_, err := f.registry.CreateSlot(ctx, f.admin.ID, inverted)
	assert.True(t, httperr.IsKind(err, httperr.KindValidation))

	_, err = f.registry.CreateSlot(ctx, f.admin.ID, f.window(-1))
	assert.True(t, httperr.IsBusiness(err, "slot_in_past"))

	unknown := f.window(2)
	unknown.ServiceID = 999
	_, err = f.registry.CreateSlot(ctx, f.admin.ID, unknown)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
}

func TestCreateSlot_OverlapRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.registry.CreateSlot(ctx, f.admin.ID, f.window(2))
	require.NoError(t, err)

	overlapping := f.window(2)
	overlapping.StartTime = overlapping.StartTime.Add(30 * time.Minute)
	overlapping.EndTime = overlapping.EndTime.Add(30 * time.Minute)
	_, err = f.registry.CreateSlot(ctx, f.admin.ID, overlapping)
	assert.True(t, httperr.IsBusiness(err, "slot_overlap"))
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))

	// Back-to-back windows share only an endpoint.
	_, err = f.registry.CreateSlot(ctx, f.admin.ID, f.window(3))
	assert.NoError(t, err)

	// Another admin's calendar is independent.
	other := f.store.AddUser(models.User{Name: "Second", Email: "second@example.com", Role: models.RoleAdmin})
	_, err = f.registry.CreateSlot(ctx, other.ID, f.window(2))
	assert.NoError(t, err)
}

func TestUpdateSlot_ExcludesItselfFromOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot, err := f.registry.CreateSlot(ctx, f.admin.ID, f.window(2))
	require.NoError(t, err)

	in := f.window(2)
	in.EndTime = in.EndTime.Add(30 * time.Minute)
	updated, err := f.registry.UpdateSlot(ctx, slot.ID, in)
	require.NoError(t, err)
	assert.True(t, updated.EndTime.Equal(in.EndTime))
}

func TestUpdateSlot_ChangesServiceAndRejectsUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.store.AddService(models.Service{Name: "Bridal", DurationMin: 120, Price: 300})

	slot, err := f.registry.CreateSlot(ctx, f.admin.ID, f.window(2))
	require.NoError(t, err)

	in := f.window(2)
	in.ServiceID = other.ID
	updated, err := f.registry.UpdateSlot(ctx, slot.ID, in)
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.ServiceID)

	in.ServiceID = 404
	_, err = f.registry.UpdateSlot(ctx, slot.ID, in)
	assert.True(t, httperr.IsBusiness(err, "service_not_found"))
}

func TestUpdateAndDeleteSlot_RejectBooked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot, err := f.registry.CreateSlot(ctx, f.admin.ID, f.window(2))
	require.NoError(t, err)
	require.NoError(t, f.registry.MarkBooked(ctx, slot.ID))

	_, err = f.registry.UpdateSlot(ctx, slot.ID, f.window(5))
	assert.True(t, httperr.IsBusiness(err, "slot_booked"))

	err = f.registry.DeleteSlot(ctx, slot.ID)
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))

	require.NoError(t, f.registry.ReleaseSlot(ctx, f.admin.ID, slot.ID))
	assert.NoError(t, f.registry.DeleteSlot(ctx, slot.ID))
	_, err = f.registry.GetSlot(ctx, slot.ID)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
}

func TestMarkBooked_SecondCallIsStateError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot, err := f.registry.CreateSlot(ctx, f.admin.ID, f.window(2))
	require.NoError(t, err)

	require.NoError(t, f.registry.MarkBooked(ctx, slot.ID))
	err = f.registry.MarkBooked(ctx, slot.ID)
	assert.True(t, httperr.IsBusiness(err, "slot_already_booked"))
	assert.True(t, httperr.IsKind(err, httperr.KindState))
}

func TestReleaseSlot_CancelsLiveAppointment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.store.AddUser(models.User{Name: "Customer", Email: "c@example.com"})

	slot, err := f.registry.CreateSlot(ctx, f.admin.ID, f.window(2))
	require.NoError(t, err)
	require.NoError(t, f.registry.MarkBooked(ctx, slot.ID))

	ap := &models.Appointment{UserID: customer.ID, ServiceID: f.service.ID, SlotID: &slot.ID, Status: "CONFIRMED"}
	require.NoError(t, f.store.CreateAppointment(ctx, ap))

	require.NoError(t, f.registry.ReleaseSlot(ctx, f.admin.ID, slot.ID))

	assert.False(t, f.store.Slot(slot.ID).Booked)
	assert.Equal(t, "CANCELLED", f.store.Appointment(ap.ID).Status)

	events := f.events.All()
	require.Len(t, events, 1)
	assert.Equal(t, notify.KindStatusChanged, events[0].Kind)
	assert.Equal(t, ap.ID, events[0].AppointmentID)
	assert.Equal(t, "CANCELLED", events[0].Status)
}

func TestReleaseSlot_CompletedHolderIsStateError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.store.AddUser(models.User{Name: "Customer", Email: "c@example.com"})

	slot, err := f.registry.CreateSlot(ctx, f.admin.ID, f.window(2))
	require.NoError(t, err)
	require.NoError(t, f.registry.MarkBooked(ctx, slot.ID))

	ap := &models.Appointment{UserID: customer.ID, ServiceID: f.service.ID, SlotID: &slot.ID, Status: "COMPLETED"}
	require.NoError(t, f.store.CreateAppointment(ctx, ap))

	err = f.registry.ReleaseSlot(ctx, f.admin.ID, slot.ID)
	assert.True(t, httperr.IsBusiness(err, "slot_completed"))
	assert.True(t, f.store.Slot(slot.ID).Booked)
	assert.Equal(t, "COMPLETED", f.store.Appointment(ap.ID).Status)
	assert.Empty(t, f.events.All())
}

func TestReleaseSlot_FreeSlotPublishesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot, err := f.registry.CreateSlot(ctx, f.admin.ID, f.window(2))
	require.NoError(t, err)

	require.NoError(t, f.registry.ReleaseSlot(ctx, f.admin.ID, slot.ID))
	assert.Empty(t, f.events.All())
}

func TestCanBookSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	future, err := f.registry.CreateSlot(ctx, f.admin.ID, f.window(2))
	require.NoError(t, err)
	past := f.store.AddSlot(models.AvailabilitySlot{
		AdminID: f.admin.ID, ServiceID: f.service.ID,
		StartTime: fixedNow.Add(-2 * time.Hour), EndTime: fixedNow.Add(-time.Hour),
	})

	for i := 0; i < 3; i++ {
		ok, err := f.registry.CanBookSlot(ctx, future.ID)
		require.NoError(t, err)
		assert.True(t, ok, "repeated checks must not change the answer")
	}

	ok, err := f.registry.CanBookSlot(ctx, past.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.registry.CanBookSlot(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.registry.MarkBooked(ctx, future.ID))
	ok, err = f.registry.CanBookSlot(ctx, future.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	available, err := f.registry.IsSlotAvailable(ctx, future.ID)
	require.NoError(t, err)
	assert.False(t, available)

	available, err = f.registry.IsSlotAvailable(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestListAvailable_FiltersBookedPastAndService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.store.AddService(models.Service{Name: "Lessons"})

	a, err := f.registry.CreateSlot(ctx, f.admin.ID, f.window(2))
	require.NoError(t, err)
	b, err := f.registry.CreateSlot(ctx, f.admin.ID, f.window(4))
	require.NoError(t, err)
	otherWin := f.window(6)
	otherWin.ServiceID = other.ID
	_, err = f.registry.CreateSlot(ctx, f.admin.ID, otherWin)
	require.NoError(t, err)
	require.NoError(t, f.registry.MarkBooked(ctx, b.ID))

	slots, err := f.registry.ListAvailable(ctx, domain.Window{ServiceID: f.service.ID})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, a.ID, slots[0].ID)

	all, err := f.registry.ListAvailable(ctx, domain.Window{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.registry.ListAvailable(ctx, domain.Window{From: fixedNow.Add(time.Hour), To: fixedNow})
	assert.True(t, httperr.IsKind(err, httperr.KindValidation))

	byService, err := f.registry.ListSlotsByService(ctx, f.service.ID)
	require.NoError(t, err)
	assert.Len(t, byService, 2)
}

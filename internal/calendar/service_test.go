package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
	"github.com/BruksfildServices01/makeup-scheduler/internal/testutil"
)

var now = time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)

// fakeProvider records remote calls and keeps events in a map.
type fakeProvider struct {
	mu         sync.Mutex
	seq        int
	events     map[string]EventPayload
	refreshErr error
	deletes    int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{events: map[string]EventPayload{}}
}

func (p *fakeProvider) Name() string { return models.ProviderGoogle }
func (p *fakeProvider) AuthURL(state string) string { return "https://auth.example.com/?state=" + state }

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "bad" {
		return nil, errors.New("invalid_grant")
	}
	return &oauth2.Token{AccessToken: "access-" + code, RefreshToken: "refresh-" + code, Expiry: now.Add(time.Hour)}, nil
}

func (p *fakeProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if p.refreshErr != nil {
		return nil, p.refreshErr
	}
	return &oauth2.Token{AccessToken: "renewed", Expiry: now.Add(24 * time.Hour)}, nil
}

func (p *fakeProvider) AccountEmail(ctx context.Context, tok *oauth2.Token) (string, error) {
	return "artist@example.com", nil
}

func (p *fakeProvider) InsertEvent(ctx context.Context, tok *oauth2.Token, calendarID string, ev EventPayload) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	id := fmt.Sprintf("evt-%d", p.seq)
	p.events[id] = ev
	return id, nil
}

func (p *fakeProvider) UpdateEvent(ctx context.Context, tok *oauth2.Token, calendarID, eventID string, ev EventPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.events[eventID]; !ok {
		return ErrEventNotFound
	}
	p.events[eventID] = ev
	return nil
}

func (p *fakeProvider) DeleteEvent(ctx context.Context, tok *oauth2.Token, calendarID, eventID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletes++
	delete(p.events, eventID)
	return nil
}

func (p *fakeProvider) remote() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type memStore struct {
	mu     sync.Mutex
	seq    uint
	tokens map[uint]models.CalendarToken
	events map[uint]models.CalendarEvent
}

func newMemStore() *memStore {
	return &memStore{tokens: map[uint]models.CalendarToken{}, events: map[uint]models.CalendarEvent{}}
}

func (s *memStore) GetToken(ctx context.Context, userID uint, provider string) (*models.CalendarToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[userID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *memStore) SaveToken(ctx context.Context, tok *models.CalendarToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tok.UserID] = *tok
	return nil
}

func (s *memStore) DeleteToken(ctx context.Context, userID uint, provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}

func (s *memStore) ListTokensExpiringBefore(ctx context.Context, provider string, t time.Time) ([]models.CalendarToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CalendarToken
	for _, tok := range s.tokens {
		if tok.ExpiresAt.Before(t) {
			out = append(out, tok)
		}
	}
	return out, nil
}

func (s *memStore) DeleteTokensExpiredBefore(ctx context.Context, provider string, t time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, tok := range s.tokens {
		if tok.ExpiresAt.Before(t) {
			delete(s.tokens, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) GetEvent(ctx context.Context, appointmentID uint, provider string) (*models.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range s.events {
		if ev.AppointmentID == appointmentID {
			e := ev
			return &e, nil
		}
	}
	return nil, nil
}

func (s *memStore) SaveEvent(ctx context.Context, ev *models.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ID == 0 {
		s.seq++
		ev.ID = s.seq
	}
	s.events[ev.ID] = *ev
	return nil
}

func (s *memStore) DeleteEvent(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
	return nil
}

func (s *memStore) DeleteEventsForUser(ctx context.Context, userID uint, provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ev := range s.events {
		if ev.UserID == userID {
			delete(s.events, id)
		}
	}
	return nil
}

type fixture struct {
	svc      *Service
	provider *fakeProvider
	store    *memStore
	data     *testutil.Store
	user     models.User
	ap       *models.Appointment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	data := testutil.NewStore()
	user := data.AddUser(models.User{Name: "Ola", Email: "ola@example.com"})
	service := data.AddService(models.Service{Name: "Bridal Makeup", DurationMin: 90, Price: 250})
	slot := data.AddSlot(models.AvailabilitySlot{
		AdminID: 99, ServiceID: service.ID,
		StartTime: now.Add(24 * time.Hour), EndTime: now.Add(25*time.Hour + 30*time.Minute),
		Booked: true,
	})
	ap := &models.Appointment{UserID: user.ID, ServiceID: service.ID, SlotID: &slot.ID, Status: "CONFIRMED", Location: "Studio"}
	require.NoError(t, data.CreateAppointment(ctx, ap))

	provider := newFakeProvider()
	store := newMemStore()
	states := NewMemoryStateStore()

	svc := NewService(provider, store, states, data)
	svc.now = func() time.Time { return now }
	states.now = svc.now

	return &fixture{svc: svc, provider: provider, store: store, data: data, user: user, ap: ap}
}

func (f *fixture) connect(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	u, err := f.svc.AuthURL(ctx, f.user.ID)
	require.NoError(t, err)
	state := u[len("https://auth.example.com/?state="):]
	_, err = f.svc.Connect(ctx, f.user.ID, "code", state)
	require.NoError(t, err)
}

func (f *fixture) appointment(t *testing.T) *models.Appointment {
	t.Helper()
	ap, err := f.data.GetAppointment(context.Background(), f.ap.ID)
	require.NoError(t, err)
	return ap
}

func TestConnect_StoresTokenAndConsumesState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.AuthURL(ctx, f.user.ID)
	require.NoError(t, err)
	state := u[len("https://auth.example.com/?state="):]

	status, err := f.svc.Connect(ctx, f.user.ID, "abc", state)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, "artist@example.com", status.Email)

	connected, err := f.svc.IsConnected(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, connected)

	// States are single use.
	_, err = f.svc.Connect(ctx, f.user.ID, "abc", state)
	assert.True(t, httperr.IsBusiness(err, "invalid_oauth_state"))
}

func TestConnect_RejectsForeignStateAndBadCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.AuthURL(ctx, 12345)
	require.NoError(t, err)
	state := u[len("https://auth.example.com/?state="):]
	_, err = f.svc.Connect(ctx, f.user.ID, "abc", state)
	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))

	u, err = f.svc.AuthURL(ctx, f.user.ID)
	require.NoError(t, err)
	state = u[len("https://auth.example.com/?state="):]
	_, err = f.svc.Connect(ctx, f.user.ID, "bad", state)
	assert.True(t, httperr.IsBusiness(err, "oauth_exchange_failed"))
}

func TestDisabledService(t *testing.T) {
	svc := NewService(nil, newMemStore(), NewMemoryStateStore(), testutil.NewStore())

	connected, err := svc.IsConnected(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, connected)

	_, err = svc.AuthURL(context.Background(), 1)
	assert.True(t, httperr.IsBusiness(err, "calendar_not_configured"))
}

func TestSyncHandler_FollowsAppointmentLifecycle(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	ctx := context.Background()
	h := NewSyncHandler(f.svc)

	require.NoError(t, h.Handle(ctx, notify.Event{Kind: notify.KindBooked, AppointmentID: f.ap.ID}))
	assert.Equal(t, 1, f.provider.remote())

	synced, err := f.svc.IsSynced(ctx, f.ap.ID, f.user.ID)
	require.NoError(t, err)
	assert.True(t, synced)

	require.NoError(t, h.Handle(ctx, notify.Event{Kind: notify.KindRescheduled, AppointmentID: f.ap.ID}))
	assert.Equal(t, 1, f.provider.remote(), "reschedule updates in place")

	ap := f.appointment(t)
	ap.Status = "CANCELLED"
	require.NoError(t, f.data.UpdateAppointment(ctx, ap))

	require.NoError(t, h.Handle(ctx, notify.Event{Kind: notify.KindCancelled, AppointmentID: f.ap.ID}))
	assert.Equal(t, 0, f.provider.remote())

	ev, err := f.store.GetEvent(ctx, f.ap.ID, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestSyncHandler_StoredStatusOverridesEventKind(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	ctx := context.Background()
	h := NewSyncHandler(f.svc)

	ap := f.appointment(t)
	ap.Status = "CANCELLED"
	require.NoError(t, f.data.UpdateAppointment(ctx, ap))

	// A booking event handled after the cancellation creates nothing.
	require.NoError(t, h.Handle(ctx, notify.Event{Kind: notify.KindBooked, AppointmentID: f.ap.ID}))
	assert.Equal(t, 0, f.provider.remote())

	// A stale cancellation of a restored appointment keeps its event.
	ap.Status = "CONFIRMED"
	require.NoError(t, f.data.UpdateAppointment(ctx, ap))
	require.NoError(t, h.Handle(ctx, notify.Event{Kind: notify.KindBooked, AppointmentID: f.ap.ID}))
	require.NoError(t, h.Handle(ctx, notify.Event{Kind: notify.KindCancelled, AppointmentID: f.ap.ID}))
	assert.Equal(t, 1, f.provider.remote())
}

func TestSyncHandler_SkipsDisconnectedOwner(t *testing.T) {
	f := newFixture(t)
	h := NewSyncHandler(f.svc)

	require.NoError(t, h.Handle(context.Background(), notify.Event{Kind: notify.KindBooked, AppointmentID: f.ap.ID}))
	assert.Equal(t, 0, f.provider.remote())
}

func TestUpdateEvent_RecreatesMissingRemoteEvent(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	ctx := context.Background()

	ap := f.appointment(t)
	require.NoError(t, f.svc.CreateEvent(ctx, ap))

	f.provider.mu.Lock()
	f.provider.events = map[string]EventPayload{}
	f.provider.mu.Unlock()

	require.NoError(t, f.svc.UpdateEvent(ctx, ap))
	assert.Equal(t, 1, f.provider.remote())

	ev, err := f.store.GetEvent(ctx, ap.ID, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "evt-2", ev.ExternalEventID)
}

func TestDeleteEvent_WithoutLinkIsNoop(t *testing.T) {
	f := newFixture(t)
	f.connect(t)

	require.NoError(t, f.svc.DeleteEvent(context.Background(), f.appointment(t)))
	assert.Zero(t, f.provider.deletes)
}

func TestSyncAppointment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.SyncAppointment(ctx, f.ap.ID, f.user.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Not connected to Google Calendar", res.Error)

	f.connect(t)

	_, err = f.svc.SyncAppointment(ctx, f.ap.ID, f.user.ID+100)
	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))

	res, err = f.svc.SyncAppointment(ctx, f.ap.ID, f.user.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)

	// A second sync updates the linked event.
	res, err = f.svc.SyncAppointment(ctx, f.ap.ID, f.user.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, f.provider.remote())

	ap := f.appointment(t)
	ap.Status = "CANCELLED"
	require.NoError(t, f.data.UpdateAppointment(ctx, ap))
	res, err = f.svc.SyncAppointment(ctx, f.ap.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cannot sync cancelled appointment", res.Error)
}

func TestSyncAll_SkipsCancelled(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	ctx := context.Background()

	cancelled := &models.Appointment{UserID: f.user.ID, ServiceID: f.ap.ServiceID, Status: "CANCELLED", ScheduledAt: now}
	require.NoError(t, f.data.CreateAppointment(ctx, cancelled))

	res, err := f.svc.SyncAll(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SyncedCount)
	assert.Zero(t, res.FailedCount)
}

func TestRefreshExpiring_RemovesUnrefreshableTokens(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	ctx := context.Background()

	refreshed, removed, err := f.svc.RefreshExpiring(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)
	assert.Zero(t, removed)

	tok, err := f.store.GetToken(ctx, f.user.ID, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "renewed", tok.AccessToken)
	assert.Equal(t, "refresh-code", tok.RefreshToken, "refresh keeps the stored refresh token")

	tok.ExpiresAt = now.Add(time.Minute)
	require.NoError(t, f.store.SaveToken(ctx, tok))
	f.provider.refreshErr = errors.New("revoked")

	refreshed, removed, err = f.svc.RefreshExpiring(ctx)
	require.NoError(t, err)
	assert.Zero(t, refreshed)
	assert.Equal(t, 1, removed)

	connected, err := f.svc.IsConnected(ctx, f.user.ID)
	require.NoError(t, err)
	assert.False(t, connected)
}

func TestCleanupExpiredAndDisconnect(t *testing.T) {
	f := newFixture(t)
	f.connect(t)
	ctx := context.Background()
	require.NoError(t, f.svc.CreateEvent(ctx, f.appointment(t)))

	require.NoError(t, f.svc.Disconnect(ctx, f.user.ID))
	ev, err := f.store.GetEvent(ctx, f.ap.ID, models.ProviderGoogle)
	require.NoError(t, err)
	assert.Nil(t, ev)

	require.NoError(t, f.store.SaveToken(ctx, &models.CalendarToken{UserID: 7, Provider: models.ProviderGoogle, ExpiresAt: now.Add(-time.Hour)}))
	n, err := f.svc.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStateStore_Expires(t *testing.T) {
	s := NewMemoryStateStore()
	clock := now
	s.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "abc", 3, time.Minute))
	clock = clock.Add(2 * time.Minute)

	_, err := s.Consume(ctx, "abc")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestPayloadFor_UsesSlotWindow(t *testing.T) {
	f := newFixture(t)
	p := payloadFor(f.appointment(t))

	assert.Equal(t, "Bridal Makeup Appointment", p.Summary)
	assert.Equal(t, "Studio", p.Location)
	assert.True(t, p.Start.Equal(now.Add(24*time.Hour)))
	assert.Contains(t, p.Description, "Duration: 90 minutes")
}

package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/httperr"
	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/timezone"
)

var errNotConfigured = httperr.Validation("calendar_not_configured", "Google Calendar integration is not configured.")

// Service keeps appointments mirrored in the user's external calendar and
// manages the OAuth connection behind it. A nil provider disables it.
type Service struct {
	provider     Provider
	store        Store
	states       StateStore
	appointments AppointmentSource
	now          func() time.Time
}

func NewService(
	provider Provider,
	store Store,
	states StateStore,
	appointments AppointmentSource,
) *Service {
	return &Service{
		provider:     provider,
		store:        store,
		states:       states,
		appointments: appointments,
		now:          time.Now,
	}
}

func (s *Service) Enabled() bool { return s.provider != nil }

func (s *Service) providerName() string {
	if s.provider == nil {
		return models.ProviderGoogle
	}
	return s.provider.Name()
}

// ===============================
// Connection
// ===============================

func (s *Service) IsConnected(ctx context.Context, userID uint) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	tok, err := s.store.GetToken(ctx, userID, s.providerName())
	if err != nil || tok == nil {
		return false, err
	}
	return tok.ExpiresAt.After(s.now()), nil
}

func (s *Service) AuthURL(ctx context.Context, userID uint) (string, error) {
	if !s.Enabled() {
		return "", errNotConfigured
	}
	state := uuid.NewString()
	if err := s.states.Save(ctx, state, userID, stateTTL); err != nil {
		return "", err
	}
	return s.provider.AuthURL(state), nil
}

// Connect completes the OAuth flow started by AuthURL.
func (s *Service) Connect(ctx context.Context, userID uint, code, state string) (*ConnectionStatus, error) {
	if !s.Enabled() {
		return nil, errNotConfigured
	}
	if strings.TrimSpace(code) == "" {
		return nil, httperr.Validation("missing_code", "Authorization code is required.")
	}

	owner, err := s.states.Consume(ctx, state)
	if err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, httperr.Validation("invalid_oauth_state", "OAuth state is invalid or expired.")
		}
		return nil, err
	}
	if owner != userID {
		return nil, httperr.Forbidden("oauth_state_mismatch", "OAuth state belongs to another user.")
	}

	tok, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, httperr.Validation("oauth_exchange_failed", "Failed to exchange authorization code.")
	}

	email, err := s.provider.AccountEmail(ctx, tok)
	if err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("could not read calendar account email")
	}

	rec, err := s.store.GetToken(ctx, userID, s.providerName())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &models.CalendarToken{UserID: userID, Provider: s.providerName()}
	}
	applyToken(rec, tok)
	rec.Email = email

	if err := s.store.SaveToken(ctx, rec); err != nil {
		return nil, err
	}

	log.Info().Uint("user_id", userID).Str("provider", rec.Provider).Msg("calendar connected")
	return statusOf(rec, s.now()), nil
}

func (s *Service) Status(ctx context.Context, userID uint) (*ConnectionStatus, error) {
	if !s.Enabled() {
		return &ConnectionStatus{Provider: s.providerName()}, nil
	}
	rec, err := s.store.GetToken(ctx, userID, s.providerName())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &ConnectionStatus{Provider: s.providerName()}, nil
	}
	return statusOf(rec, s.now()), nil
}

// Disconnect forgets the token and every event link of the user.
func (s *Service) Disconnect(ctx context.Context, userID uint) error {
	if err := s.store.DeleteEventsForUser(ctx, userID, s.providerName()); err != nil {
		return err
	}
	return s.store.DeleteToken(ctx, userID, s.providerName())
}

// Refresh renews the user's access token on demand.
func (s *Service) Refresh(ctx context.Context, userID uint) (*ConnectionStatus, error) {
	if !s.Enabled() {
		return nil, errNotConfigured
	}
	rec, err := s.store.GetToken(ctx, userID, s.providerName())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, httperr.NotFoundErr("calendar_not_connected", "Google Calendar is not connected.")
	}
	if err := s.refresh(ctx, rec); err != nil {
		return nil, httperr.Validation("token_refresh_failed", "Failed to refresh token, reconnect Google Calendar.")
	}
	return statusOf(rec, s.now()), nil
}

func (s *Service) refresh(ctx context.Context, rec *models.CalendarToken) error {
	if rec.RefreshToken == "" {
		return errors.New("no refresh token stored")
	}
	tok, err := s.provider.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		return err
	}
	applyToken(rec, tok)
	return s.store.SaveToken(ctx, rec)
}

// ===============================
// Sweeps
// ===============================

// RefreshExpiring renews tokens expiring within two hours. Tokens that
// cannot be refreshed are removed so the user is asked to reconnect.
func (s *Service) RefreshExpiring(ctx context.Context) (refreshed, removed int, err error) {
	if !s.Enabled() {
		return 0, 0, nil
	}
	tokens, err := s.store.ListTokensExpiringBefore(ctx, s.providerName(), s.now().Add(refreshAhead))
	if err != nil {
		return 0, 0, err
	}

	for i := range tokens {
		rec := &tokens[i]
		if err := s.refresh(ctx, rec); err != nil {
			log.Warn().Err(err).Uint("user_id", rec.UserID).Msg("calendar token refresh failed, removing token")
			if delErr := s.store.DeleteToken(ctx, rec.UserID, rec.Provider); delErr != nil {
				log.Error().Err(delErr).Uint("user_id", rec.UserID).Msg("failed to remove calendar token")
				continue
			}
			removed++
			continue
		}
		refreshed++
	}
	return refreshed, removed, nil
}

func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteTokensExpiredBefore(ctx, s.providerName(), s.now())
}

// ===============================
// Events
// ===============================

func (s *Service) IsSynced(ctx context.Context, appointmentID, userID uint) (bool, error) {
	ev, err := s.store.GetEvent(ctx, appointmentID, s.providerName())
	if err != nil || ev == nil {
		return false, err
	}
	return ev.UserID == userID && ev.Synced, nil
}

func (s *Service) CreateEvent(ctx context.Context, ap *models.Appointment) error {
	tok, err := s.token(ctx, ap.UserID)
	if err != nil {
		return err
	}

	id, err := s.provider.InsertEvent(ctx, tok, primaryCalendar, payloadFor(ap))
	if err != nil {
		return fmt.Errorf("insert event for appointment %d: %w", ap.ID, err)
	}

	rec, err := s.store.GetEvent(ctx, ap.ID, s.providerName())
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &models.CalendarEvent{AppointmentID: ap.ID, Provider: s.providerName()}
	}
	rec.UserID = ap.UserID
	rec.ExternalEventID = id
	rec.CalendarID = primaryCalendar
	rec.Synced = true

	if err := s.store.SaveEvent(ctx, rec); err != nil {
		return err
	}
	log.Info().Uint("appointment_id", ap.ID).Str("event_id", id).Msg("calendar event created")
	return nil
}

// UpdateEvent falls back to creating the event when none is linked or the
// remote one was removed.
func (s *Service) UpdateEvent(ctx context.Context, ap *models.Appointment) error {
	rec, err := s.store.GetEvent(ctx, ap.ID, s.providerName())
	if err != nil {
		return err
	}
	if rec == nil {
		return s.CreateEvent(ctx, ap)
	}

	tok, err := s.token(ctx, ap.UserID)
	if err != nil {
		return err
	}

	err = s.provider.UpdateEvent(ctx, tok, calendarOf(rec), rec.ExternalEventID, payloadFor(ap))
	if errors.Is(err, ErrEventNotFound) {
		return s.CreateEvent(ctx, ap)
	}
	if err != nil {
		return fmt.Errorf("update event for appointment %d: %w", ap.ID, err)
	}

	rec.Synced = true
	return s.store.SaveEvent(ctx, rec)
}

// DeleteEvent removes the remote event and its link. Remote failures are
// logged; the link is dropped regardless.
func (s *Service) DeleteEvent(ctx context.Context, ap *models.Appointment) error {
	rec, err := s.store.GetEvent(ctx, ap.ID, s.providerName())
	if err != nil {
		return err
	}
	if rec == nil {
		log.Warn().Uint("appointment_id", ap.ID).Msg("no calendar event to delete")
		return nil
	}

	tok, err := s.token(ctx, ap.UserID)
	if err == nil {
		if err := s.provider.DeleteEvent(ctx, tok, calendarOf(rec), rec.ExternalEventID); err != nil {
			log.Warn().Err(err).Uint("appointment_id", ap.ID).Msg("remote calendar delete failed")
		}
	} else {
		log.Warn().Err(err).Uint("appointment_id", ap.ID).Msg("no usable token for calendar delete")
	}

	return s.store.DeleteEvent(ctx, rec.ID)
}

// ===============================
// Manual sync
// ===============================

func (s *Service) SyncAppointment(ctx context.Context, appointmentID, userID uint) (*SyncResult, error) {
	ap, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if ap.UserID != userID {
		return nil, httperr.Forbidden("not_appointment_owner", "You can only sync your own appointments.")
	}

	connected, err := s.IsConnected(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return &SyncResult{Success: false, Error: "Not connected to Google Calendar"}, nil
	}
	if domain.Status(ap.Status) == domain.StatusCancelled {
		return &SyncResult{Success: false, Error: "Cannot sync cancelled appointment"}, nil
	}

	if err := s.syncOne(ctx, ap); err != nil {
		log.Error().Err(err).Uint("appointment_id", ap.ID).Msg("manual calendar sync failed")
		return &SyncResult{Success: false, Error: "Failed to sync appointment", FailedCount: 1}, nil
	}
	return &SyncResult{Success: true, Message: "Appointment synced to Google Calendar", SyncedCount: 1}, nil
}

func (s *Service) SyncAll(ctx context.Context, userID uint) (*SyncResult, error) {
	connected, err := s.IsConnected(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return &SyncResult{Success: false, Error: "Not connected to Google Calendar"}, nil
	}

	items, err := s.appointments.ListAppointmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &SyncResult{Success: true}
	for i := range items {
		ap := &items[i]
		if domain.Status(ap.Status) == domain.StatusCancelled {
			continue
		}
		if err := s.syncOne(ctx, ap); err != nil {
			log.Warn().Err(err).Uint("appointment_id", ap.ID).Msg("calendar sync failed")
			res.FailedCount++
			continue
		}
		res.SyncedCount++
	}
	res.Message = fmt.Sprintf("Synced %d appointments", res.SyncedCount)
	return res, nil
}

func (s *Service) SyncStatus(ctx context.Context, appointmentID, userID uint) (*SyncStatus, error) {
	connected, err := s.IsConnected(ctx, userID)
	if err != nil {
		return nil, err
	}
	synced, err := s.IsSynced(ctx, appointmentID, userID)
	if err != nil {
		return nil, err
	}
	return &SyncStatus{AppointmentID: appointmentID, Synced: synced, Connected: connected}, nil
}

func (s *Service) syncOne(ctx context.Context, ap *models.Appointment) error {
	synced, err := s.IsSynced(ctx, ap.ID, ap.UserID)
	if err != nil {
		return err
	}
	if synced {
		return s.UpdateEvent(ctx, ap)
	}
	return s.CreateEvent(ctx, ap)
}

// ===============================
// Helpers
// ===============================

// token returns a usable OAuth token, refreshing it when expired.
func (s *Service) token(ctx context.Context, userID uint) (*oauth2.Token, error) {
	if !s.Enabled() {
		return nil, errNotConfigured
	}
	rec, err := s.store.GetToken(ctx, userID, s.providerName())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("user %d has no calendar token", userID)
	}
	if !rec.ExpiresAt.After(s.now()) {
		if err := s.refresh(ctx, rec); err != nil {
			return nil, fmt.Errorf("refresh token for user %d: %w", userID, err)
		}
	}
	return &oauth2.Token{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		Expiry:       rec.ExpiresAt,
		TokenType:    "Bearer",
	}, nil
}

func applyToken(rec *models.CalendarToken, tok *oauth2.Token) {
	rec.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		rec.RefreshToken = tok.RefreshToken
	}
	rec.ExpiresAt = tok.Expiry
	if tok.Expiry.IsZero() {
		rec.ExpiresAt = time.Now().Add(time.Hour)
	}
}

func statusOf(rec *models.CalendarToken, now time.Time) *ConnectionStatus {
	exp := rec.ExpiresAt
	return &ConnectionStatus{
		Connected: rec.ExpiresAt.After(now),
		Provider:  rec.Provider,
		Email:     rec.Email,
		ExpiresAt: &exp,
	}
}

func calendarOf(rec *models.CalendarEvent) string {
	if rec.CalendarID == "" {
		return primaryCalendar
	}
	return rec.CalendarID
}

func payloadFor(ap *models.Appointment) EventPayload {
	loc := timezone.AppLocation()

	var b strings.Builder
	fmt.Fprintf(&b, "Service: %s\n", ap.Service.Name)
	if ap.Service.Description != "" {
		fmt.Fprintf(&b, "Details: %s\n", ap.Service.Description)
	}
	fmt.Fprintf(&b, "Duration: %d minutes\n", ap.Service.DurationMin)
	fmt.Fprintf(&b, "Price: $%.2f\n", ap.Service.Price)
	if ap.Description != "" {
		fmt.Fprintf(&b, "Notes: %s\n", ap.Description)
	}

	p := EventPayload{
		Summary:     ap.Service.Name + " Appointment",
		Description: b.String(),
		Location:    ap.Location,
		TimeZone:    loc.String(),
	}
	if ap.Slot != nil {
		p.Start = ap.Slot.StartTime.In(loc)
		p.End = ap.Slot.EndTime.In(loc)
	} else {
		p.Start = ap.ScheduledAt
		p.End = ap.ScheduledAt.Add(time.Duration(ap.Service.DurationMin) * time.Minute)
	}
	return p
}

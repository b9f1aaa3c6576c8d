package calendar

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"

	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

const (
	primaryCalendar = "primary"
	stateTTL        = 10 * time.Minute
	refreshAhead    = 2 * time.Hour
)

var (
	ErrEventNotFound = errors.New("calendar event not found")
	ErrStateNotFound = errors.New("oauth state not found or expired")
)

// EventPayload is the provider-neutral shape of an appointment event.
type EventPayload struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// Provider talks to the external calendar and its OAuth server.
type Provider interface {
	Name() string
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	AccountEmail(ctx context.Context, tok *oauth2.Token) (string, error)

	InsertEvent(ctx context.Context, tok *oauth2.Token, calendarID string, ev EventPayload) (string, error)
	// UpdateEvent returns ErrEventNotFound when the remote event is gone.
	UpdateEvent(ctx context.Context, tok *oauth2.Token, calendarID, eventID string, ev EventPayload) error
	DeleteEvent(ctx context.Context, tok *oauth2.Token, calendarID, eventID string) error
}

// Store persists tokens and event links. Lookups return nil, nil when absent.
type Store interface {
	GetToken(ctx context.Context, userID uint, provider string) (*models.CalendarToken, error)
	SaveToken(ctx context.Context, tok *models.CalendarToken) error
	DeleteToken(ctx context.Context, userID uint, provider string) error
	ListTokensExpiringBefore(ctx context.Context, provider string, t time.Time) ([]models.CalendarToken, error)
	DeleteTokensExpiredBefore(ctx context.Context, provider string, t time.Time) (int64, error)

	GetEvent(ctx context.Context, appointmentID uint, provider string) (*models.CalendarEvent, error)
	SaveEvent(ctx context.Context, ev *models.CalendarEvent) error
	DeleteEvent(ctx context.Context, id uint) error
	DeleteEventsForUser(ctx context.Context, userID uint, provider string) error
}

// StateStore keeps the OAuth state parameter between auth-url and callback.
type StateStore interface {
	Save(ctx context.Context, state string, userID uint, ttl time.Duration) error
	Consume(ctx context.Context, state string) (uint, error)
}

type AppointmentSource interface {
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	ListAppointmentsByUser(ctx context.Context, userID uint) ([]models.Appointment, error)
}

type ConnectionStatus struct {
	Connected bool       `json:"connected"`
	Provider  string     `json:"provider"`
	Email     string     `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type SyncResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
	SyncedCount int    `json:"syncedCount"`
	FailedCount int    `json:"failedCount"`
}

type SyncStatus struct {
	AppointmentID uint `json:"appointmentId"`
	Synced        bool `json:"synced"`
	Connected     bool `json:"connected"`
}

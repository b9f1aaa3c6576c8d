package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
	"github.com/BruksfildServices01/makeup-scheduler/internal/timezone"
)

type AppointmentLoader interface {
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
}

type CalendarStatus interface {
	IsConnected(ctx context.Context, userID uint) (bool, error)
}

type NotificationLog interface {
	RecordNotification(ctx context.Context, n *models.Notification) error
}

// EmailHandler sends the customer email for booking, reschedule,
// cancellation and reminder events.
type EmailHandler struct {
	appointments AppointmentLoader
	mailer       Mailer
	calendar     CalendarStatus
	history      NotificationLog
}

func NewEmailHandler(
	appointments AppointmentLoader,
	mailer Mailer,
	calendar CalendarStatus,
	history NotificationLog,
) *EmailHandler {
	return &EmailHandler{
		appointments: appointments,
		mailer:       mailer,
		calendar:     calendar,
		history:      history,
	}
}

func (h *EmailHandler) Name() string { return "email" }

func (h *EmailHandler) Handle(ctx context.Context, ev Event) error {
	tmpl, subjectPrefix, ok := emailFor(ev.Kind)
	if !ok {
		return nil
	}

	ap, err := h.appointments.GetAppointment(ctx, ev.AppointmentID)
	if err != nil {
		return fmt.Errorf("load appointment %d: %w", ev.AppointmentID, err)
	}

	data := messageData(ap)
	if ev.PreviousStart != nil {
		prev := ev.PreviousStart.In(timezone.AppLocation())
		data.PreviousDate = prev.Format("2006-01-02")
		data.PreviousTime = prev.Format("15:04")
	}
	if h.calendar != nil {
		connected, err := h.calendar.IsConnected(ctx, ap.UserID)
		if err != nil {
			log.Warn().Err(err).Uint("user_id", ap.UserID).Msg("calendar status lookup failed")
		}
		data.CalendarConnected = connected
	}

	body, err := Render(tmpl, data)
	if err != nil {
		return err
	}

	subject := subjectPrefix + ap.Service.Name
	if err := h.mailer.Send(ctx, ap.User.Email, subject, body); err != nil {
		return err
	}

	h.record(ctx, &models.Notification{
		UserID:        &ap.UserID,
		AppointmentID: &ap.ID,
		Type:          string(ev.Kind),
		Channel:       "email",
		Recipient:     ap.User.Email,
		Message:       subject,
		Status:        models.NotificationSent,
		Attempts:      1,
		SentAt:        ptrTime(time.Now()),
	})
	return nil
}

func (h *EmailHandler) record(ctx context.Context, n *models.Notification) {
	if h.history == nil {
		return
	}
	if err := h.history.RecordNotification(ctx, n); err != nil {
		log.Warn().Err(err).Str("type", n.Type).Msg("failed to record notification")
	}
}

func emailFor(kind Kind) (tmpl, subjectPrefix string, ok bool) {
	switch kind {
	case KindBooked:
		return "confirmation", "Appointment Confirmation - ", true
	case KindRescheduled:
		return "reschedule", "Appointment Rescheduled - ", true
	case KindCancelled:
		return "cancellation", "Appointment Cancelled - ", true
	case KindReminder:
		return "reminder", "Reminder: Your appointment is tomorrow - ", true
	default:
		return "", "", false
	}
}

func messageData(ap *models.Appointment) MessageData {
	data := MessageData{
		Name:        ap.User.Name,
		ServiceName: ap.Service.Name,
		Date:        ap.ScheduledAt.Format("2006-01-02"),
		Duration:    ap.Service.DurationMin,
		Location:    ap.Location,
		Price:       ap.Service.Price,
		Notes:       ap.Description,
	}
	if ap.Slot != nil {
		loc := timezone.AppLocation()
		data.StartTime = ap.Slot.StartTime.In(loc).Format("15:04")
		data.EndTime = ap.Slot.EndTime.In(loc).Format("15:04")
	}
	return data
}

func ptrTime(t time.Time) *time.Time { return &t }

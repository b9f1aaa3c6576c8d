package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/makeup-scheduler/internal/models"
)

// RecordDeadLetters stores exhausted deliveries as dead notifications so
// they can be inspected and replayed.
func RecordDeadLetters(store NotificationLog) DeadLetterFunc {
	return func(ctx context.Context, handler string, ev Event, attempts int, err error) {
		n := &models.Notification{
			Type:     string(ev.Kind),
			Channel:  handler,
			Message:  "delivery failed after retries",
			Status:   models.NotificationDead,
			Attempts: attempts,
		}
		if ev.OwnerID != 0 {
			n.UserID = &ev.OwnerID
		}
		if ev.AppointmentID != 0 {
			n.AppointmentID = &ev.AppointmentID
		}
		if err != nil {
			n.LastError = err.Error()
		}

		if recErr := store.RecordNotification(ctx, n); recErr != nil {
			log.Error().Err(recErr).Str("handler", handler).Msg("failed to record dead letter")
		}
	}
}

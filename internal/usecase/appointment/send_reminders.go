package appointment

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	domain "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
	"github.com/BruksfildServices01/makeup-scheduler/internal/timezone"
)

type SendReminders struct {
	repo   domain.Repository
	events EventPublisher
	now    func() time.Time
}

func NewSendReminders(repo domain.Repository, events EventPublisher) *SendReminders {
	return &SendReminders{
		repo:   repo,
		events: events,
		now:    timezone.Now,
	}
}

// Execute queues a reminder for every confirmed appointment scheduled for
// tomorrow and returns how many were queued.
func (uc *SendReminders) Execute(ctx context.Context) (int, error) {
	tomorrow := timezone.DateOf(uc.now()).AddDate(0, 0, 1)

	items, err := uc.repo.ListAppointmentsOn(ctx, tomorrow, domain.StatusConfirmed)
	if err != nil {
		return 0, err
	}

	for _, ap := range items {
		uc.events.Publish(notify.Event{
			Kind:          notify.KindReminder,
			AppointmentID: ap.ID,
			OwnerID:       ap.UserID,
			Status:        ap.Status,
		})
	}

	log.Info().
		Int("count", len(items)).
		Str("day", tomorrow.Format("2006-01-02")).
		Msg("appointment reminders queued")

	return len(items), nil
}

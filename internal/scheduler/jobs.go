package scheduler

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/makeup-scheduler/internal/config"
)

type Reminders interface {
	Execute(ctx context.Context) (int, error)
}

type TokenSweeper interface {
	RefreshExpiring(ctx context.Context) (refreshed, removed int, err error)
	CleanupExpired(ctx context.Context) (int64, error)
}

type VisitorCleaner interface {
	Cleanup() int
}

// Jobs builds the application's periodic jobs. A nil collaborator drops its job.
func Jobs(cfg *config.Config, reminders Reminders, tokens TokenSweeper, visitors VisitorCleaner) []Job {
	var jobs []Job

	if tokens != nil {
		jobs = append(jobs,
			Job{
				Name: "calendar_token_refresh",
				Spec: cfg.CronTokenRefresh,
				Run: func(ctx context.Context) error {
					refreshed, removed, err := tokens.RefreshExpiring(ctx)
					if err != nil {
						return err
					}
					log.Info().Int("refreshed", refreshed).Int("removed", removed).Msg("calendar tokens refreshed")
					return nil
				},
			},
			Job{
				Name: "calendar_token_cleanup",
				Spec: cfg.CronTokenCleanup,
				Run: func(ctx context.Context) error {
					n, err := tokens.CleanupExpired(ctx)
					if err != nil {
						return err
					}
					log.Info().Int64("removed", n).Msg("expired calendar tokens removed")
					return nil
				},
			},
		)
	}

	if reminders != nil {
		jobs = append(jobs, Job{
			Name: "appointment_reminders",
			Spec: cfg.CronReminders,
			Run: func(ctx context.Context) error {
				_, err := reminders.Execute(ctx)
				return err
			},
		})
	}

	if visitors != nil {
		jobs = append(jobs, Job{
			Name: "rate_limit_cleanup",
			Spec: "@every 10m",
			Run: func(ctx context.Context) error {
				visitors.Cleanup()
				return nil
			},
		})
	}

	return jobs
}

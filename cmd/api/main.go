package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/makeup-scheduler/internal/audit"
	"github.com/BruksfildServices01/makeup-scheduler/internal/auth"
	"github.com/BruksfildServices01/makeup-scheduler/internal/calendar"
	"github.com/BruksfildServices01/makeup-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/makeup-scheduler/internal/db"
	"github.com/BruksfildServices01/makeup-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/makeup-scheduler/internal/logging"
	"github.com/BruksfildServices01/makeup-scheduler/internal/middleware"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
	"github.com/BruksfildServices01/makeup-scheduler/internal/routes"
	"github.com/BruksfildServices01/makeup-scheduler/internal/scheduler"
	"github.com/BruksfildServices01/makeup-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/makeup-scheduler/internal/usecase/appointment"
)

func main() {

	cfg := config.Load()
	logging.Init("makeup-scheduler", cfg.Env, cfg.LogLevel)
	timezone.SetDefault(cfg.Timezone)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db := dbpkg.NewDB(cfg)

	// ======================================================
	// REPOSITORIES
	// ======================================================
	appointmentRepo := repository.NewAppointmentGormRepository(db)
	slotRepo := repository.NewSlotGormRepository(db)
	userRepo := repository.NewUserGormRepository(db)
	serviceRepo := repository.NewServiceGormRepository(db)
	calendarRepo := repository.NewCalendarGormRepository(db)
	notificationRepo := repository.NewNotificationGormRepository(db)

	// ======================================================
	// CALENDAR
	// ======================================================
	var provider calendar.Provider
	if cfg.Google.Enabled() {
		provider = calendar.NewGoogleProvider(cfg.Google)
	} else {
		log.Warn().Msg("google calendar not configured, sync disabled")
	}

	var states calendar.StateStore = calendar.NewMemoryStateStore()
	if client := dbpkg.NewRedis(cfg); client != nil {
		defer client.Close()
		states = calendar.NewRedisStateStore(client)
	}

	calendarService := calendar.NewService(provider, calendarRepo, states, appointmentRepo)

	// ======================================================
	// NOTIFICATIONS
	// ======================================================
	mailer := notify.NewMailer(cfg.SMTP)

	dispatcher := notify.NewDispatcher(
		notify.Options{
			QueueSize:   cfg.NotifyQueueSize,
			Workers:     cfg.NotifyWorkers,
			MaxAttempts: cfg.NotifyMaxAttempts,
			Backoff:     cfg.NotifyBackoff,
		},
		notify.RecordDeadLetters(notificationRepo),
		notify.NewEmailHandler(appointmentRepo, mailer, calendarService, notificationRepo),
		calendar.NewSyncHandler(calendarService),
		audit.NewHandler(audit.New(db)),
	)

	// ======================================================
	// HTTP
	// ======================================================
	limiter := middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Appointments:  appointmentRepo,
		Slots:         slotRepo,
		Users:         userRepo,
		Catalog:       serviceRepo,
		Notifications: notificationRepo,
		Tx:            dbpkg.NewTxManager(db),
		Events:        dispatcher,
		Calendar:      calendarService,
		Mailer:        mailer,
		Issuer:        auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL),
		Limiter:       limiter,

		AllowedOrigins: cfg.CORSOrigins,
		DB:             db,
	})

	// ======================================================
	// SCHEDULED JOBS
	// ======================================================
	var tokens scheduler.TokenSweeper
	if calendarService.Enabled() {
		tokens = calendarService
	}

	cron := scheduler.New(timezone.AppLocation())
	for _, job := range scheduler.Jobs(
		cfg,
		ucAppointment.NewSendReminders(appointmentRepo, dispatcher),
		tokens,
		limiter,
	) {
		if err := cron.Add(job); err != nil {
			log.Fatal().Err(err).Msg("failed to schedule job")
		}
	}
	cron.Start()

	// ======================================================
	// RUN
	// ======================================================
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	cron.Stop()
	dispatcher.Close()

	log.Info().Msg("server stopped")
}

package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/makeup-scheduler/internal/auth"
	"github.com/BruksfildServices01/makeup-scheduler/internal/calendar"
	domainAppointment "github.com/BruksfildServices01/makeup-scheduler/internal/domain/appointment"
	domainAvailability "github.com/BruksfildServices01/makeup-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/makeup-scheduler/internal/handlers"
	"github.com/BruksfildServices01/makeup-scheduler/internal/middleware"
	"github.com/BruksfildServices01/makeup-scheduler/internal/notify"
	ucAppointment "github.com/BruksfildServices01/makeup-scheduler/internal/usecase/appointment"
	ucAvailability "github.com/BruksfildServices01/makeup-scheduler/internal/usecase/availability"
)

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventPublisher interface {
	Publish(ev notify.Event)
}

// Deps are the singletons the HTTP layer is built from.
type Deps struct {
	Appointments  domainAppointment.Repository
	Slots         domainAvailability.Repository
	Users         handlers.UserStore
	Catalog       handlers.ServiceCatalog
	Notifications handlers.NotificationHistory
	Tx            Transactor
	Events        EventPublisher
	Calendar      *calendar.Service
	Mailer        notify.Mailer
	Issuer        *auth.Issuer
	Limiter       *middleware.IPRateLimiter

	// AllowedOrigins restricts CORS; empty reflects any origin.
	AllowedOrigins []string

	// DB backs the audit log listing; nil leaves the route out.
	DB *gorm.DB
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(d.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// USE CASES
	// ======================================================
	registry := ucAvailability.NewRegistry(d.Slots, d.Tx, d.Events)

	appointmentUC := handlers.AppointmentUseCases{
		Book:       ucAppointment.NewBookAppointment(d.Appointments, d.Slots, registry, d.Tx, d.Events),
		Reschedule: ucAppointment.NewRescheduleAppointment(d.Appointments, d.Slots, registry, d.Tx, d.Events),
		Cancel:     ucAppointment.NewCancelAppointment(d.Appointments, d.Slots, d.Tx, d.Events),
		Status:     ucAppointment.NewUpdateAppointmentStatus(d.Appointments, d.Slots, d.Tx, d.Events),
		Queries:    ucAppointment.NewQueries(d.Appointments),
	}

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.Users, d.Issuer, d.Mailer)
	meHandler := handlers.NewMeHandler(d.Users, d.Notifications)
	serviceHandler := handlers.NewServiceHandler(d.Catalog)
	availabilityHandler := handlers.NewAvailabilityHandler(registry)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentUC, d.Calendar)
	calendarHandler := handlers.NewCalendarHandler(d.Calendar)

	requireAuth := middleware.AuthMiddleware(d.Issuer)
	adminOnly := middleware.RequireAdmin()

	api := r.Group("/api")

	// ------------------------------
	// AUTH
	// ------------------------------
	authAPI := api.Group("/auth")
	if d.Limiter != nil {
		authAPI.Use(middleware.RateLimit(d.Limiter))
	}
	{
		authAPI.POST("/signup", authHandler.Signup)
		authAPI.POST("/login", authHandler.Login)
		authAPI.POST("/verify", authHandler.Verify)
		authAPI.POST("/resend", authHandler.Resend)
		authAPI.POST("/pwdresetmail", authHandler.RequestPasswordReset)
		authAPI.POST("/pwdreset", authHandler.ResetPassword)
	}

	// ------------------------------
	// PUBLIC CATALOG
	// ------------------------------
	api.GET("/services", serviceHandler.List)
	api.GET("/services/:id", serviceHandler.Get)

	// ------------------------------
	// AUTHENTICATED
	// ------------------------------
	secured := api.Group("/", requireAuth)
	{
		secured.GET("/me", meHandler.GetMe)
		secured.GET("/me/notifications", meHandler.Notifications)
		secured.GET("/users/profile", meHandler.GetMe)
		secured.PUT("/users/profile", meHandler.UpdateProfile)

		secured.POST("/services", adminOnly, serviceHandler.Create)
		secured.PUT("/services/:id", adminOnly, serviceHandler.Update)
		secured.DELETE("/services/:id", adminOnly, serviceHandler.Delete)

		availability := secured.Group("/availability")
		{
			availability.GET("", availabilityHandler.ListAvailable)
			availability.GET("/all", availabilityHandler.ListAll)
			availability.GET("/service/:serviceId", availabilityHandler.ListByService)
			availability.GET("/:slotId/check", availabilityHandler.Check)

			availability.POST("", adminOnly, availabilityHandler.Create)
			availability.PUT("/:slotId", adminOnly, availabilityHandler.Update)
			availability.PUT("/:slotId/book", adminOnly, availabilityHandler.MarkBooked)
			availability.PUT("/:slotId/release", adminOnly, availabilityHandler.Release)
			availability.DELETE("/:slotId", adminOnly, availabilityHandler.Delete)
		}

		appointments := secured.Group("/appointments")
		{
			appointments.POST("", appointmentHandler.Create)
			appointments.GET("/my", appointmentHandler.ListMine)
			appointments.GET("", adminOnly, appointmentHandler.ListAll)
			appointments.POST("/sync-all-to-calendar", appointmentHandler.SyncAllToCalendar)
			appointments.GET("/:id", appointmentHandler.Get)
			appointments.PUT("/:id/reschedule", appointmentHandler.Reschedule)
			appointments.PUT("/:id/cancel", appointmentHandler.Cancel)
			appointments.PUT("/:id/status", adminOnly, appointmentHandler.UpdateStatus)
			appointments.POST("/:id/sync-to-calendar", appointmentHandler.SyncToCalendar)
		}

		cal := secured.Group("/calendar")
		{
			cal.GET("/google/auth-url", calendarHandler.AuthURL)
			cal.POST("/google/callback", calendarHandler.Callback)
			cal.GET("/google/status", calendarHandler.Status)
			cal.DELETE("/google/disconnect", calendarHandler.Disconnect)
			cal.POST("/google/refresh", calendarHandler.Refresh)
			cal.GET("/sync-status/:appointmentId", calendarHandler.SyncStatus)
		}

		if d.DB != nil {
			auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)
			secured.GET("/admin/audit-logs", adminOnly, auditLogsHandler.List)
		}
	}
}

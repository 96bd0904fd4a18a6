package router

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinic-api/internal/config"
	"github.com/clinicore/clinic-api/internal/handler"
	analyticshandler "github.com/clinicore/clinic-api/internal/handler/analytics"
	appointmenthandler "github.com/clinicore/clinic-api/internal/handler/appointment"
	authhandler "github.com/clinicore/clinic-api/internal/handler/auth"
	clinichandler "github.com/clinicore/clinic-api/internal/handler/clinic"
	consultationhandler "github.com/clinicore/clinic-api/internal/handler/consultation"
	followuphandler "github.com/clinicore/clinic-api/internal/handler/followup"
	notificationhandler "github.com/clinicore/clinic-api/internal/handler/notification"
	patienthandler "github.com/clinicore/clinic-api/internal/handler/patient"
	referralhandler "github.com/clinicore/clinic-api/internal/handler/referral"
	userhandler "github.com/clinicore/clinic-api/internal/handler/user"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/model"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Base         *handler.Handler
	Auth         *authhandler.Handler
	Clinic       *clinichandler.Handler
	User         *userhandler.Handler
	Patient      *patienthandler.Handler
	Appointment  *appointmenthandler.Handler
	Consultation *consultationhandler.Handler
	FollowUp     *followuphandler.Handler
	Notification *notificationhandler.Handler
	Referral     *referralhandler.Handler
	Analytics    *analyticshandler.Handler
}

// Setup builds the gin engine. Clinic-scoped routes resolve the target
// clinic from the path, the clinic_id query parameter or the request body,
// so list and item routes take ?clinic_id= when the path has none.
func Setup(h *Handlers, authMW *middleware.AuthMiddleware, cfg *config.Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   cfg.RateLimit.RequestsPerSecond,
			Burst: cfg.RateLimit.Burst,
		})
		r.Use(limiter.RateLimit())
	}

	r.GET("/health/live", h.Base.LivenessCheck)
	r.GET("/health/ready", h.Base.ReadinessCheck)
	r.GET("/metrics", h.Base.MetricsHandler)

	v1 := r.Group("/api/v1")

	// Public surface: registration, availability checks and authentication.
	v1.POST("/clinics/register", h.Clinic.Register)
	v1.GET("/clinics/check-email", h.Clinic.CheckEmail)
	v1.GET("/clinics/check-phone", h.Clinic.CheckPhone)
	v1.POST("/auth/login", h.Auth.Login)
	v1.POST("/auth/refresh", h.Auth.Refresh)

	authed := v1.Group("")
	authed.Use(authMW.Authenticate())

	// Clinic lifecycle decisions are the system admin's alone.
	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRoles(model.RoleSystemAdmin))
	{
		admin.GET("/clinics", h.Clinic.List)
		admin.POST("/clinics/:clinic_id/approve", h.Clinic.Approve)
		admin.POST("/clinics/:clinic_id/reject", h.Clinic.Reject)
		admin.POST("/clinics/:clinic_id/suspend", h.Clinic.Suspend)
		admin.POST("/clinics/:clinic_id/reactivate", h.Clinic.Reactivate)
	}

	authed.GET("/clinics/:clinic_id",
		middleware.RequireClinicScope(),
		h.Clinic.Get)

	// Staff management belongs to owners and admins.
	users := authed.Group("/users")
	users.Use(middleware.RequireRoles(model.RoleClinicOwner, model.RoleSystemAdmin))
	users.Use(middleware.RequireClinicScope())
	{
		users.POST("", h.User.Create)
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Deactivate)
	}

	staff := []string{model.RoleDoctor, model.RoleNurse, model.RoleClinicOwner, model.RoleSystemAdmin}

	patients := authed.Group("/patients")
	patients.Use(middleware.RequireRoles(staff...))
	patients.Use(middleware.RequireClinicScope())
	{
		patients.POST("", h.Patient.Create)
		patients.GET("", h.Patient.List)
		patients.GET("/:id", h.Patient.Get)
		patients.PUT("/:id", h.Patient.Update)
		patients.DELETE("/:id", h.Patient.Delete)
		patients.POST("/files", h.Patient.AddFile)
		patients.GET("/:id/files", h.Patient.ListFiles)
		patients.POST("/communications", h.Patient.LogCommunication)
		patients.GET("/:id/communications", h.Patient.ListCommunications)
	}

	appointments := authed.Group("/appointments")
	appointments.Use(middleware.RequireRoles(staff...))
	appointments.Use(middleware.RequireClinicScope())
	{
		appointments.POST("", h.Appointment.Create)
		appointments.GET("", h.Appointment.List)
		appointments.GET("/:id", h.Appointment.Get)
		appointments.PUT("/:id", h.Appointment.Update)
		appointments.POST("/:id/cancel", h.Appointment.Cancel)
		appointments.POST("/:id/start", h.Appointment.Start)
	}

	consultations := authed.Group("/consultations")
	consultations.Use(middleware.RequireRoles(model.RoleDoctor, model.RoleNurse, model.RoleSystemAdmin))
	consultations.Use(middleware.RequireClinicScope())
	{
		consultations.POST("", h.Consultation.Create)
		consultations.GET("", h.Consultation.List)
		consultations.GET("/:id", h.Consultation.Get)
		consultations.PUT("/:id", h.Consultation.Update)
	}

	followups := authed.Group("/follow-ups")
	followups.Use(middleware.RequireRoles(model.RoleDoctor, model.RoleNurse, model.RoleSystemAdmin))
	followups.Use(middleware.RequireClinicScope())
	{
		followups.POST("", h.FollowUp.Create)
		followups.GET("", h.FollowUp.List)
		followups.GET("/:id", h.FollowUp.Get)
		followups.POST("/:id/complete", h.FollowUp.Complete)
	}

	// Only doctors refer patients.
	referrals := authed.Group("/referrals")
	referrals.Use(middleware.RequireClinicScope())
	{
		referrals.POST("", middleware.RequireRoles(model.RoleDoctor), h.Referral.Create)
		referrals.GET("", middleware.RequireRoles(staff...), h.Referral.List)
		referrals.GET("/:id", middleware.RequireRoles(staff...), h.Referral.Get)
		referrals.PUT("/:id/status", middleware.RequireRoles(model.RoleDoctor), h.Referral.UpdateStatus)
	}

	analytics := authed.Group("/analytics")
	analytics.Use(middleware.RequireRoles(model.RoleClinicOwner, model.RoleSystemAdmin))
	analytics.Use(middleware.RequireClinicScope())
	{
		analytics.GET("/dashboard", h.Analytics.Dashboard)
	}

	// The notification inbox is always the caller's own; no clinic scope.
	notifications := authed.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.POST("/:id/read", h.Notification.MarkRead)
		notifications.POST("/read-all", h.Notification.MarkAllRead)
	}

	return r
}

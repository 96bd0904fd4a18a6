package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicore/clinic-api/internal/config"
	"github.com/clinicore/clinic-api/internal/email"
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
	"github.com/clinicore/clinic-api/internal/repository/postgres"
	"github.com/clinicore/clinic-api/internal/router"
	analyticssvc "github.com/clinicore/clinic-api/internal/service/analytics"
	appointmentsvc "github.com/clinicore/clinic-api/internal/service/appointment"
	authsvc "github.com/clinicore/clinic-api/internal/service/auth"
	clinicsvc "github.com/clinicore/clinic-api/internal/service/clinic"
	consultationsvc "github.com/clinicore/clinic-api/internal/service/consultation"
	followupsvc "github.com/clinicore/clinic-api/internal/service/followup"
	notificationsvc "github.com/clinicore/clinic-api/internal/service/notification"
	patientsvc "github.com/clinicore/clinic-api/internal/service/patient"
	referralsvc "github.com/clinicore/clinic-api/internal/service/referral"
	usersvc "github.com/clinicore/clinic-api/internal/service/user"
	"github.com/clinicore/clinic-api/pkg/auth"
	"github.com/clinicore/clinic-api/pkg/logger"
	"github.com/clinicore/clinic-api/pkg/messaging/redis"
	"github.com/clinicore/clinic-api/pkg/metrics"
	"github.com/clinicore/clinic-api/pkg/security"
	"github.com/clinicore/clinic-api/pkg/worker"
)

const dashboardCacheTTL = 5 * time.Minute

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(db, cfg.Server.MigrationsPath); err != nil {
		log.Fatal(err, "failed to run migrations")
	}

	m := metrics.New("clinic_api")
	base := postgres.NewBaseRepository(db)

	userRepo := postgres.NewUserRepository(base)
	clinicRepo := postgres.NewClinicRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	consultationRepo := postgres.NewConsultationRepository(base)
	followUpRepo := postgres.NewFollowUpRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	referralRepo := postgres.NewReferralRepository(base)
	fileRepo := postgres.NewPatientFileRepository(base)
	commRepo := postgres.NewCommunicationLogRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)
	analyticsRepo := postgres.NewAnalyticsRepository(base)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:             cfg.JWT.Secret,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		ExpiryHours:        cfg.JWT.ExpiryHours,
		RefreshExpiryHours: cfg.JWT.RefreshExpiryHours,
	})
	hasher := security.NewBcryptHasher(0)
	mailer := email.NewService(&cfg.SMTP, log.ZL)

	followUpSvc := followupsvc.NewService(followUpRepo, patientRepo, notificationRepo, log.ZL)

	handlers := &router.Handlers{
		Base:         handler.NewHandler(),
		Auth:         authhandler.NewHandler(authsvc.NewService(userRepo, clinicRepo, jwtSvc, hasher, log.ZL)),
		Clinic:       clinichandler.NewHandler(clinicsvc.NewService(clinicRepo, userRepo, outboxRepo, hasher, mailer, log.ZL)),
		User:         userhandler.NewHandler(usersvc.NewService(userRepo, hasher)),
		Patient:      patienthandler.NewHandler(patientsvc.NewService(patientRepo, fileRepo, commRepo)),
		Appointment:  appointmenthandler.NewHandler(appointmentsvc.NewService(appointmentRepo, consultationRepo, outboxRepo, log.ZL)),
		Consultation: consultationhandler.NewHandler(consultationsvc.NewService(consultationRepo, followUpSvc, outboxRepo, log.ZL)),
		FollowUp:     followuphandler.NewHandler(followUpSvc),
		Notification: notificationhandler.NewHandler(notificationsvc.NewService(notificationRepo)),
		Referral:     referralhandler.NewHandler(referralsvc.NewService(referralRepo, notificationRepo, log.ZL)),
		Analytics:    analyticshandler.NewHandler(analyticssvc.NewService(analyticsRepo, dashboardCacheTTL)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Outbox.Enabled {
		broker, err := redis.NewBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &log.ZL)
		if err != nil {
			log.Fatal(err, "failed to connect to Redis")
		}
		defer broker.Close()

		outbox := worker.NewOutboxProcessor(outboxRepo, broker, "clinic.events",
			cfg.Outbox.BatchSize, cfg.Outbox.PollInterval, m, log.ZL)
		outbox.Start(ctx)
		defer outbox.Stop()
	}

	engine := router.Setup(handlers, middleware.NewAuthMiddleware(jwtSvc), cfg)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "forced shutdown")
	}
	log.Info("server stopped")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/otcheredev/clinic-core/internal/cache"
	"github.com/otcheredev/clinic-core/internal/config"
	"github.com/otcheredev/clinic-core/internal/database"
	"github.com/otcheredev/clinic-core/internal/handlers"
	"github.com/otcheredev/clinic-core/internal/middleware"
	"github.com/otcheredev/clinic-core/internal/notification"
	"github.com/otcheredev/clinic-core/internal/repository"
	"github.com/otcheredev/clinic-core/internal/services"
	"github.com/otcheredev/clinic-core/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting Clinic Core")

	// Connect to database
	dbConfig := database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		LogLevel: cfg.Database.LogLevel,
	}

	if err := database.Connect(dbConfig); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	// Initialize cache
	var cacheImpl cache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Type == "redis" {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		cacheImpl, err = cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		log.Info().Msg("Redis cache initialized")
	} else {
		cacheImpl = cache.NewMemoryCache()
		log.Info().Msg("Memory cache initialized")
	}

	// Initialize repositories
	clinicRepo := repository.NewClinicRepository()
	userRepo := repository.NewUserRepository()
	patientRepo := repository.NewPatientRepository()
	visitRepo := repository.NewVisitRepository()
	txnRepo := repository.NewTransactionRepository()
	apptRepo := repository.NewAppointmentRepository()
	invRepo := repository.NewInventoryRepository()

	// Notification providers. The log provider stands in until real SMS
	// and email gateways are configured.
	notifier := notification.NewNotifier(notification.LogProvider{}, notification.LogProvider{})

	// Initialize services
	visitService := services.NewVisitService(visitRepo, patientRepo, notifier)
	queueService := services.NewQueueService(visitRepo, cacheImpl)
	patientService := services.NewPatientService(patientRepo, visitRepo)
	paymentService := services.NewPaymentService(txnRepo, visitRepo, patientRepo, cacheImpl, notifier)
	apptService := services.NewAppointmentService(apptRepo, patientRepo, visitService, notifier)
	invService := services.NewInventoryService(invRepo)
	teamService := services.NewTeamService(userRepo, clinicRepo)
	reportService := services.NewReportService(visitRepo, apptRepo, invRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	patientHandler := handlers.NewPatientHandler(patientService)
	visitHandler := handlers.NewVisitHandler(visitService)
	queueHandler := handlers.NewQueueHandler(queueService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, cfg.Payment.WebhookSecret)
	apptHandler := handlers.NewAppointmentHandler(apptService)
	invHandler := handlers.NewInventoryHandler(invService)
	teamHandler := handlers.NewTeamHandler(teamService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints (no authentication required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Payment provider webhooks authenticate by signature, not by token
	r.Post("/webhooks/payments", paymentHandler.Webhook)

	// Clinic API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ClinicID)
		r.Use(middleware.Auth(cfg.Auth.JWTSecret))

		// Patients
		r.Post("/patients", patientHandler.Register)
		r.Get("/patients", patientHandler.List)
		r.Get("/patients/{id}", patientHandler.Get)
		r.Put("/patients/{id}", patientHandler.Update)
		r.Delete("/patients/{id}", patientHandler.Delete)
		r.Get("/patients/{id}/visits", patientHandler.Visits)

		// Visits
		r.Post("/visits", visitHandler.CheckIn)
		r.Get("/visits/{id}", visitHandler.Get)
		r.Post("/visits/{id}/transition", visitHandler.Transition)
		r.Post("/visits/{id}/complete", visitHandler.Complete)
		r.Post("/visits/{id}/vitals", visitHandler.RecordVitals)
		r.Post("/visits/{id}/consultation", visitHandler.RecordConsultation)
		r.Post("/visits/{id}/lab-orders", visitHandler.OrderLab)
		r.Post("/visits/{id}/prescription", visitHandler.Prescribe)

		// Queues
		r.Get("/queues/{stage}", queueHandler.ByStage)

		// Payments
		r.Post("/payments/initiate", paymentHandler.Initiate)
		r.Post("/payments/subscribe", paymentHandler.Subscribe)
		r.Get("/payments/transactions", paymentHandler.Transactions)

		// Appointments
		r.Post("/appointments", apptHandler.Schedule)
		r.Get("/appointments", apptHandler.List)
		r.Post("/appointments/{id}/cancel", apptHandler.Cancel)
		r.Post("/appointments/{id}/check-in", apptHandler.CheckIn)
		r.Post("/appointments/remind", apptHandler.Remind)

		// Inventory
		r.Post("/inventory", invHandler.Create)
		r.Get("/inventory", invHandler.List)
		r.Get("/inventory/low-stock", invHandler.LowStock)
		r.Post("/inventory/{id}/dispense", invHandler.Dispense)
		r.Post("/inventory/{id}/restock", invHandler.Restock)
		r.Get("/inventory/{id}/history", invHandler.History)

		// Team
		r.Post("/team/invite", teamHandler.Invite)
		r.Get("/team", teamHandler.List)
		r.Put("/team/{id}/role", teamHandler.ChangeRole)
		r.Post("/team/{id}/suspend", teamHandler.Suspend)
		r.Post("/team/{id}/deactivate", teamHandler.Deactivate)
		r.Post("/team/{id}/activate", teamHandler.Activate)
		r.Get("/clinic", teamHandler.Clinic)

		// Reports
		r.Get("/reports/stages", reportHandler.Stages)
		r.Get("/reports/revenue", reportHandler.Revenue)
		r.Get("/reports/appointments", reportHandler.Appointments)
		r.Get("/reports/low-stock", reportHandler.LowStock)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

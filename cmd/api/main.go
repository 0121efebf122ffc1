package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"

	"github.com/tresdv/nomina-api/internal/config"
	"github.com/tresdv/nomina-api/internal/database"
	"github.com/tresdv/nomina-api/internal/handlers"
	"github.com/tresdv/nomina-api/internal/jobs"
	"github.com/tresdv/nomina-api/internal/middleware"
	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"github.com/tresdv/nomina-api/internal/services"
	"github.com/tresdv/nomina-api/internal/storage"
	"github.com/tresdv/nomina-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// rateStaleAfterDays is how old the newest VES rate may get before RRHH
// is warned that liquidations will run on stale data.
const rateStaleAfterDays = 7

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Warn if Resend email is not configured
	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set. Set them in .env and ensure the From domain is verified in Resend dashboard.")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Run migrations and seed the base data (admin account, salary rules)
	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	if err := database.Seed(db); err != nil {
		logger.Error("Failed to seed database", "error", err)
		os.Exit(1)
	}
	if cfg.Environment == "development" {
		if err := database.SeedDemoRates(db); err != nil {
			logger.Error("Failed to seed demo rates", "error", err)
		}
	}

	// Initialize storage for generated documents
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/users", h.User.Index)
				admin.POST("/users", h.User.Create)

				admin.GET("/jobs/status", h.Job.Status)
			}

			// RRHH + Admin routes (payroll management)
			staff := protected.Group("")
			staff.Use(middleware.RequireRole(models.RoleAdmin, models.RoleRRHH))
			{
				// Employees
				staff.GET("/employees", h.Employee.Index)
				staff.POST("/employees", h.Employee.Create)
				staff.PUT("/employees/:employee_id", h.Employee.Update)
				staff.POST("/employees/:employee_id/terminate", h.Employee.Terminate)

				// Contracts
				staff.POST("/contracts", h.Contract.Create)
				staff.GET("/contracts/:contract_id", h.Contract.Show)
				staff.POST("/contracts/:contract_id/open", h.Contract.Open)
				staff.POST("/contracts/:contract_id/close", h.Contract.Close)

				// Payslip lifecycle
				staff.POST("/payslips", h.Payslip.Create)
				staff.POST("/payslips/:payslip_id/compute", h.Payslip.Compute)
				staff.POST("/payslips/:payslip_id/confirm", h.Payslip.Confirm)
				staff.POST("/payslips/:payslip_id/set_to_draft", h.Payslip.SetToDraft)
				staff.POST("/payslips/:payslip_id/cancel", h.Payslip.Cancel)

				// Liquidation reports
				staff.GET("/payslips/:payslip_id/liquidation", h.Liquidation.Show)
				staff.GET("/payslips/:payslip_id/liquidation_pdf", h.Liquidation.PDF)
				staff.GET("/payslips/:payslip_id/liquidation_xlsx", h.Liquidation.XLSX)

				// Batches
				staff.GET("/batches", h.Batch.Index)
				staff.POST("/batches", h.Batch.Create)
				staff.GET("/batches/:batch_id", h.Batch.Show)
				staff.POST("/batches/:batch_id/compute_all", h.Batch.ComputeAll)
				staff.POST("/batches/:batch_id/close", h.Batch.Close)
				staff.POST("/batches/:batch_id/cancel", h.Batch.Cancel)
				staff.POST("/batches/:batch_id/reopen", h.Batch.Reopen)
				staff.GET("/batches/:batch_id/export_csv", h.Batch.ExportCSV)
				staff.GET("/batches/:batch_id/export_xlsx", h.Batch.ExportXLSX)

				// Exchange rates
				staff.GET("/rates", h.Rate.Index)
				staff.POST("/rates", h.Rate.Create)
				staff.GET("/rates/export_csv", h.Rate.ExportCSV)

				// Audit logs
				staff.GET("/audits", h.Audit.Index)
			}

			// Employee data (staff, or the empleado's own record)
			employeeData := protected.Group("/employees/:employee_id")
			employeeData.Use(middleware.RequireStaffOrSelfEmployee())
			{
				employeeData.GET("", h.Employee.Show)
				employeeData.GET("/contracts", h.Employee.Contracts)
			}

			// Payslip viewing (empleado accounts are scoped in the handler)
			protected.GET("/payslips", h.Payslip.Index)
			protected.GET("/payslips/:payslip_id", h.Payslip.Show)
			protected.GET("/payslips/:payslip_id/receipt_pdf", h.Payslip.ReceiptPDF)

			// User profile and password
			protected.GET("/users/:user_id", middleware.RequireAdminOrOwner(), h.User.Show)
			protected.PATCH("/users/:user_id/change_password", h.User.ChangePassword)

			// Notifications (users manage their own)
			// Static route first so "mark_all_as_read" is not matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
				notifications.POST("/:notification_id/mark_as_read", h.Notification.MarkAsRead)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	// Warn RRHH daily when the VES rate history has gone stale
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Checking exchange rate freshness...")
		days, err := svcs.Rate.StaleDays(ctx, cfg.DisplayCurrency)
		if err != nil {
			return err
		}
		if days < 0 {
			return svcs.Notification.NotifyAdmins(ctx,
				"Sin tasas de cambio",
				"No hay tasas de cambio registradas para "+cfg.DisplayCurrency+". Los reportes de liquidación se emitirán en USD.",
				models.NotificationTypeRateStale)
		}
		if days > rateStaleAfterDays {
			return svcs.Notification.NotifyAdmins(ctx,
				"Tasa de cambio desactualizada",
				"La última tasa registrada para "+cfg.DisplayCurrency+" tiene más de "+strconv.Itoa(days)+" días.",
				models.NotificationTypeRateStale)
		}
		return nil
	})

	// Purge read notifications older than 90 days
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Cleaning up old notifications...")
		deleted, err := svcs.Notification.CleanupOld(ctx, 90)
		if err != nil {
			return err
		}
		if deleted > 0 {
			logger.Info("Deleted old notifications", "count", deleted)
		}
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}

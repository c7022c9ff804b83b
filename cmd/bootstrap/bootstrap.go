package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-management/config"
	"clinic-management/internal/delivery/dto"
	deliveryHttp "clinic-management/internal/delivery/http"
	"clinic-management/internal/delivery/http/handler"
	"clinic-management/internal/delivery/http/middleware"
	"clinic-management/internal/infrastructure/cache"
	"clinic-management/internal/infrastructure/database"
	"clinic-management/internal/infrastructure/storage"
	"clinic-management/internal/observability/metrics"
	"clinic-management/internal/repository"
	"clinic-management/internal/service"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/jwt"
	"clinic-management/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	authUsecase  usecase.AuthUsecase
	validator    *validator.CustomValidator
	ledgerLocker *service.LedgerLocker
	rateLimiter  *middleware.IPRateLimiter
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	SetupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.IsDevelopment())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	redisClient, err := cache.NewRedisClient(pingCtx, cfg.Redis)
	cancel()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.RedisClient = redisClient

	// Initialize all layers
	if err := app.initializeServer(context.Background()); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// SetupLogger configures the logrus logger
func SetupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer(ctx context.Context) error {
	cfg := app.Config
	db := app.DB
	redisClient := app.RedisClient

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()
	app.validator = customValidator

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	patientRepo := repository.NewPatientRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	paymentRepo := repository.NewPaymentRepository()
	prescriptionRepo := repository.NewPrescriptionRepository()
	labResultRepo := repository.NewLabResultRepository()
	reportRepo := repository.NewReportRepository()

	// Initialize services
	app.ledgerLocker = service.NewLedgerLocker(log, cfg.Ledger.LockStaleAfter)
	ledgerService := service.NewLedgerService(appointmentRepo, log)
	serialService := service.NewSerialNumberService(redisClient, log)

	var s3Client service.S3API
	if cfg.Storage.Bucket != "" {
		client, err := storage.NewS3Client(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s3Client = client
		logrus.Infof("Lab result uploads stored in bucket %s", cfg.Storage.Bucket)
	} else {
		logrus.Warn("S3_BUCKET is not set, lab result file uploads are disabled")
	}
	labFileService := service.NewLabFileService(s3Client, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL, log)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, roleRepo, jwtService, redisClient)
	app.authUsecase = authUsecase
	patientUsecase := usecase.NewPatientUsecase(db, log, patientRepo, appointmentRepo)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, patientRepo, appointmentRepo, paymentRepo,
		prescriptionRepo, labResultRepo, serialService, app.ledgerLocker)
	paymentUsecase := usecase.NewPaymentUsecase(db, log, paymentRepo, patientRepo, ledgerService, app.ledgerLocker, ledgerMetrics)
	prescriptionUsecase := usecase.NewPrescriptionUsecase(db, log, prescriptionRepo, patientRepo, appointmentRepo)
	labResultUsecase := usecase.NewLabResultUsecase(db, log, labResultRepo, patientRepo, appointmentRepo,
		labFileService, app.ledgerLocker)
	reportUsecase := usecase.NewReportUsecase(db, log, reportRepo, appointmentRepo)

	// Initialize middleware
	app.rateLimiter = middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)

	// Initialize router
	router := deliveryHttp.NewRouter(deliveryHttp.RouterDeps{
		AuthHandler:         handler.NewAuthHandler(authUsecase, customValidator),
		PatientHandler:      handler.NewPatientHandler(patientUsecase, customValidator),
		AppointmentHandler:  handler.NewAppointmentHandler(appointmentUsecase, customValidator),
		PaymentHandler:      handler.NewPaymentHandler(paymentUsecase, customValidator),
		PrescriptionHandler: handler.NewPrescriptionHandler(prescriptionUsecase, customValidator),
		LabResultHandler:    handler.NewLabResultHandler(labResultUsecase, customValidator),
		ReportHandler:       handler.NewReportHandler(reportUsecase, customValidator),
		AuthMiddleware:      middleware.NewAuthMiddleware(jwtService, redisClient),
		CORSMiddleware:      middleware.NewCORSMiddleware(cfg.App.CORSOrigins...),
		MetricsMiddleware:   middleware.NewMetricsMiddleware(httpMetrics),
		AuthRateLimiter:     app.rateLimiter,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

// RegisterStaff validates and creates a staff account outside of HTTP, used
// to seed the first administrator.
func (app *App) RegisterStaff(ctx context.Context, req *dto.RegisterStaffRequest) (*dto.UserResponse, error) {
	if err := app.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("invalid account: %v", app.validator.FormatValidationErrors(err))
	}
	return app.authUsecase.RegisterStaff(ctx, req)
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close stops background workers and closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.ledgerLocker != nil {
		app.ledgerLocker.Stop()
	}
	if app.rateLimiter != nil {
		app.rateLimiter.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sameerjoshi/docsimus-physicians-sub001/config"
	deliveryHttp "github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/http"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/http/handler"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/delivery/http/middleware"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/workflow"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/infrastructure/cache"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/infrastructure/database"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/infrastructure/storage"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/repository"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/service"
	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/usecase"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/jwt"
	"github.com/sameerjoshi/docsimus-physicians-sub001/pkg/validator"

	"github.com/fsnotify/fsnotify"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Options are the command line choices that shape startup.
type Options struct {
	ConfigPath  string
	MigrateOnly bool
}

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Policy      *workflow.PolicyHolder
	Notifier    *service.Dispatcher
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New(opts Options) (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	log := setupLogger(cfg.App.LogLevel)
	app.Log = log
	log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.WithField("driver", cfg.DB.Driver).Info("Database connected successfully")

	if cfg.DB.AutoMigrate || opts.MigrateOnly {
		if err := database.Migrate(cfg.DB, db, log); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		if err := seedRoles(db, log); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to seed roles: %w", err)
		}
	}
	if opts.MigrateOnly {
		return app, nil
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	// Initialize document storage
	fileStore, err := storage.NewDiskFileStore(cfg.Upload.Dir)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	// Workflow policy, swapped when the config file changes
	app.Policy = workflow.NewPolicyHolder(policyFrom(cfg.Onboarding))
	cfg.WatchOnboarding(func(onboarding config.OnboardingConfig, op fsnotify.Op) {
		policy := policyFrom(onboarding)
		app.Policy.Store(policy)
		log.WithFields(logrus.Fields{
			"op":                op.String(),
			"min_documents":     app.Policy.Policy().MinDocuments,
			"verification_mode": app.Policy.Policy().VerificationMode,
		}).Info("Onboarding policy reloaded")
	})

	// Initialize all layers
	app.Notifier = newNotifier(cfg, log, redisClient)
	app.Server = initializeServer(cfg, log, db, redisClient, fileStore, app.Policy, app.Notifier)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func seedRoles(db *gorm.DB, log *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	roleRepo := repository.NewRoleRepository()
	if err := roleRepo.EnsureDefaults(ctx, db); err != nil {
		return err
	}
	roles, err := roleRepo.FindAll(ctx, db)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.RoleName)
	}
	log.WithField("roles", names).Info("Roles ready")
	return nil
}

func policyFrom(cfg config.OnboardingConfig) workflow.Policy {
	return workflow.Policy{
		MinDocuments:     cfg.MinDocuments,
		VerificationMode: workflow.ParseVerificationMode(cfg.VerificationMode),
	}.Normalize()
}

// newNotifier fans events out to the log, the Redis stream and, when
// enabled, email. SMTP is detached so a slow mail server never delays a
// response.
func newNotifier(cfg *config.Config, log *logrus.Logger, redisClient *redis.Client) *service.Dispatcher {
	dispatcher := service.NewDispatcher(log,
		service.NewLogNotifier(log),
		service.NewRedisStreamNotifier(redisClient, cfg.Notify.Stream),
	)
	if cfg.Notify.EmailEnabled {
		dispatcher.Detach(service.NewEmailNotifier(cfg.SMTP))
	}
	return dispatcher
}

// initializeServer creates and configures the HTTP server
func initializeServer(
	cfg *config.Config,
	log *logrus.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	fileStore storage.FileStore,
	policy workflow.PolicyProvider,
	notifier service.Notifier,
) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	applicationRepo := repository.NewApplicationRepository()
	slotRepo := repository.NewDocumentSlotRepository()
	componentRepo := repository.NewComponentRepository()
	commentRepo := repository.NewCommentRepository()
	assignmentRepo := repository.NewAssignmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	authz := service.NewAuthorizer()
	auditService := service.NewAuditService(log, auditLogRepo)
	tokenStore := service.NewRedisTokenStore(redisClient)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, authz, auditService, tokenStore, jwtService, userRepo, roleRepo, applicationRepo, slotRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, authz, auditLogRepo)
	onboarding := usecase.NewWorkflow(
		usecase.NewApplicationUsecase(db, log, authz, policy, auditService, notifier, applicationRepo, slotRepo, componentRepo, assignmentRepo, auditLogRepo),
		usecase.NewDocumentUsecase(db, log, authz, auditService, fileStore, cfg.Upload.MaxBytes, applicationRepo, slotRepo),
		usecase.NewReviewUsecase(db, log, authz, auditService, applicationRepo, componentRepo, commentRepo, assignmentRepo),
		usecase.NewAssignmentUsecase(db, log, authz, auditService, notifier, applicationRepo, assignmentRepo, userRepo),
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, jwtService)
	applicationHandler := handler.NewApplicationHandler(onboarding, cfg.Upload.MaxBytes)
	reviewHandler := handler.NewReviewHandler(onboarding, customValidator)
	adminHandler := handler.NewAdminHandler(authUsecase, onboarding, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins)

	// Initialize router
	router := deliveryHttp.NewRouter(authHandler, applicationHandler, reviewHandler, adminHandler, auditLogHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
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

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Let queued emails go out before the connections close
	if app.Notifier != nil {
		app.Notifier.Wait()
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
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

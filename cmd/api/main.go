package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/careerquest-team/careerquest-backend/pkg/validator"

	"github.com/careerquest-team/careerquest-backend/internal/adapter/handler"
	"github.com/careerquest-team/careerquest-backend/internal/adapter/repository"
	"github.com/careerquest-team/careerquest-backend/internal/infrastructure/cache"
	"github.com/careerquest-team/careerquest-backend/internal/infrastructure/database"
	aiUsecase "github.com/careerquest-team/careerquest-backend/internal/usecase/ai"
	meetingUsecase "github.com/careerquest-team/careerquest-backend/internal/usecase/meeting"
	pkgai "github.com/careerquest-team/careerquest-backend/pkg/ai"
	"github.com/careerquest-team/careerquest-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Applying schema migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize the per-meeting locker. Redis gives cross-process
	// serialization; a single-node deployment without Redis falls back to the
	// in-process locker.
	log.Println("📦 Connecting to Redis...")
	var locks meetingUsecase.Locker
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Printf("⚠️  Redis unavailable (%v), falling back to in-process meeting locks", err)
		locks = meetingUsecase.NewKeyedMutex()
	} else {
		defer redisClient.Close()
		locks = cache.NewRedisLocker(redisClient, cfg.Engine.LockTTL)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)

	// Initialize dialogue generation
	log.Println("🤖 Initializing dialogue components...")
	groqClient := pkgai.NewGroqClient(&cfg.Groq)
	dialogueService := aiUsecase.NewDialogueService(groqClient, logger)

	// Initialize meeting service
	log.Println("🗓️  Initializing meeting service...")
	meetingService := meetingUsecase.NewMeetingService(
		meetingRepo,
		dialogueService,
		meetingUsecase.NewCompletionPolicy(),
		locks,
		logger,
		cfg.Engine.RequireTopicDepth,
	)

	// Initialize meeting handler
	log.Println("🚀 Initializing meeting handler...")
	meetingHandler := handler.NewMeetingHandler(meetingService, logger)
	log.Println("✅ Meeting handler initialized successfully")

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, meetingHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

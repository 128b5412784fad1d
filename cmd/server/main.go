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

	"github.com/onegreenvn/student-campaigns-backend/docs"
	"github.com/onegreenvn/student-campaigns-backend/internal/config"
	"github.com/onegreenvn/student-campaigns-backend/internal/database"
	"github.com/onegreenvn/student-campaigns-backend/internal/database/repository"
	"github.com/onegreenvn/student-campaigns-backend/internal/lifecycle"
	"github.com/onegreenvn/student-campaigns-backend/internal/router"
	"github.com/onegreenvn/student-campaigns-backend/internal/services"
	"github.com/onegreenvn/student-campaigns-backend/internal/services/auth"
	"github.com/onegreenvn/student-campaigns-backend/internal/services/excel"
	"github.com/onegreenvn/student-campaigns-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set Swagger base path dynamically
	docs.SwaggerInfo.BasePath = cfg.Server.BasePath

	configureLogging(cfg.Server.LogLevel)

	if err := utils.InitSentry(cfg.Sentry); err != nil {
		logrus.Fatalf("Failed to initialize Sentry: %v", err)
	}
	defer utils.FlushSentry()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	lifecycleStore := repository.NewLifecycleStore(db)

	authService := auth.NewAuthService(userRepo, refreshTokenRepo, cfg.Auth)
	if cfg.Admin.Username != "" && cfg.Admin.Password != "" {
		if err := authService.EnsureAdminUser(cfg.Admin.Username, cfg.Admin.Password); err != nil {
			logrus.Warnf("Failed to create admin user: %v", err)
		} else {
			logrus.Info("Admin user check completed")
		}
	}

	// Lifecycle events go to RabbitMQ when configured
	var publisher services.EventPublisher = services.NoopPublisher{}
	if cfg.RabbitMQ.Host != "" {
		rabbitMQService, err := services.NewRabbitMQService(cfg.RabbitMQ)
		if err != nil {
			logrus.Warnf("Failed to initialize RabbitMQ, lifecycle events will not be published: %v", err)
		} else {
			logrus.Info("RabbitMQ service initialized")
			defer rabbitMQService.Close()
			publisher = rabbitMQService
		}
	}

	policy := lifecycle.TimelinePolicy{StrictWindowOrdering: cfg.Lifecycle.StrictWindowOrdering}
	campaignService := services.NewCampaignService(lifecycleStore, policy, time.Now)
	svc := router.Services{
		Auth:          authService,
		Campaign:      campaignService,
		Eligibility:   services.NewEligibilityService(lifecycleStore, time.Now),
		Participation: services.NewParticipationService(lifecycleStore, publisher, time.Now),
		Submission:    services.NewSubmissionService(lifecycleStore, publisher, time.Now),
		Excel:         excel.NewExcelService(lifecycleStore),
	}

	scheduler, err := services.NewScheduler(cfg.Scheduler, campaignService, auth.NewTokenCleanupService(refreshTokenRepo))
	if err != nil {
		logrus.Fatalf("Failed to initialize scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logrus.Warnf("Failed to stop scheduler: %v", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(cfg.Server, svc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		logrus.Infof("Server starting on port %s", cfg.Server.Port)
		logrus.Infof("API Health Check: http://localhost:%s%s/health", cfg.Server.Port, cfg.Server.BasePath)
		logrus.Infof("Swagger UI: http://localhost:%s/swagger/index.html", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}

func configureLogging(logLevel string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

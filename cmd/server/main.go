package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bakery/internal/config"
	"bakery/internal/database"
	"bakery/internal/handlers"
	"bakery/internal/hub"
	"bakery/internal/jobs"
	"bakery/internal/migrations"
	"bakery/internal/redis"
	"bakery/internal/repository"
	"bakery/internal/services"
	"bakery/pkg/telegram"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run owns every resource it opens, so all deferred cleanup has happened by
// the time it returns.
func run(cfg *config.Config, logger *slog.Logger) error {
	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("initialize redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize Telegram client
	telegramClient := telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramBotToken)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize hub and relay
	chefHub := hub.New(logger)

	notificationService := services.NewNotificationService(telegramClient, notificationRepo, services.NotificationConfig{
		AdminChatID: cfg.TelegramAdminChatID,
		QueueSize:   cfg.NotifyQueueSize,
		Workers:     cfg.NotifyWorkers,
		SendTimeout: time.Duration(cfg.NotifyTimeout) * time.Second,
	}, logger)
	if cfg.TelegramBotToken == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN is empty, notifications will fail to send")
	}
	notificationService.Start()
	defer notificationService.Stop()

	// Initialize services
	authService := services.NewAuthService(userRepo, redisClient, time.Duration(cfg.SessionTimeout)*time.Second)
	coordinator := services.NewStatusCoordinator(orderRepo, chefHub, notificationService, logger)
	orderService := services.NewOrderService(orderRepo, productRepo, chefHub, notificationService, logger)

	if cfg.SeedDefaultUsers {
		err := migrations.CreateDefaultData(context.Background(), authService, productRepo, migrations.SeedOptions{
			AdminPassword: cfg.SeedAdminPassword,
			ChefPassword:  cfg.SeedChefPassword,
		}, logger)
		if err != nil {
			logger.Warn("failed to create default data", "error", err)
		}
	}

	// Scheduled jobs
	digestJob := jobs.NewDailyDigestJob(orderRepo, notificationService, cfg.DigestSchedule, logger)
	if err := digestJob.Start(); err != nil {
		return fmt.Errorf("start daily digest job: %w", err)
	}
	defer digestJob.Stop()

	// Setup routes
	if strings.ToLower(cfg.LogLevel) != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterDeps{
		AuthService:  authService,
		OrderService: orderService,
		Coordinator:  coordinator,
		Hub:          chefHub,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop <- syscall.SIGTERM
		}
	}()

	<-stop
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	stats := chefHub.Stats()
	logger.Info("server stopped", "delivered_frames", stats.Delivered, "dropped_frames", stats.Dropped)
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

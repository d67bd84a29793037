package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/config"
	"github.com/kcalbot/kcalbot-backend/internal/database"
	"github.com/kcalbot/kcalbot-backend/internal/handlers"
	"github.com/kcalbot/kcalbot-backend/internal/migrations"
	"github.com/kcalbot/kcalbot-backend/internal/routes"
	"github.com/kcalbot/kcalbot-backend/internal/services"
	"github.com/kcalbot/kcalbot-backend/pkg/logger"
)

const initDataMaxAge = 24 * time.Hour

func main() {
	// 0. Load Config & Initialize Logger
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Env, cfg.LogLevel)

	loc := cfg.Location()
	logger.Info().Str("environment", cfg.Env).Str("timezone", loc.String()).Msg("Starting kcalbot backend...")

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		logger.Fatal().Msg("JWT_SECRET is required")
	}

	// 1. Connect Database
	database.Connect()
	database.InitRedis()

	logger.Info().Msg("🔄 Running Database Migrations...")
	if err := migrations.AutoMigrate(database.DB); err != nil {
		logger.Fatal().Err(err).Msg("Database migration failed")
	}
	logger.Info().Msg("✅ Database Migrations Complete")

	// 2. Services
	clock := clockwork.NewRealClock()
	llm := services.NewLLMClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)

	nutrition := services.NewNutritionService(database.DB, loc)
	badges := services.NewBadgeService(database.DB)
	gamification := services.NewGamificationService(database.DB, badges, nutrition, clock)
	leaderboardCache := services.NewTTLCache[string, []services.LeaderboardEntry](clock, services.LeaderboardTTL)

	h := &handlers.Handler{
		DB:           database.DB,
		Users:        services.NewUserService(database.DB, gamification, clock),
		Meals:        services.NewMealService(database.DB, gamification, llm, clock, loc),
		Nutrition:    nutrition,
		Gamification: gamification,
		Badges:       badges,
		Leaderboard:  services.NewLeaderboardService(database.DB, clock, leaderboardCache),
		Reports:      services.NewReportCardService(database.DB, nutrition, llm, clock),
		Social:       services.NewSocialService(database.DB, badges, clock),
		Health:       database.Health{},
		Clock:        clock,
		BotToken:     cfg.TelegramBotToken,
		InitDataTTL:  initDataMaxAge,
	}

	photos, err := services.NewPhotoStore(context.Background(), services.PhotoStoreConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		Bucket:          cfg.R2BucketName,
		PublicURL:       cfg.R2PublicURL,
	})
	switch {
	case errors.Is(err, services.ErrPhotoStorageDisabled):
		logger.Warn().Msg("R2 is not configured, meal photo uploads are disabled")
	case err != nil:
		logger.Fatal().Err(err).Msg("Failed to init photo storage")
	default:
		h.Photos = photos
	}

	// 3. Reminder scheduler
	var scheduler *services.ReminderScheduler
	if cfg.RemindersEnabled && cfg.TelegramBotToken != "" {
		var ledger services.ReminderLedger
		if database.Redis != nil {
			ledger = services.NewRedisReminderLedger(database.Redis)
		} else {
			ledger = services.NewMemoryReminderLedger(clock, 24*time.Hour)
		}

		scheduler = services.NewReminderScheduler(
			database.DB,
			nutrition,
			services.NewTelegramMessenger(cfg.TelegramAPIURL, cfg.TelegramBotToken),
			ledger,
			clock,
			cfg.ReminderInterval,
		)
		if err := scheduler.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start reminder scheduler")
		}
	} else {
		logger.Warn().Msg("Reminders disabled")
	}

	// 4. Start Server with graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routes.Setup(h, cfg.FrontendURL),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // report cards wait on the LLM
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("🛑 Shutting down server gracefully...")

	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			logger.Error().Err(err).Msg("Reminder scheduler shutdown failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("✅ Server exited gracefully")
}

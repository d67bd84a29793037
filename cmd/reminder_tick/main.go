package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/config"
	"github.com/kcalbot/kcalbot-backend/internal/database"
	"github.com/kcalbot/kcalbot-backend/internal/services"
	"github.com/kcalbot/kcalbot-backend/pkg/logger"
)

// Runs a single reminder tick for the current minute and prints the report.
// Claims go through Redis when it is reachable, so a tick already handled
// by the server is not sent twice.
func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Env, cfg.LogLevel)

	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	database.Connect()
	database.InitRedis()

	clock := clockwork.NewRealClock()
	var ledger services.ReminderLedger = services.NewMemoryReminderLedger(clock, 24*time.Hour)
	if database.Redis != nil {
		ledger = services.NewRedisReminderLedger(database.Redis)
	}

	scheduler := services.NewReminderScheduler(
		database.DB,
		services.NewNutritionService(database.DB, cfg.Location()),
		services.NewTelegramMessenger(cfg.TelegramAPIURL, cfg.TelegramBotToken),
		ledger,
		clock,
		cfg.ReminderInterval,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	report := scheduler.Tick(ctx)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal(err)
	}
}

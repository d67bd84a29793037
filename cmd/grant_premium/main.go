package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kcalbot/kcalbot-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Extends a user's premium subscription by the given number of days.
func main() {
	telegramID := flag.Int64("telegram-id", 0, "Telegram user id")
	days := flag.Int("days", 30, "days of premium to add")
	flag.Parse()

	if *telegramID == 0 {
		log.Fatal("-telegram-id is required")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=kcalbot port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	var user models.User
	if err := db.Where("telegram_id = ?", *telegramID).First(&user).Error; err != nil {
		log.Fatalf("User with Telegram id %d not found: %v", *telegramID, err)
	}

	// Extend from the current expiry if it is still active
	start := time.Now().UTC()
	if user.IsPremium(start) {
		start = *user.PremiumUntil
	}
	until := start.AddDate(0, 0, *days)

	if err := db.Model(&user).Update("premium_until", until).Error; err != nil {
		log.Fatalf("Failed to update premium: %v", err)
	}

	fmt.Printf("Premium for %s (%d) now runs until %s.\n", user.Username, user.TelegramID, until.Format(time.RFC3339))
}

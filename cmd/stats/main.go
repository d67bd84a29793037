package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kcalbot/kcalbot-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Prints row counts for a quick look at a database.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=kcalbot port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	var users, premium, pendingMeals, confirmedMeals, badges, xpEvents int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.User{}).Where("premium_until > ?", time.Now().UTC()).Count(&premium)
	db.Model(&models.Meal{}).Where("status = ?", models.MealStatusPending).Count(&pendingMeals)
	db.Model(&models.Meal{}).Where("status = ?", models.MealStatusConfirmed).Count(&confirmedMeals)
	db.Model(&models.UserBadge{}).Count(&badges)
	db.Model(&models.XPEvent{}).Count(&xpEvents)

	fmt.Printf("Users:           %d (premium %d)\n", users, premium)
	fmt.Printf("Meals:           %d confirmed, %d pending\n", confirmedMeals, pendingMeals)
	fmt.Printf("Badges unlocked: %d\n", badges)
	fmt.Printf("XP events:       %d\n", xpEvents)

	// Reminder deliveries per category over the last day
	type row struct {
		Category string
		Total    int64
	}
	var rows []row
	db.Model(&models.ReminderDelivery{}).
		Select("category, COUNT(*) AS total").
		Where("sent_at >= ?", time.Now().Add(-24*time.Hour).UTC()).
		Group("category").
		Scan(&rows)
	fmt.Println("Reminders sent (24h):")
	for _, r := range rows {
		fmt.Printf("  %-16s %d\n", r.Category, r.Total)
	}
}

package main

import (
	"context"
	"flag"
	"log"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/config"
	"github.com/kcalbot/kcalbot-backend/internal/database"
	"github.com/kcalbot/kcalbot-backend/internal/migrations"
	"github.com/kcalbot/kcalbot-backend/internal/seeds"
	"github.com/kcalbot/kcalbot-backend/internal/services"
)

func main() {
	days := flag.Int("days", 6, "days of meal history to seed")
	flag.Parse()

	config.LoadConfig()
	database.Connect()
	loc := config.AppConfig.Location()

	log.Println("🔄 Running migrations (just in case)...")
	if err := migrations.AutoMigrate(database.DB); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	ctx := context.Background()
	clock := clockwork.NewRealClock()
	nutrition := services.NewNutritionService(database.DB, loc)
	badges := services.NewBadgeService(database.DB)
	gamification := services.NewGamificationService(database.DB, badges, nutrition, clock)
	users := services.NewUserService(database.DB, gamification, clock)
	social := services.NewSocialService(database.DB, badges, clock)

	seeded, err := seeds.SeedDemoUsers(ctx, database.DB, users, social)
	if err != nil {
		log.Fatalf("❌ Failed to seed users: %v", err)
	}

	for _, user := range seeded {
		if err := seeds.SeedMealHistory(ctx, database.DB, user, loc, *days); err != nil {
			log.Fatalf("❌ Failed to seed meals for %s: %v", user.Username, err)
		}
	}

	log.Println("✅ Seeding Complete!")
}

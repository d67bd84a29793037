package seeds

import (
	"context"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/kcalbot/kcalbot-backend/internal/services"
	"gorm.io/gorm"
)

type demoMeal struct {
	hour  int
	name  string
	items []services.MealItemInput
}

var demoMenu = []demoMeal{
	{hour: 8, name: "Oatmeal with berries", items: []services.MealItemInput{
		{Name: "Oatmeal", Grams: 200, Calories: 210, Protein: 7, Carbs: 36, Fat: 4},
		{Name: "Blueberries", Grams: 80, Calories: 46, Protein: 0.6, Carbs: 11.6, Fat: 0.3},
	}},
	{hour: 13, name: "Chicken salad", items: []services.MealItemInput{
		{Name: "Grilled chicken breast", Grams: 150, Calories: 248, Protein: 46.5, Carbs: 0, Fat: 5.4},
		{Name: "Mixed greens", Grams: 100, Calories: 20, Protein: 1.5, Carbs: 3.5, Fat: 0.2},
		{Name: "Olive oil dressing", Grams: 15, Calories: 120, Protein: 0, Carbs: 0.5, Fat: 13.5},
	}},
	{hour: 19, name: "Salmon with rice", items: []services.MealItemInput{
		{Name: "Baked salmon", Grams: 140, Calories: 290, Protein: 31, Carbs: 0, Fat: 18},
		{Name: "White rice", Grams: 180, Calories: 234, Protein: 4.9, Carbs: 51, Fat: 0.5},
	}},
}

// SeedMealHistory replays days of confirmed meals ending yesterday. Each
// meal runs through the real confirm path on a fake clock, so streaks, XP
// and badges come out the way production would compute them.
func SeedMealHistory(ctx context.Context, db *gorm.DB, user *models.User, loc *time.Location, days int) error {
	log.Printf("🍽️  Seeding %d days of meals for %s...", days, user.Username)

	var existing int64
	if err := db.WithContext(ctx).Model(&models.Meal{}).Where("user_id = ?", user.ID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		log.Printf("   ⏭️  %s already has %d meals, skipping", user.Username, existing)
		return nil
	}

	firstDay := services.StartOfDay(time.Now(), loc).AddDate(0, 0, -days)
	clock := clockwork.NewFakeClockAt(firstDay)

	nutrition := services.NewNutritionService(db, loc)
	badges := services.NewBadgeService(db)
	gamification := services.NewGamificationService(db, badges, nutrition, clock)
	meals := services.NewMealService(db, gamification, nil, clock, loc)

	for d := 0; d < days; d++ {
		day := firstDay.AddDate(0, 0, d)
		for _, m := range demoMenu {
			eatenAt := day.Add(time.Duration(m.hour) * time.Hour)
			clock.Advance(eatenAt.Sub(clock.Now()))

			meal, err := meals.CreatePending(ctx, user.ID, services.MealInput{
				Name:    m.name,
				Items:   m.items,
				EatenAt: &eatenAt,
				Source:  models.MealSourceText,
			})
			if err != nil {
				return err
			}
			if _, _, err := meals.Confirm(ctx, user.ID, meal.ID); err != nil {
				return err
			}
		}
	}

	log.Printf("   ✅ %d meals confirmed", days*len(demoMenu))
	return nil
}

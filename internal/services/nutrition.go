package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kcalbot/kcalbot-backend/internal/models"
	"gorm.io/gorm"
)

// DailyStats is the confirmed-meal total for one calendar day.
type DailyStats struct {
	Date      string  `json:"date"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	MealCount int     `json:"mealCount"`
}

// NutritionService aggregates confirmed meals. It never writes.
type NutritionService struct {
	db  *gorm.DB
	loc *time.Location
}

func NewNutritionService(db *gorm.DB, loc *time.Location) *NutritionService {
	return &NutritionService{db: db, loc: loc}
}

func (s *NutritionService) Location() *time.Location {
	return s.loc
}

func (s *NutritionService) dayBounds(day time.Time) (time.Time, time.Time) {
	start := StartOfDay(day, s.loc)
	return start, start.AddDate(0, 0, 1)
}

func (s *NutritionService) confirmed(ctx context.Context, userID string, from, to time.Time) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Meal{}).
		Where("user_id = ? AND status = ? AND eaten_at >= ? AND eaten_at < ?",
			userID, models.MealStatusConfirmed, from.UTC(), to.UTC())
}

// DailyStats sums the confirmed meals of day's calendar day.
func (s *NutritionService) DailyStats(ctx context.Context, userID string, day time.Time) (DailyStats, error) {
	start, end := s.dayBounds(day)

	var row struct {
		Calories  float64
		Protein   float64
		Carbs     float64
		Fat       float64
		MealCount int
	}
	err := s.confirmed(ctx, userID, start, end).
		Select("COALESCE(SUM(calories), 0) AS calories, COALESCE(SUM(protein), 0) AS protein, " +
			"COALESCE(SUM(carbs), 0) AS carbs, COALESCE(SUM(fat), 0) AS fat, COUNT(*) AS meal_count").
		Scan(&row).Error
	if err != nil {
		return DailyStats{}, fmt.Errorf("daily stats: %w", err)
	}

	return DailyStats{
		Date:      start.Format(dayLayout),
		Calories:  row.Calories,
		Protein:   row.Protein,
		Carbs:     row.Carbs,
		Fat:       row.Fat,
		MealCount: row.MealCount,
	}, nil
}

// WeeklyStats returns seven entries ending at endDay, oldest first. Days
// without meals are present and zeroed.
func (s *NutritionService) WeeklyStats(ctx context.Context, userID string, endDay time.Time) ([]DailyStats, error) {
	lastStart, end := s.dayBounds(endDay)
	start := lastStart.AddDate(0, 0, -6)

	var meals []models.Meal
	if err := s.confirmed(ctx, userID, start, end).
		Select("eaten_at", "calories", "protein", "carbs", "fat").
		Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("weekly stats: %w", err)
	}

	week := make([]DailyStats, 7)
	index := make(map[string]int, 7)
	for i := range week {
		key := start.AddDate(0, 0, i).Format(dayLayout)
		week[i] = DailyStats{Date: key}
		index[key] = i
	}

	for _, m := range meals {
		i, ok := index[DayKey(m.EatenAt, s.loc)]
		if !ok {
			continue
		}
		week[i].Calories += m.Calories
		week[i].Protein += m.Protein
		week[i].Carbs += m.Carbs
		week[i].Fat += m.Fat
		week[i].MealCount++
	}
	return week, nil
}

// MealsForDay lists the confirmed meals of day with their items.
func (s *NutritionService) MealsForDay(ctx context.Context, userID string, day time.Time) ([]models.Meal, error) {
	start, end := s.dayBounds(day)
	var meals []models.Meal
	err := s.confirmed(ctx, userID, start, end).
		Preload("Items").
		Order("eaten_at ASC").
		Find(&meals).Error
	return meals, err
}

// HasConfirmedMealBetween reports whether any confirmed meal has from <= eatenAt < to.
func (s *NutritionService) HasConfirmedMealBetween(ctx context.Context, userID string, from, to time.Time) (bool, error) {
	var count int64
	if err := s.confirmed(ctx, userID, from, to).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ConfirmedMealCount is the lifetime number of confirmed meals.
func (s *NutritionService) ConfirmedMealCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Meal{}).
		Where("user_id = ? AND status = ?", userID, models.MealStatusConfirmed).
		Count(&count).Error
	return count, err
}

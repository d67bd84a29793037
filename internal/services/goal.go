package services

import (
	"math"

	"github.com/kcalbot/kcalbot-backend/internal/models"
)

const (
	minDailyGoal  = 1200
	loseDeficit   = 500
	gainSurplus   = 300
	goalRoundStep = 10
)

var activityFactors = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// BMR is the Mifflin-St Jeor resting energy estimate in kcal.
func BMR(gender models.Gender, weightKg, heightCm float64, age int) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == models.GenderFemale {
		return bmr - 161
	}
	return bmr + 5
}

// CalculateDailyGoal derives a calorie target from the body profile. It
// reports false when the profile is incomplete and the stored goal should
// be kept.
func CalculateDailyGoal(u *models.User) (int, bool) {
	if u.Weight <= 0 || u.Height <= 0 || u.Age <= 0 {
		return 0, false
	}

	factor, ok := activityFactors[u.ActivityLevel]
	if !ok {
		factor = activityFactors["sedentary"]
	}
	tdee := BMR(u.Gender, u.Weight, u.Height, u.Age) * factor

	switch u.Goal {
	case models.GoalLose:
		tdee -= loseDeficit
	case models.GoalGain:
		tdee += gainSurplus
	}

	goal := int(math.Round(tdee/goalRoundStep) * goalRoundStep)
	if goal < minDailyGoal {
		goal = minDailyGoal
	}
	return goal, true
}

// ValidActivityLevel reports whether level is a known activity factor key.
func ValidActivityLevel(level string) bool {
	_, ok := activityFactors[level]
	return ok
}

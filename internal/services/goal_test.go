package services

import (
	"testing"

	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBMR(t *testing.T) {
	assert.InDelta(t, 1780.0, BMR(models.GenderMale, 80, 180, 30), 0.001)
	assert.InDelta(t, 1345.25, BMR(models.GenderFemale, 60, 165, 25), 0.001)
}

func TestCalculateDailyGoal(t *testing.T) {
	tests := []struct {
		name string
		user models.User
		want int
		ok   bool
	}{
		{
			name: "male moderate losing",
			user: models.User{Gender: models.GenderMale, Weight: 80, Height: 180, Age: 30, ActivityLevel: "moderate", Goal: models.GoalLose},
			want: 2260,
			ok:   true,
		},
		{
			name: "female sedentary maintaining",
			user: models.User{Gender: models.GenderFemale, Weight: 60, Height: 165, Age: 25, ActivityLevel: "sedentary", Goal: models.GoalMaintain},
			want: 1610,
			ok:   true,
		},
		{
			name: "unknown activity counts as sedentary",
			user: models.User{Gender: models.GenderFemale, Weight: 60, Height: 165, Age: 25, ActivityLevel: "couch"},
			want: 1610,
			ok:   true,
		},
		{
			name: "gain adds surplus",
			user: models.User{Gender: models.GenderMale, Weight: 80, Height: 180, Age: 30, ActivityLevel: "sedentary", Goal: models.GoalGain},
			want: 2440,
			ok:   true,
		},
		{
			name: "floor",
			user: models.User{Gender: models.GenderFemale, Weight: 40, Height: 150, Age: 60, ActivityLevel: "sedentary", Goal: models.GoalLose},
			want: 1200,
			ok:   true,
		},
		{
			name: "incomplete profile",
			user: models.User{Gender: models.GenderMale, Weight: 80, Age: 30},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CalculateDailyGoal(&tt.user)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidActivityLevel(t *testing.T) {
	assert.True(t, ValidActivityLevel("very_active"))
	assert.False(t, ValidActivityLevel("extreme"))
}

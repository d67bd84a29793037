package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/services"
)

// GetDailyStats handles GET /stats/daily?date=YYYY-MM-DD
func (h *Handler) GetDailyStats(c *gin.Context) {
	day, err := services.ParseDay(c.Query("date"), h.Clock.Now(), h.Nutrition.Location())
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}

	userID := currentUserID(c)
	user, err := h.Users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.Nutrition.DailyStats(c.Request.Context(), userID, day)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":     stats,
		"dailyGoal": user.DailyGoal,
		"remaining": float64(user.DailyGoal) - stats.Calories,
	})
}

// GetWeeklyStats handles GET /stats/weekly. Seven days ending today, oldest
// first, with empty days zero-filled.
func (h *Handler) GetWeeklyStats(c *gin.Context) {
	days, err := h.Nutrition.WeeklyStats(c.Request.Context(), currentUserID(c), h.Clock.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	var total float64
	logged := 0
	for _, d := range days {
		total += d.Calories
		if d.MealCount > 0 {
			logged++
		}
	}
	average := 0.0
	if logged > 0 {
		average = total / float64(logged)
	}

	c.JSON(http.StatusOK, gin.H{
		"days":            days,
		"averageCalories": average,
		"daysLogged":      logged,
	})
}

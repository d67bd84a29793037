package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/handlers"
	"github.com/kcalbot/kcalbot-backend/internal/middleware"
)

func RegisterMealRoutes(r gin.IRouter, h *handlers.Handler) {
	meals := r.Group("/meals")
	{
		// LLM-backed (Specific paths first)
		meals.POST("/analyze", middleware.AnalyzeRateLimit(), h.AnalyzeMeal)
		meals.POST("/photo", middleware.AnalyzeRateLimit(), h.UploadMealPhoto)

		meals.GET("", h.ListMeals)
		meals.POST("/:id/confirm", h.ConfirmMeal)
		meals.PUT("/:id", h.UpdateMeal)
		meals.DELETE("/:id", h.DeleteMeal)
	}

	stats := r.Group("/stats")
	{
		stats.GET("/daily", h.GetDailyStats)
		stats.GET("/weekly", h.GetWeeklyStats)
	}

	r.GET("/report-card", middleware.AnalyzeRateLimit(), h.GetReportCard)
}

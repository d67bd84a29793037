package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/handlers"
)

func RegisterGamificationRoutes(r gin.IRouter, h *handlers.Handler) {
	g := r.Group("/gamification")
	{
		g.GET("/profile", h.GetGamificationProfile)
		g.POST("/badges/seen", h.MarkBadgesSeen)
	}

	r.GET("/leaderboard/weekly", h.GetWeeklyLeaderboard)
}

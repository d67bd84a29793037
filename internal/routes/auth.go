package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/handlers"
	"github.com/kcalbot/kcalbot-backend/internal/middleware"
)

func RegisterAuthRoutes(r gin.IRouter, h *handlers.Handler) {
	auth := r.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/telegram", h.TelegramAuth)
	}
}

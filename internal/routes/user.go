package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/handlers"
)

func RegisterUserRoutes(r gin.IRouter, h *handlers.Handler) {
	me := r.Group("/users/me")
	{
		me.GET("", h.GetMe)
		me.PUT("", h.UpdateMe)
		me.DELETE("", h.DeleteMe)
		me.POST("/weight", h.LogWeight)
	}

	reminders := r.Group("/reminders")
	{
		reminders.GET("", h.GetReminders)
		reminders.PUT("", h.UpdateReminders)
	}
}

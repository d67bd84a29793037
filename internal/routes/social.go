package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/handlers"
)

func RegisterSocialRoutes(r gin.IRouter, h *handlers.Handler) {
	friends := r.Group("/friends")
	{
		friends.GET("", h.ListFriends)
		friends.POST("/:id/accept", h.AcceptFriend)
		friends.POST("/:id", h.RequestFriend) // id is the Telegram user id
	}
}

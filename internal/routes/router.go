package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/handlers"
	"github.com/kcalbot/kcalbot-backend/internal/middleware"
)

// Setup builds the engine with the global middleware chain and every route.
func Setup(h *handlers.Handler, frontendURL string) *gin.Engine {
	r := gin.New()

	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(frontendURL))
	r.Use(middleware.SecurityHeaders())

	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	{
		RegisterAuthRoutes(api, h)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(h.DB), middleware.GeneralRateLimit())

		RegisterUserRoutes(protected, h)
		RegisterMealRoutes(protected, h)
		RegisterGamificationRoutes(protected, h)
		RegisterSocialRoutes(protected, h)
	}

	return r
}

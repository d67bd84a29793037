package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/kcalbot/kcalbot-backend/pkg/errors"
	"github.com/kcalbot/kcalbot-backend/pkg/utils"
	"gorm.io/gorm"
)

// AuthMiddleware validates the bearer token issued by /auth/telegram and
// puts userId and telegramId into the context.
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, "missing_token", "Authorization header required")
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "invalid_token", "Invalid or expired token")
			return
		}

		// Token may outlive the account
		var user models.User
		if err := db.WithContext(c.Request.Context()).Select("id").First(&user, "id = ?", claims.UserID).Error; err != nil {
			abortUnauthorized(c, "unknown_user", "User not found")
			return
		}

		c.Set("userId", claims.UserID)
		c.Set("telegramId", claims.TelegramID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, reason, msg string) {
	err := errors.New(http.StatusUnauthorized, reason, msg)
	c.AbortWithStatusJSON(err.Status, err.Payload())
}

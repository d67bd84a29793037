package handlers

import (
	stderrors "errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/services"
	"github.com/kcalbot/kcalbot-backend/pkg/errors"
	"github.com/kcalbot/kcalbot-backend/pkg/logger"
	"gorm.io/gorm"
)

// Handler holds the services behind the HTTP API.
type Handler struct {
	DB           *gorm.DB
	Users        *services.UserService
	Meals        *services.MealService
	Nutrition    *services.NutritionService
	Gamification *services.GamificationService
	Badges       *services.BadgeService
	Leaderboard  *services.LeaderboardService
	Reports      *services.ReportCardService
	Social       *services.SocialService
	Photos       services.PhotoUploader // nil when storage is not configured
	Health       HealthChecker
	Clock        clockwork.Clock

	BotToken    string
	InitDataTTL time.Duration
}

// HealthChecker reports the state of external dependencies.
type HealthChecker interface {
	DatabaseStatus() string
	RedisStatus() string
}

func currentUserID(c *gin.Context) string {
	return c.GetString("userId")
}

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &appErr):
	case stderrors.Is(err, services.ErrUserNotFound):
		appErr = errors.NotFound("user", err.Error())
	case stderrors.Is(err, services.ErrMealNotFound):
		appErr = errors.NotFound("meal", err.Error())
	case stderrors.Is(err, services.ErrFriendshipNotFound):
		appErr = errors.NotFound("friendship", err.Error())
	case stderrors.Is(err, services.ErrAlreadyConfirmed):
		appErr = errors.Conflict("meal_already_confirmed", err.Error())
	case stderrors.Is(err, services.ErrSelfFriendship),
		stderrors.Is(err, services.ErrInvalidTime),
		stderrors.Is(err, services.ErrInvalidInput):
		appErr = errors.BadRequest(err.Error())
	case stderrors.Is(err, services.ErrLLMUnavailable):
		appErr = errors.ErrLLMUnavailable
	case stderrors.Is(err, services.ErrPhotoStorageDisabled):
		appErr = errors.ErrNotImplemented
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Str("user_id", currentUserID(c)).Msg("Request failed")
		appErr = errors.ErrInternalServer
	}
	c.JSON(appErr.Status, appErr.Payload())
}

func badRequest(c *gin.Context, msg string) {
	err := errors.BadRequest(msg)
	c.JSON(err.Status, err.Payload())
}

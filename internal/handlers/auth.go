package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/services"
	"github.com/kcalbot/kcalbot-backend/pkg/errors"
	"github.com/kcalbot/kcalbot-backend/pkg/logger"
	"github.com/kcalbot/kcalbot-backend/pkg/utils"
)

type TelegramAuthInput struct {
	InitData string `json:"initData" binding:"required"`
}

// TelegramAuth handles POST /auth/telegram. The mini-app sends its raw
// initData; the user is created on first contact.
func (h *Handler) TelegramAuth(c *gin.Context) {
	var input TelegramAuthInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "initData is required")
		return
	}

	tgUser, err := utils.ValidateInitData(input.InitData, h.BotToken, h.InitDataTTL, h.Clock.Now())
	if err != nil {
		appErr := errors.New(http.StatusUnauthorized, "invalid_init_data", "Invalid init data")
		if stderrors.Is(err, utils.ErrInitDataExpired) {
			appErr = errors.New(http.StatusUnauthorized, "init_data_expired", "Session expired, reopen the app")
		}
		logger.Debug().Err(err).Str("ip", c.ClientIP()).Msg("Rejected init data")
		c.JSON(appErr.Status, appErr.Payload())
		return
	}

	user, created, err := h.Users.UpsertTelegramUser(c.Request.Context(), services.TelegramIdentity{
		ID:           tgUser.ID,
		Username:     tgUser.Username,
		FirstName:    tgUser.FirstName,
		LanguageCode: tgUser.LanguageCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.TelegramID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to sign token")
		respondError(c, err)
		return
	}

	if created {
		logger.Info().Str("user_id", user.ID).Int64("telegram_id", user.TelegramID).Msg("New user registered")
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user":    user,
		"created": created,
	})
}

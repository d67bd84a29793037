package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/models"
)

// GetReminders handles GET /reminders
func (h *Handler) GetReminders(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": user.Reminders})
}

// UpdateReminders handles PUT /reminders
func (h *Handler) UpdateReminders(c *gin.Context) {
	var input models.ReminderSettings
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid reminder settings")
		return
	}

	settings, err := h.Users.UpdateReminders(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": settings})
}

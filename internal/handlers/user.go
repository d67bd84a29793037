package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/services"
	"github.com/kcalbot/kcalbot-backend/pkg/errors"
)

type WeightInput struct {
	Weight float64 `json:"weight" binding:"required"`
}

// GetMe handles GET /users/me
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"isPremium": user.IsPremium(h.Clock.Now()),
	})
}

// UpdateMe handles PUT /users/me
func (h *Handler) UpdateMe(c *gin.Context) {
	var input services.ProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid profile data")
		return
	}

	user, err := h.Users.UpdateProfile(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteMe handles DELETE /users/me. Account removal goes through support
// for now.
func (h *Handler) DeleteMe(c *gin.Context) {
	c.JSON(errors.ErrNotImplemented.Status, errors.ErrNotImplemented.Payload())
}

// LogWeight handles POST /users/me/weight
func (h *Handler) LogWeight(c *gin.Context) {
	var input WeightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "weight is required")
		return
	}

	entry, result, err := h.Users.LogWeight(c.Request.Context(), currentUserID(c), input.Weight)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.Leaderboard != nil && result.XPGained > 0 {
		h.Leaderboard.Invalidate()
	}

	c.JSON(http.StatusCreated, gin.H{
		"weightLog":    entry,
		"gamification": result,
	})
}

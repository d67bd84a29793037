package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MarkBadgesSeenInput struct {
	BadgeIDs []string `json:"badgeIds" binding:"required"`
}

// GetGamificationProfile handles GET /gamification/profile
func (h *Handler) GetGamificationProfile(c *gin.Context) {
	profile, err := h.Gamification.Profile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// MarkBadgesSeen handles POST /gamification/badges/seen
func (h *Handler) MarkBadgesSeen(c *gin.Context) {
	var input MarkBadgesSeenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "badgeIds is required")
		return
	}

	updated, err := h.Badges.MarkSeen(c.Request.Context(), currentUserID(c), input.BadgeIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// GetWeeklyLeaderboard handles GET /leaderboard/weekly
func (h *Handler) GetWeeklyLeaderboard(c *gin.Context) {
	entries, err := h.Leaderboard.Weekly(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	userID := currentUserID(c)
	myRank := 0
	for _, e := range entries {
		if e.UserID == userID {
			myRank = e.Rank
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"myRank":  myRank,
	})
}

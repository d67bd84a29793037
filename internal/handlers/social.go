package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RequestFriend handles POST /friends/:id where id is a Telegram user id
func (h *Handler) RequestFriend(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || telegramID <= 0 {
		badRequest(c, "Invalid Telegram id")
		return
	}

	friendship, err := h.Social.RequestFriend(c.Request.Context(), currentUserID(c), telegramID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friendship": friendship})
}

// AcceptFriend handles POST /friends/:id/accept
func (h *Handler) AcceptFriend(c *gin.Context) {
	friendship, err := h.Social.AcceptFriend(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friendship": friendship})
}

// ListFriends handles GET /friends
func (h *Handler) ListFriends(c *gin.Context) {
	friends, err := h.Social.ListFriends(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

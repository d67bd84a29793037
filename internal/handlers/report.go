package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/services"
)

type reportResponse struct {
	Status    services.ReportStatus `json:"status"`
	IsPremium bool                  `json:"isPremium"`
	Card      json.RawMessage       `json:"card,omitempty"`
}

// GetReportCard handles GET /report-card?lang=&refresh=. Premium users get
// the stored card bytes as-is; free users get the stripped card.
func (h *Handler) GetReportCard(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	userID := currentUserID(c)

	user, err := h.Users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	premium := user.IsPremium(h.Clock.Now())

	outcome, err := h.Reports.Generate(c.Request.Context(), userID, c.Query("lang"), refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := reportResponse{Status: outcome.Status, IsPremium: premium}
	if outcome.Card != nil {
		if premium {
			resp.Card = outcome.Raw
		} else {
			stripped, err := json.Marshal(services.StripForFree(outcome.Card))
			if err != nil {
				respondError(c, err)
				return
			}
			resp.Card = stripped
		}
	}
	c.JSON(http.StatusOK, resp)
}

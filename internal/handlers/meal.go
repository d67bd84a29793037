package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/kcalbot/kcalbot-backend/internal/services"
	"github.com/kcalbot/kcalbot-backend/pkg/errors"
	"github.com/kcalbot/kcalbot-backend/pkg/utils"
)

const (
	maxMealTextLength = 1000
	maxPhotoSize      = 10 << 20 // 10 MB
)

// AnalyzeMeal handles POST /meals/analyze. The result is a pending meal.
func (h *Handler) AnalyzeMeal(c *gin.Context) {
	var input services.AnalyzeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid meal description")
		return
	}
	input.Text = utils.SanitizeMealText(input.Text, maxMealTextLength)

	meal, err := h.Meals.Analyze(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meal": meal})
}

// UploadMealPhoto handles POST /meals/photo (multipart field "photo"). The
// stored photo is analyzed right away.
func (h *Handler) UploadMealPhoto(c *gin.Context) {
	if h.Photos == nil {
		respondError(c, services.ErrPhotoStorageDisabled)
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		file, header, err = c.Request.FormFile("image")
		if err != nil {
			badRequest(c, "No photo found")
			return
		}
	}
	defer file.Close()

	if header.Size > maxPhotoSize {
		badRequest(c, "Photo is too large")
		return
	}

	userID := currentUserID(c)
	url, err := h.Photos.Upload(c.Request.Context(), userID, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(c, err)
		return
	}

	meal, err := h.Meals.Analyze(c.Request.Context(), userID, services.AnalyzeRequest{
		Text:     utils.SanitizeMealText(c.PostForm("caption"), maxMealTextLength),
		ImageURL: url,
		Source:   models.MealSourcePhoto,
		Lang:     c.PostForm("lang"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meal": meal, "imageUrl": url})
}

// ListMeals handles GET /meals?date=YYYY-MM-DD (default today)
func (h *Handler) ListMeals(c *gin.Context) {
	day, err := services.ParseDay(c.Query("date"), h.Clock.Now(), h.Nutrition.Location())
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}

	meals, err := h.Meals.ListForDay(c.Request.Context(), currentUserID(c), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

// ConfirmMeal handles POST /meals/:id/confirm
func (h *Handler) ConfirmMeal(c *gin.Context) {
	mealID := c.Param("id")
	if !utils.IsUUID(mealID) {
		respondError(c, errors.NotFound("meal", "meal not found"))
		return
	}

	meal, result, err := h.Meals.Confirm(c.Request.Context(), currentUserID(c), mealID)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.Leaderboard != nil {
		h.Leaderboard.Invalidate()
	}

	c.JSON(http.StatusOK, gin.H{
		"meal":         meal,
		"gamification": result,
	})
}

// UpdateMeal handles PUT /meals/:id
func (h *Handler) UpdateMeal(c *gin.Context) {
	mealID := c.Param("id")
	if !utils.IsUUID(mealID) {
		respondError(c, errors.NotFound("meal", "meal not found"))
		return
	}

	var input services.MealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid meal data")
		return
	}

	meal, err := h.Meals.Update(c.Request.Context(), currentUserID(c), mealID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

// DeleteMeal handles DELETE /meals/:id
func (h *Handler) DeleteMeal(c *gin.Context) {
	mealID := c.Param("id")
	if !utils.IsUUID(mealID) {
		respondError(c, errors.NotFound("meal", "meal not found"))
		return
	}

	if err := h.Meals.Delete(c.Request.Context(), currentUserID(c), mealID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

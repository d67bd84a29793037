package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MealItemInput struct {
	Name     string  `json:"name" binding:"required"`
	Grams    float64 `json:"grams"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// MealInput creates or edits a meal. When Items is non-empty the macro totals
// are recomputed from them. On edit, nil fields keep their stored value.
type MealInput struct {
	Name     string            `json:"name"`
	Calories *float64          `json:"calories"`
	Protein  *float64          `json:"protein"`
	Carbs    *float64          `json:"carbs"`
	Fat      *float64          `json:"fat"`
	Items    []MealItemInput   `json:"items"`
	EatenAt  *time.Time        `json:"eatenAt"`
	Source   models.MealSource `json:"source"`
	ImageURL string            `json:"imageUrl"`
}

// AnalyzeRequest is a free-text description (typed or transcribed) and/or a
// photo URL.
type AnalyzeRequest struct {
	Text     string            `json:"text"`
	ImageURL string            `json:"imageUrl"`
	Source   models.MealSource `json:"source"`
	Lang     string            `json:"lang"`
}

// errNotPending rolls back a confirm that matched no pending meal.
var errNotPending = errors.New("meal is not pending")

type analyzedMeal struct {
	Name  string          `json:"name"`
	Items []MealItemInput `json:"items"`
}

type MealService struct {
	db           *gorm.DB
	gamification *GamificationService
	analyzer     TextGenerator
	clock        clockwork.Clock
	loc          *time.Location
}

func NewMealService(db *gorm.DB, gamification *GamificationService, analyzer TextGenerator, clock clockwork.Clock, loc *time.Location) *MealService {
	return &MealService{db: db, gamification: gamification, analyzer: analyzer, clock: clock, loc: loc}
}

// Analyze asks the text generator for an itemized estimate and stores it as
// a pending meal awaiting confirmation.
func (s *MealService) Analyze(ctx context.Context, userID string, req AnalyzeRequest) (*models.Meal, error) {
	if strings.TrimSpace(req.Text) == "" && req.ImageURL == "" {
		return nil, fmt.Errorf("%w: text or image is required", ErrInvalidInput)
	}
	if req.Lang == "" {
		req.Lang = models.DefaultLanguage
	}

	var result analyzedMeal
	prompt := fmt.Sprintf("Language for names: %s\nMeal description: %s", req.Lang, strings.TrimSpace(req.Text))
	if err := s.analyzer.GenerateJSON(ctx, CompletionRequest{
		System:   mealAnalysisPrompt,
		User:     prompt,
		ImageURL: req.ImageURL,
	}, &result); err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("%w: no food recognised", ErrLLMUnavailable)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}
	source := req.Source
	if source == "" {
		source = models.MealSourceText
		if req.ImageURL != "" {
			source = models.MealSourcePhoto
		}
	}

	return s.create(ctx, userID, MealInput{
		Name:     result.Name,
		Items:    result.Items,
		Source:   source,
		ImageURL: req.ImageURL,
	}, datatypes.JSON(raw))
}

// CreatePending stores a meal in pending state.
func (s *MealService) CreatePending(ctx context.Context, userID string, in MealInput) (*models.Meal, error) {
	return s.create(ctx, userID, in, nil)
}

func (s *MealService) create(ctx context.Context, userID string, in MealInput, analysis datatypes.JSON) (*models.Meal, error) {
	eatenAt := s.clock.Now()
	if in.EatenAt != nil {
		eatenAt = *in.EatenAt
	}
	source := in.Source
	if source == "" {
		source = models.MealSourceText
	}

	meal := models.Meal{
		UserID:   userID,
		Status:   models.MealStatusPending,
		Source:   source,
		EatenAt:  eatenAt.UTC(),
		ImageURL: in.ImageURL,
		Analysis: analysis,
	}
	applyMealInput(&meal, in)

	if err := s.db.WithContext(ctx).Create(&meal).Error; err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}
	return &meal, nil
}

// Confirm marks a pending meal as confirmed and runs the gamification
// trigger in the same transaction, so a failed award leaves the meal
// pending. Confirming twice is rejected so XP is not awarded twice.
func (s *MealService) Confirm(ctx context.Context, userID, mealID string) (*models.Meal, GamificationResult, error) {
	now := s.clock.Now().UTC()
	result := neutralResult()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Meal{}).
			Where("id = ? AND user_id = ? AND status = ?", mealID, userID, models.MealStatusPending).
			Updates(map[string]interface{}{
				"status":       models.MealStatusConfirmed,
				"confirmed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNotPending
		}

		var err error
		result, err = s.gamification.OnMealConfirmedTx(ctx, tx, userID)
		return err
	})
	if err != nil && !errors.Is(err, errNotPending) {
		return nil, neutralResult(), fmt.Errorf("confirm meal: %w", err)
	}

	meal, getErr := s.Get(ctx, userID, mealID)
	if getErr != nil {
		return nil, neutralResult(), getErr
	}
	if err != nil {
		return meal, neutralResult(), ErrAlreadyConfirmed
	}
	return meal, result, nil
}

// Update edits a meal's name, macros, items or time. Status is untouched.
// Macros set without items replace the itemization, which no longer adds up.
func (s *MealService) Update(ctx context.Context, userID, mealID string, in MealInput) (*models.Meal, error) {
	meal, err := s.Get(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}

	dropItems := len(in.Items) == 0 && in.hasMacros()
	applyMealInput(meal, in)
	if in.EatenAt != nil {
		meal.EatenAt = in.EatenAt.UTC()
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(meal).Error; err != nil {
			return err
		}
		if len(in.Items) == 0 && !dropItems {
			return nil
		}
		if err := tx.Where("meal_id = ?", meal.ID).Delete(&models.MealItem{}).Error; err != nil {
			return err
		}
		if dropItems {
			return nil
		}
		return tx.Create(&meal.Items).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update meal: %w", err)
	}
	return s.Get(ctx, userID, mealID)
}

func (s *MealService) Delete(ctx context.Context, userID, mealID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", mealID, userID).Delete(&models.Meal{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrMealNotFound
		}
		return tx.Where("meal_id = ?", mealID).Delete(&models.MealItem{}).Error
	})
}

func (s *MealService) Get(ctx context.Context, userID, mealID string) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.WithContext(ctx).Preload("Items").
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMealNotFound
	}
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

// ListForDay returns pending and confirmed meals of day, oldest first.
func (s *MealService) ListForDay(ctx context.Context, userID string, day time.Time) ([]models.Meal, error) {
	start := StartOfDay(day, s.loc)
	var meals []models.Meal
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ? AND eaten_at >= ? AND eaten_at < ?", userID, start.UTC(), start.AddDate(0, 0, 1).UTC()).
		Order("eaten_at ASC").
		Find(&meals).Error
	return meals, err
}

func applyMealInput(meal *models.Meal, in MealInput) {
	if in.Name != "" {
		meal.Name = in.Name
	}
	if in.ImageURL != "" {
		meal.ImageURL = in.ImageURL
	}

	if len(in.Items) == 0 {
		setMacro(&meal.Calories, in.Calories)
		setMacro(&meal.Protein, in.Protein)
		setMacro(&meal.Carbs, in.Carbs)
		setMacro(&meal.Fat, in.Fat)
		return
	}

	meal.Items = make([]models.MealItem, 0, len(in.Items))
	var calories, protein, carbs, fat float64
	names := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		meal.Items = append(meal.Items, models.MealItem{
			MealID:   meal.ID,
			Name:     it.Name,
			Grams:    it.Grams,
			Calories: round1(it.Calories),
			Protein:  round1(it.Protein),
			Carbs:    round1(it.Carbs),
			Fat:      round1(it.Fat),
		})
		calories += it.Calories
		protein += it.Protein
		carbs += it.Carbs
		fat += it.Fat
		names = append(names, it.Name)
	}
	meal.Calories = round1(calories)
	meal.Protein = round1(protein)
	meal.Carbs = round1(carbs)
	meal.Fat = round1(fat)

	// Composite name from the items when none was given
	if meal.Name == "" {
		meal.Name = strings.Join(names, ", ")
	}
}

func (in MealInput) hasMacros() bool {
	return in.Calories != nil || in.Protein != nil || in.Carbs != nil || in.Fat != nil
}

func setMacro(dst *float64, v *float64) {
	if v != nil {
		*dst = round1(*v)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

const mealAnalysisPrompt = `You estimate the nutrition of a meal from a description and/or a photo.
Reply with one JSON object only:
{"name":"short meal name","items":[{"name":"...","grams":0,"calories":0,"protein":0,"carbs":0,"fat":0}]}
Use realistic portion sizes. Protein, carbs and fat are grams. Return an empty items array if there is no food.`

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/kcalbot/kcalbot-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportGenerated ReportStatus = "generated"
	ReportCached    ReportStatus = "cached"
	ReportNoData    ReportStatus = "no_data"
)

// ReportCard is the daily summary. Numbers come from the aggregator; the
// qualitative fields come from the text generator.
type ReportCard struct {
	Date           string   `json:"date"`
	Grade          string   `json:"grade"`
	Calories       float64  `json:"calories"`
	DailyGoal      int      `json:"dailyGoal"`
	CaloriePercent int      `json:"caloriePercent"`
	Protein        float64  `json:"protein"`
	Carbs          float64  `json:"carbs"`
	Fat            float64  `json:"fat"`
	MealCount      int      `json:"mealCount"`
	CalorieStatus  string   `json:"calorieStatus,omitempty"`
	MacroStatus    string   `json:"macroStatus,omitempty"`
	Highlights     []string `json:"highlights,omitempty"`
	Improvements   []string `json:"improvements,omitempty"`
	TomorrowTip    string   `json:"tomorrowTip,omitempty"`
	StreakMessage  string   `json:"streakMessage,omitempty"`
}

// ReportOutcome carries the card and the exact stored bytes, so cached
// responses are byte-identical.
type ReportOutcome struct {
	Status ReportStatus
	Card   *ReportCard
	Raw    []byte
}

// StripForFree keeps the grade and calorie numbers only.
func StripForFree(card *ReportCard) *ReportCard {
	return &ReportCard{
		Date:           card.Date,
		Grade:          card.Grade,
		Calories:       card.Calories,
		DailyGoal:      card.DailyGoal,
		CaloriePercent: card.CaloriePercent,
		MealCount:      card.MealCount,
	}
}

// RubricGrade maps calorie intake as a percentage of the goal to a letter.
func RubricGrade(percent float64) string {
	dev := math.Abs(percent - 100)
	switch {
	case dev <= 10:
		return "A"
	case dev <= 20:
		return "B"
	case dev <= 30:
		return "C"
	case percent >= 50 && percent <= 150:
		return "D"
	default:
		return "F"
	}
}

var validGrades = map[string]bool{"A": true, "B": true, "C": true, "D": true, "F": true}

type generatedReport struct {
	Grade         string   `json:"grade"`
	CalorieStatus string   `json:"calorieStatus"`
	MacroStatus   string   `json:"macroStatus"`
	Highlights    []string `json:"highlights"`
	Improvements  []string `json:"improvements"`
	TomorrowTip   string   `json:"tomorrowTip"`
	StreakMessage string   `json:"streakMessage"`
}

type ReportCardService struct {
	db        *gorm.DB
	nutrition *NutritionService
	generator TextGenerator
	clock     clockwork.Clock
}

func NewReportCardService(db *gorm.DB, nutrition *NutritionService, generator TextGenerator, clock clockwork.Clock) *ReportCardService {
	return &ReportCardService{db: db, nutrition: nutrition, generator: generator, clock: clock}
}

// Generate returns today's report card for userID. A cached card from today
// is returned as-is unless forceRefresh is set. Without a confirmed meal today
// the outcome is ReportNoData, forced or not.
func (s *ReportCardService) Generate(ctx context.Context, userID, lang string, forceRefresh bool) (ReportOutcome, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReportOutcome{}, ErrUserNotFound
		}
		return ReportOutcome{}, err
	}
	models.ResolveUserDefaults(&user)

	now := s.clock.Now()
	loc := s.nutrition.Location()
	today := DayKey(now, loc)

	if !forceRefresh && user.LastReportCardDate == today && len(user.LastReportCard) > 0 {
		var card ReportCard
		if err := json.Unmarshal(user.LastReportCard, &card); err == nil {
			return ReportOutcome{Status: ReportCached, Card: &card, Raw: []byte(user.LastReportCard)}, nil
		}
		logger.Warn().Str("user_id", userID).Msg("Cached report card is unreadable, regenerating")
	}

	stats, err := s.nutrition.DailyStats(ctx, userID, now)
	if err != nil {
		return ReportOutcome{}, err
	}
	if stats.MealCount == 0 {
		return ReportOutcome{Status: ReportNoData}, nil
	}

	meals, err := s.nutrition.MealsForDay(ctx, userID, now)
	if err != nil {
		return ReportOutcome{}, err
	}

	percent := stats.Calories / float64(user.DailyGoal) * 100
	rubric := RubricGrade(percent)

	if lang == "" {
		lang = user.Language
	}

	var gen generatedReport
	if err := s.generator.GenerateJSON(ctx, CompletionRequest{
		System: reportSystemPrompt,
		User:   buildReportPrompt(&user, stats, meals, percent, rubric, lang),
	}, &gen); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("Report card generation failed")
		if !errors.Is(err, ErrLLMUnavailable) {
			err = fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
		}
		return ReportOutcome{}, err
	}

	grade := strings.ToUpper(strings.TrimSpace(gen.Grade))
	if !validGrades[grade] {
		grade = rubric
	}

	card := &ReportCard{
		Date:           today,
		Grade:          grade,
		Calories:       math.Round(stats.Calories),
		DailyGoal:      user.DailyGoal,
		CaloriePercent: int(math.Round(percent)),
		Protein:        math.Round(stats.Protein),
		Carbs:          math.Round(stats.Carbs),
		Fat:            math.Round(stats.Fat),
		MealCount:      stats.MealCount,
		CalorieStatus:  gen.CalorieStatus,
		MacroStatus:    gen.MacroStatus,
		Highlights:     gen.Highlights,
		Improvements:   gen.Improvements,
		TomorrowTip:    gen.TomorrowTip,
		StreakMessage:  gen.StreakMessage,
	}

	raw, err := json.Marshal(card)
	if err != nil {
		return ReportOutcome{}, err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"last_report_card":      datatypes.JSON(raw),
		"last_report_card_date": today,
	}).Error; err != nil {
		return ReportOutcome{}, fmt.Errorf("store report card: %w", err)
	}

	return ReportOutcome{Status: ReportGenerated, Card: card, Raw: raw}, nil
}

const reportSystemPrompt = `You are a friendly nutrition coach writing a short daily report card.
Grade the day with this rubric on calories as a percentage of the daily goal:
A: 90-110%. B: 80-90% or 110-120%. C: 70-80% or 120-130%. D: 50-70% or 130-150%. F: anything else.
Macro balance: protein at or above 20% of calories is a highlight; fat above 35% of calories needs improvement; carbs above 60% of calories needs improvement.
Reply with one JSON object only:
{"grade":"A|B|C|D|F","calorieStatus":"...","macroStatus":"...","highlights":["..."],"improvements":["..."],"tomorrowTip":"...","streakMessage":"..."}`

func buildReportPrompt(user *models.User, stats DailyStats, meals []models.Meal, percent float64, rubric, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Language: %s\n", lang)
	fmt.Fprintf(&b, "Daily goal: %d kcal\n", user.DailyGoal)
	fmt.Fprintf(&b, "Eaten: %.0f kcal (%.0f%% of goal), protein %.0f g, carbs %.0f g, fat %.0f g, %d meals\n",
		stats.Calories, percent, stats.Protein, stats.Carbs, stats.Fat, stats.MealCount)

	if stats.Calories > 0 {
		fmt.Fprintf(&b, "Calorie share: protein %.0f%%, carbs %.0f%%, fat %.0f%%\n",
			stats.Protein*4/stats.Calories*100, stats.Carbs*4/stats.Calories*100, stats.Fat*9/stats.Calories*100)
	}
	if user.Goal != "" {
		fmt.Fprintf(&b, "User goal: %s\n", user.Goal)
	}
	fmt.Fprintf(&b, "Streak: %d days (longest %d), level %d, %d XP\n",
		user.CurrentStreak, user.LongestStreak, LevelForXP(user.XP), user.XP)
	fmt.Fprintf(&b, "Rubric grade: %s\n", rubric)

	b.WriteString("Meals:\n")
	for _, m := range meals {
		fmt.Fprintf(&b, "- %s: %.0f kcal (P %.0f / C %.0f / F %.0f)\n", m.Name, m.Calories, m.Protein, m.Carbs, m.Fat)
	}
	return b.String()
}

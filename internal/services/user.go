package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TelegramIdentity is the user block of a validated WebApp initData.
type TelegramIdentity struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LanguageCode string `json:"language_code"`
}

// ProfileUpdate is a partial profile edit. Nil fields are left unchanged.
// An explicit DailyGoal wins over the computed one.
type ProfileUpdate struct {
	Gender        *models.Gender `json:"gender"`
	Age           *int           `json:"age"`
	Height        *float64       `json:"height"`
	Weight        *float64       `json:"weight"`
	TargetWeight  *float64       `json:"targetWeight"`
	ActivityLevel *string        `json:"activityLevel"`
	Goal          *models.Goal   `json:"goal"`
	DailyGoal     *int           `json:"dailyGoal"`
	Language      *string        `json:"language"`
}

type UserService struct {
	db           *gorm.DB
	gamification *GamificationService
	clock        clockwork.Clock
}

func NewUserService(db *gorm.DB, gamification *GamificationService, clock clockwork.Clock) *UserService {
	return &UserService{db: db, gamification: gamification, clock: clock}
}

func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	models.ResolveUserDefaults(&user)
	return &user, nil
}

func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	models.ResolveUserDefaults(&user)
	return &user, nil
}

// UpsertTelegramUser creates the user on first contact and refreshes the
// Telegram display fields afterwards. Profile and gamification state are
// never touched.
func (s *UserService) UpsertTelegramUser(ctx context.Context, ident TelegramIdentity) (*models.User, bool, error) {
	if ident.ID == 0 {
		return nil, false, fmt.Errorf("%w: telegram id is required", ErrInvalidInput)
	}

	user := models.User{
		TelegramID: ident.ID,
		Username:   ident.Username,
		FirstName:  ident.FirstName,
		Language:   normalizeLanguage(ident.LanguageCode),
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
	if res.Error != nil {
		return nil, false, fmt.Errorf("upsert user: %w", res.Error)
	}
	created := res.RowsAffected > 0

	if !created {
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("telegram_id = ?", ident.ID).
			Updates(map[string]interface{}{
				"username":   ident.Username,
				"first_name": ident.FirstName,
			}).Error; err != nil {
			return nil, false, err
		}
	}

	existing, err := s.GetByTelegramID(ctx, ident.ID)
	if err != nil {
		return nil, false, err
	}
	return existing, created, nil
}

// UpdateProfile applies the edit and recomputes the daily goal from the body
// profile unless one is given explicitly.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Gender != nil {
		if *in.Gender != models.GenderMale && *in.Gender != models.GenderFemale {
			return nil, fmt.Errorf("%w: gender %q", ErrInvalidInput, *in.Gender)
		}
		user.Gender = *in.Gender
	}
	if in.Age != nil {
		if *in.Age < 10 || *in.Age > 120 {
			return nil, fmt.Errorf("%w: age must be between 10 and 120", ErrInvalidInput)
		}
		user.Age = *in.Age
	}
	if in.Height != nil {
		user.Height = *in.Height
	}
	if in.Weight != nil {
		user.Weight = *in.Weight
	}
	if in.TargetWeight != nil {
		user.TargetWeight = *in.TargetWeight
	}
	if in.ActivityLevel != nil {
		if !ValidActivityLevel(*in.ActivityLevel) {
			return nil, fmt.Errorf("%w: activity level %q", ErrInvalidInput, *in.ActivityLevel)
		}
		user.ActivityLevel = *in.ActivityLevel
	}
	if in.Goal != nil {
		switch *in.Goal {
		case models.GoalLose, models.GoalMaintain, models.GoalGain:
			user.Goal = *in.Goal
		default:
			return nil, fmt.Errorf("%w: goal %q", ErrInvalidInput, *in.Goal)
		}
	}
	if in.Language != nil {
		user.Language = normalizeLanguage(*in.Language)
	}

	if in.DailyGoal != nil && *in.DailyGoal > 0 {
		user.DailyGoal = *in.DailyGoal
	} else if goal, ok := CalculateDailyGoal(user); ok {
		user.DailyGoal = goal
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"gender":         user.Gender,
		"age":            user.Age,
		"height":         user.Height,
		"weight":         user.Weight,
		"target_weight":  user.TargetWeight,
		"activity_level": user.ActivityLevel,
		"goal":           user.Goal,
		"daily_goal":     user.DailyGoal,
		"language":       user.Language,
	}).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	// goal_reached depends on both weights
	if in.Weight != nil || in.TargetWeight != nil {
		if _, err := s.gamification.RecheckBadges(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, userID)
}

// LogWeight records a measurement, updates the profile weight and runs the
// weight gamification trigger.
func (s *UserService) LogWeight(ctx context.Context, userID string, weight float64) (*models.WeightLog, GamificationResult, error) {
	if weight <= 0 || weight > 500 {
		return nil, neutralResult(), fmt.Errorf("%w: weight must be between 0 and 500 kg", ErrInvalidInput)
	}

	entry := models.WeightLog{UserID: userID, Weight: weight, LoggedAt: s.clock.Now().UTC()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("weight", weight)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, neutralResult(), err
	}

	result, err := s.gamification.OnWeightLogged(ctx, userID)
	if err != nil {
		return &entry, neutralResult(), err
	}
	return &entry, result, nil
}

// WeightHistory returns measurements since from, oldest first.
func (s *UserService) WeightHistory(ctx context.Context, userID string, from time.Time) ([]models.WeightLog, error) {
	var logs []models.WeightLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND logged_at >= ?", userID, from.UTC()).
		Order("logged_at ASC").
		Find(&logs).Error
	return logs, err
}

// UpdateReminders replaces the reminder settings after validating clocks.
func (s *UserService) UpdateReminders(ctx context.Context, userID string, in models.ReminderSettings) (*models.ReminderSettings, error) {
	for _, t := range []string{in.BreakfastTime, in.LunchTime, in.DinnerTime, in.StreakTime, in.WeighInTime, in.ReportTime} {
		if t != "" && !ValidClock(t) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTime, t)
		}
	}
	if in.WeighInDay < 0 || in.WeighInDay > 6 {
		return nil, fmt.Errorf("%w: weighInDay must be between 0 and 6", ErrInvalidInput)
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	merged := in
	r := user.Reminders
	if merged.BreakfastTime == "" {
		merged.BreakfastTime = r.BreakfastTime
	}
	if merged.LunchTime == "" {
		merged.LunchTime = r.LunchTime
	}
	if merged.DinnerTime == "" {
		merged.DinnerTime = r.DinnerTime
	}
	if merged.StreakTime == "" {
		merged.StreakTime = r.StreakTime
	}
	if merged.WeighInTime == "" {
		merged.WeighInTime = r.WeighInTime
	}
	if merged.ReportTime == "" {
		merged.ReportTime = r.ReportTime
	}

	// Map form so disabled (false) flags are written too
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"reminder_breakfast_enabled": merged.BreakfastEnabled,
		"reminder_breakfast_time":    merged.BreakfastTime,
		"reminder_lunch_enabled":     merged.LunchEnabled,
		"reminder_lunch_time":        merged.LunchTime,
		"reminder_dinner_enabled":    merged.DinnerEnabled,
		"reminder_dinner_time":       merged.DinnerTime,
		"reminder_streak_enabled":    merged.StreakEnabled,
		"reminder_streak_time":       merged.StreakTime,
		"reminder_weigh_in_enabled":  merged.WeighInEnabled,
		"reminder_weigh_in_time":     merged.WeighInTime,
		"reminder_weigh_in_day":      merged.WeighInDay,
		"reminder_report_enabled":    merged.ReportEnabled,
		"reminder_report_time":       merged.ReportTime,
	}).Error; err != nil {
		return nil, fmt.Errorf("update reminders: %w", err)
	}
	return &merged, nil
}

func normalizeLanguage(code string) string {
	if len(code) >= 2 && code[:2] == "ru" {
		return "ru"
	}
	return models.DefaultLanguage
}

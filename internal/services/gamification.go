package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/kcalbot/kcalbot-backend/pkg/logger"
	"gorm.io/gorm"
)

// GamificationResult is returned by every gamification trigger. A missing
// user yields the zero result with NewBadges empty.
type GamificationResult struct {
	XPGained      int            `json:"xpGained"`
	NewBadges     []models.Badge `json:"newBadges"`
	StreakUpdated bool           `json:"streakUpdated"`
	NewStreak     int            `json:"newStreak"`
	LevelUp       bool           `json:"levelUp"`
	NewLevel      int            `json:"newLevel"`
}

func neutralResult() GamificationResult {
	return GamificationResult{NewBadges: []models.Badge{}}
}

// GamificationProfile is the snapshot shown in the mini-app.
type GamificationProfile struct {
	XP             int           `json:"xp"`
	Progress       LevelProgress `json:"progress"`
	CurrentStreak  int           `json:"currentStreak"`
	LongestStreak  int           `json:"longestStreak"`
	LastLogDate    *time.Time    `json:"lastLogDate"`
	ConfirmedMeals int64         `json:"confirmedMeals"`
	Badges         []BadgeView   `json:"badges"`
	UnseenBadges   int           `json:"unseenBadges"`
}

type GamificationService struct {
	db        *gorm.DB
	badges    *BadgeService
	nutrition *NutritionService
	clock     clockwork.Clock
	loc       *time.Location
}

func NewGamificationService(db *gorm.DB, badges *BadgeService, nutrition *NutritionService, clock clockwork.Clock) *GamificationService {
	return &GamificationService{db: db, badges: badges, nutrition: nutrition, clock: clock, loc: nutrition.Location()}
}

// OnMealConfirmed advances the streak, awards meal XP plus the streak bonus
// and evaluates badges.
func (s *GamificationService) OnMealConfirmed(ctx context.Context, userID string) (GamificationResult, error) {
	return s.OnMealConfirmedTx(ctx, s.db, userID)
}

// OnMealConfirmedTx runs OnMealConfirmed inside the caller's transaction. A
// failure rolls the caller back with it.
func (s *GamificationService) OnMealConfirmedTx(ctx context.Context, db *gorm.DB, userID string) (GamificationResult, error) {
	return s.apply(ctx, db, userID, models.XPReasonMeal, func(u *models.User, now time.Time) (int, bool) {
		next, changed := AdvanceStreak(StreakState{
			Current:     u.CurrentStreak,
			Longest:     u.LongestStreak,
			LastLogDate: u.LastLogDate,
		}, now, s.loc)

		u.CurrentStreak = next.Current
		u.LongestStreak = next.Longest
		u.LastLogDate = next.LastLogDate
		return MealXP(next.Current, changed), changed
	})
}

// OnWeightLogged awards the flat weight XP and evaluates badges. The streak is
// left alone.
func (s *GamificationService) OnWeightLogged(ctx context.Context, userID string) (GamificationResult, error) {
	return s.apply(ctx, s.db, userID, models.XPReasonWeight, func(u *models.User, now time.Time) (int, bool) {
		return XPPerWeightLog, false
	})
}

// RecheckBadges evaluates badges without awarding XP, for edits that change
// badge inputs directly.
func (s *GamificationService) RecheckBadges(ctx context.Context, userID string) ([]models.Badge, error) {
	badges, err := s.badges.CheckUser(ctx, userID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("recheck badges: %w", err)
	}
	return badges, nil
}

type awardFunc func(u *models.User, now time.Time) (xp int, streakChanged bool)

// apply is the shared read-modify-write. There is no row lock: two triggers
// for the same user at the same instant can lose one update.
func (s *GamificationService) apply(ctx context.Context, db *gorm.DB, userID string, reason models.XPReason, award awardFunc) (GamificationResult, error) {
	result := neutralResult()
	now := s.clock.Now()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		oldLevel := LevelForXP(user.XP)
		xp, streakChanged := award(&user, now)
		user.XP += xp
		user.Level = LevelForXP(user.XP)

		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"xp":             user.XP,
			"level":          user.Level,
			"current_streak": user.CurrentStreak,
			"longest_streak": user.LongestStreak,
			"last_log_date":  user.LastLogDate,
		}).Error; err != nil {
			return err
		}

		if err := LogXP(ctx, tx, user.ID, reason, xp, now); err != nil {
			return err
		}

		newBadges, err := s.badges.Check(ctx, tx, &user, now)
		if err != nil {
			return err
		}

		result = GamificationResult{
			XPGained:      xp,
			NewBadges:     newBadges,
			StreakUpdated: streakChanged,
			NewStreak:     user.CurrentStreak,
			LevelUp:       user.Level > oldLevel,
			NewLevel:      user.Level,
		}
		return nil
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn().Str("user_id", userID).Str("reason", string(reason)).Msg("Gamification trigger for unknown user")
		return neutralResult(), nil
	}
	if err != nil {
		return neutralResult(), fmt.Errorf("gamification %s: %w", reason, err)
	}

	logger.Debug().
		Str("user_id", userID).
		Str("reason", string(reason)).
		Int("xp", result.XPGained).
		Int("streak", result.NewStreak).
		Int("badges", len(result.NewBadges)).
		Msg("Gamification applied")
	return result, nil
}

// Profile returns the user's XP, level progress, streaks and badges.
func (s *GamificationService) Profile(ctx context.Context, userID string) (*GamificationProfile, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	badges, err := s.badges.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	unseen := 0
	for _, b := range badges {
		if b.Unlocked && !b.Seen {
			unseen++
		}
	}

	meals, err := s.nutrition.ConfirmedMealCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &GamificationProfile{
		XP:             user.XP,
		Progress:       ProgressForXP(user.XP),
		CurrentStreak:  user.CurrentStreak,
		LongestStreak:  user.LongestStreak,
		LastLogDate:    user.LastLogDate,
		ConfirmedMeals: meals,
		Badges:         badges,
		UnseenBadges:   unseen,
	}, nil
}

package services

import (
	"context"
	"math"
	"time"

	"github.com/kcalbot/kcalbot-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BadgeStats is everything the badge rules look at.
type BadgeStats struct {
	ConfirmedMeals  int64
	CurrentStreak   int
	Level           int
	AcceptedFriends int64
	WeightLogs      int64
	Weight          float64
	TargetWeight    float64
}

type badgeRule struct {
	badge  models.Badge
	earned func(BadgeStats) bool
}

var badgeRules = []badgeRule{
	{
		badge:  models.Badge{ID: "first_meal", Name: "First Bite", Description: "Logged your first meal.", Icon: "utensils", Category: models.BadgeCategoryLogging},
		earned: func(s BadgeStats) bool { return s.ConfirmedMeals >= 1 },
	},
	{
		badge:  models.Badge{ID: "streak_3", Name: "On a Roll", Description: "Logged meals three days in a row.", Icon: "flame", Category: models.BadgeCategoryStreak},
		earned: func(s BadgeStats) bool { return s.CurrentStreak >= 3 },
	},
	{
		badge:  models.Badge{ID: "week_warrior", Name: "Week Warrior", Description: "Kept a seven day streak.", Icon: "calendar-check", Category: models.BadgeCategoryStreak},
		earned: func(s BadgeStats) bool { return s.CurrentStreak >= 7 },
	},
	{
		badge:  models.Badge{ID: "streak_30", Name: "Habit Formed", Description: "Kept a thirty day streak.", Icon: "crown", Category: models.BadgeCategoryStreak},
		earned: func(s BadgeStats) bool { return s.CurrentStreak >= 30 },
	},
	{
		badge:  models.Badge{ID: "meals_50", Name: "Regular", Description: "Logged 50 meals.", Icon: "notebook", Category: models.BadgeCategoryLogging},
		earned: func(s BadgeStats) bool { return s.ConfirmedMeals >= 50 },
	},
	{
		badge:  models.Badge{ID: "meals_100", Name: "Centurion", Description: "Logged 100 meals.", Icon: "medal", Category: models.BadgeCategoryLogging},
		earned: func(s BadgeStats) bool { return s.ConfirmedMeals >= 100 },
	},
	{
		badge:  models.Badge{ID: "level_5", Name: "Rising", Description: "Reached level 5.", Icon: "trending-up", Category: models.BadgeCategoryLevel},
		earned: func(s BadgeStats) bool { return s.Level >= 5 },
	},
	{
		badge:  models.Badge{ID: "level_10", Name: "Veteran", Description: "Reached level 10.", Icon: "star", Category: models.BadgeCategoryLevel},
		earned: func(s BadgeStats) bool { return s.Level >= 10 },
	},
	{
		badge:  models.Badge{ID: "first_weigh_in", Name: "On the Scale", Description: "Logged your weight.", Icon: "scale", Category: models.BadgeCategoryBody},
		earned: func(s BadgeStats) bool { return s.WeightLogs >= 1 },
	},
	{
		badge:  models.Badge{ID: "social_butterfly", Name: "Social Butterfly", Description: "Made your first friend.", Icon: "users", Category: models.BadgeCategorySocial},
		earned: func(s BadgeStats) bool { return s.AcceptedFriends >= 1 },
	},
	{
		badge:  models.Badge{ID: "goal_reached", Name: "Goal Reached", Description: "Hit your target weight.", Icon: "target", Category: models.BadgeCategoryBody},
		earned: func(s BadgeStats) bool {
			return s.TargetWeight > 0 && s.Weight > 0 && math.Abs(s.Weight-s.TargetWeight) <= 0.5
		},
	},
}

var badgeIndex = func() map[string]models.Badge {
	idx := make(map[string]models.Badge, len(badgeRules))
	for _, r := range badgeRules {
		idx[r.badge.ID] = r.badge
	}
	return idx
}()

// BadgeDefinitions returns the static badge table in display order.
func BadgeDefinitions() []models.Badge {
	out := make([]models.Badge, 0, len(badgeRules))
	for _, r := range badgeRules {
		out = append(out, r.badge)
	}
	return out
}

// BadgeByID looks up a definition.
func BadgeByID(id string) (models.Badge, bool) {
	b, ok := badgeIndex[id]
	return b, ok
}

// EvaluateBadges returns unlock records for every rule that holds and whose
// id is not in unlocked. The result does not depend on rule order.
func EvaluateBadges(stats BadgeStats, unlocked map[string]bool, userID string, now time.Time) []models.UserBadge {
	var out []models.UserBadge
	for _, r := range badgeRules {
		if unlocked[r.badge.ID] || !r.earned(stats) {
			continue
		}
		out = append(out, models.UserBadge{
			UserID:     userID,
			BadgeID:    r.badge.ID,
			UnlockedAt: now,
			Seen:       false,
		})
	}
	return out
}

// BadgeView is a definition annotated with the user's unlock state.
type BadgeView struct {
	models.Badge
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
	Seen       bool       `json:"seen"`
}

type BadgeService struct {
	db *gorm.DB
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{db: db}
}

// Stats collects badge inputs for user using tx so the orchestrator sees its
// own uncommitted writes.
func (s *BadgeService) Stats(ctx context.Context, tx *gorm.DB, user *models.User) (BadgeStats, error) {
	stats := BadgeStats{
		CurrentStreak: user.CurrentStreak,
		Level:         LevelForXP(user.XP),
		Weight:        user.Weight,
		TargetWeight:  user.TargetWeight,
	}

	db := tx.WithContext(ctx)
	if err := db.Model(&models.Meal{}).
		Where("user_id = ? AND status = ?", user.ID, models.MealStatusConfirmed).
		Count(&stats.ConfirmedMeals).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.WeightLog{}).
		Where("user_id = ?", user.ID).
		Count(&stats.WeightLogs).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Friendship{}).
		Where("(requester_id = ? OR addressee_id = ?) AND status = ?", user.ID, user.ID, models.FriendshipAccepted).
		Count(&stats.AcceptedFriends).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *BadgeService) unlockedSet(ctx context.Context, tx *gorm.DB, userID string) (map[string]bool, error) {
	var ids []string
	if err := tx.WithContext(ctx).Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Check evaluates and persists new badges for user inside tx. Inserts ignore
// conflicts, so a concurrent award of the same id is dropped instead of
// duplicated, and only rows actually written are returned.
func (s *BadgeService) Check(ctx context.Context, tx *gorm.DB, user *models.User, now time.Time) ([]models.Badge, error) {
	stats, err := s.Stats(ctx, tx, user)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.unlockedSet(ctx, tx, user.ID)
	if err != nil {
		return nil, err
	}

	newBadges := []models.Badge{}
	for _, ub := range EvaluateBadges(stats, unlocked, user.ID, now) {
		res := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ub)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			newBadges = append(newBadges, badgeIndex[ub.BadgeID])
		}
	}
	return newBadges, nil
}

// CheckUser loads user by id and runs Check in its own transaction.
func (s *BadgeService) CheckUser(ctx context.Context, userID string, now time.Time) ([]models.Badge, error) {
	var newBadges []models.Badge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		var err error
		newBadges, err = s.Check(ctx, tx, &user, now)
		return err
	})
	return newBadges, err
}

// List returns every definition with the user's unlock state.
func (s *BadgeService) List(ctx context.Context, userID string) ([]BadgeView, error) {
	var owned []models.UserBadge
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&owned).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.UserBadge, len(owned))
	for _, ub := range owned {
		byID[ub.BadgeID] = ub
	}

	views := make([]BadgeView, 0, len(badgeRules))
	for _, def := range BadgeDefinitions() {
		v := BadgeView{Badge: def}
		if ub, ok := byID[def.ID]; ok {
			unlockedAt := ub.UnlockedAt
			v.Unlocked = true
			v.UnlockedAt = &unlockedAt
			v.Seen = ub.Seen
		}
		views = append(views, v)
	}
	return views, nil
}

// MarkSeen acknowledges unlocked badges. It never unlocks anything.
func (s *BadgeService) MarkSeen(ctx context.Context, userID string, badgeIDs []string) (int64, error) {
	if len(badgeIDs) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id IN ? AND seen = ?", userID, badgeIDs, false).
		Update("seen", true)
	return res.RowsAffected, res.Error
}

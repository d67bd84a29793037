package services

import (
	"context"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/models"
	"gorm.io/gorm"
)

const (
	LeaderboardSize   = 20
	LeaderboardWindow = 7 * 24 * time.Hour
	LeaderboardTTL    = 60 * time.Second
)

const weeklyKey = "weekly"

type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	FirstName     string `json:"firstName"`
	Level         int    `json:"level"`
	CurrentStreak int    `json:"currentStreak"`
	WeeklyXP      int    `json:"weeklyXp"`
}

// LeaderboardService ranks users by XP gained over the trailing week. The
// cache is per process.
type LeaderboardService struct {
	db    *gorm.DB
	clock clockwork.Clock
	cache *TTLCache[string, []LeaderboardEntry]
}

func NewLeaderboardService(db *gorm.DB, clock clockwork.Clock, cache *TTLCache[string, []LeaderboardEntry]) *LeaderboardService {
	return &LeaderboardService{db: db, clock: clock, cache: cache}
}

// Invalidate drops the cached ranking.
func (s *LeaderboardService) Invalidate() {
	s.cache.Delete(weeklyKey)
}

// Weekly calculates or returns the cached top entries.
func (s *LeaderboardService) Weekly(ctx context.Context) ([]LeaderboardEntry, error) {
	if cached, ok := s.cache.Get(weeklyKey); ok {
		return cached, nil
	}

	since := s.clock.Now().Add(-LeaderboardWindow).UTC()

	type xpTotal struct {
		UserID string
		Total  int
	}
	var totals []xpTotal
	if err := s.db.WithContext(ctx).Model(&models.XPEvent{}).
		Select("user_id, SUM(amount) AS total").
		Where("created_at >= ?", since).
		Group("user_id").
		Having("SUM(amount) > 0").
		Order("total DESC").
		Limit(LeaderboardSize * 2).
		Scan(&totals).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.UserID)
	}
	var users []models.User
	if len(ids) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	entries := make([]LeaderboardEntry, 0, len(totals))
	for _, t := range totals {
		u, ok := byID[t.UserID]
		if !ok {
			continue // deleted user
		}
		entries = append(entries, LeaderboardEntry{
			UserID:        u.ID,
			Username:      u.Username,
			FirstName:     u.FirstName,
			Level:         u.Level,
			CurrentStreak: u.CurrentStreak,
			WeeklyXP:      t.Total,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].WeeklyXP != entries[j].WeeklyXP {
			return entries[i].WeeklyXP > entries[j].WeeklyXP
		}
		if entries[i].CurrentStreak != entries[j].CurrentStreak {
			return entries[i].CurrentStreak > entries[j].CurrentStreak
		}
		return entries[i].UserID < entries[j].UserID
	})

	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	s.cache.Set(weeklyKey, entries)
	return entries, nil
}

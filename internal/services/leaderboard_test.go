package services

import (
	"context"
	"testing"
	"time"

	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLeaderboard(ts *testServices) *LeaderboardService {
	return NewLeaderboardService(ts.db, ts.clock, NewTTLCache[string, []LeaderboardEntry](ts.clock, LeaderboardTTL))
}

func awardXP(t *testing.T, db *gorm.DB, userID string, amount int, when time.Time) {
	t.Helper()
	require.NoError(t, LogXP(context.Background(), db, userID, models.XPReasonMeal, amount, when))
}

func TestLeaderboardWeekly_Ranking(t *testing.T) {
	now := at(2025, 3, 10, 12, 0)
	ts := newTestServices(t, now)
	lb := newLeaderboard(ts)

	anna := createUser(t, ts.db, 9101)
	boris := createUser(t, ts.db, 9102, func(u *models.User) { u.CurrentStreak = 4 })
	vera := createUser(t, ts.db, 9103, func(u *models.User) { u.CurrentStreak = 9 })
	idle := createUser(t, ts.db, 9104)

	awardXP(t, ts.db, anna.ID, 60, now.Add(-time.Hour))
	awardXP(t, ts.db, anna.ID, 10, now.Add(-2*24*time.Hour))
	awardXP(t, ts.db, boris.ID, 40, now.Add(-time.Hour))
	awardXP(t, ts.db, vera.ID, 40, now.Add(-3*time.Hour))
	// outside the trailing week
	awardXP(t, ts.db, idle.ID, 500, now.Add(-8*24*time.Hour))

	entries, err := lb.Weekly(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, anna.ID, entries[0].UserID)
	assert.Equal(t, 70, entries[0].WeeklyXP)
	assert.Equal(t, 1, entries[0].Rank)
	// equal XP falls back to the longer streak
	assert.Equal(t, vera.ID, entries[1].UserID)
	assert.Equal(t, boris.ID, entries[2].UserID)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestLeaderboardWeekly_CachedUntilInvalidated(t *testing.T) {
	now := at(2025, 3, 10, 12, 0)
	ts := newTestServices(t, now)
	lb := newLeaderboard(ts)
	anna := createUser(t, ts.db, 9105)
	boris := createUser(t, ts.db, 9106)

	awardXP(t, ts.db, anna.ID, 30, now)
	entries, err := lb.Weekly(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	awardXP(t, ts.db, boris.ID, 50, now)
	entries, err = lb.Weekly(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "served from cache")

	lb.Invalidate()
	entries, err = lb.Weekly(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, boris.ID, entries[0].UserID)
}

func TestLeaderboardWeekly_CacheExpires(t *testing.T) {
	now := at(2025, 3, 10, 12, 0)
	ts := newTestServices(t, now)
	lb := newLeaderboard(ts)
	anna := createUser(t, ts.db, 9107)

	entries, err := lb.Weekly(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)

	awardXP(t, ts.db, anna.ID, 30, now)
	ts.clock.Advance(LeaderboardTTL)
	entries, err = lb.Weekly(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLeaderboardWeekly_Limit(t *testing.T) {
	now := at(2025, 3, 10, 12, 0)
	ts := newTestServices(t, now)
	lb := newLeaderboard(ts)

	for i := 0; i < LeaderboardSize+5; i++ {
		u := createUser(t, ts.db, int64(9200+i))
		awardXP(t, ts.db, u.ID, 10+i, now)
	}

	entries, err := lb.Weekly(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, LeaderboardSize)
	assert.Equal(t, 10+LeaderboardSize+4, entries[0].WeeklyXP)
}

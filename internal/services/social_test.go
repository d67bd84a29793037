package services

import (
	"context"
	"testing"

	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSocialService(t *testing.T) (*testServices, *SocialService) {
	ts := newTestServices(t, at(2025, 3, 10, 12, 0))
	return ts, NewSocialService(ts.db, ts.badges, ts.clock)
}

func TestRequestAndAcceptFriend(t *testing.T) {
	ts, svc := newSocialService(t)
	ctx := context.Background()
	anna := createUser(t, ts.db, 8001)
	boris := createUser(t, ts.db, 8002, func(u *models.User) { u.FirstName = "Boris" })

	req, err := svc.RequestFriend(ctx, anna.ID, boris.TelegramID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipPending, req.Status)

	// a repeated request returns the existing row
	again, err := svc.RequestFriend(ctx, anna.ID, boris.TelegramID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, again.ID)

	// only the addressee may accept
	_, err = svc.AcceptFriend(ctx, anna.ID, req.ID)
	assert.ErrorIs(t, err, ErrFriendshipNotFound)

	accepted, err := svc.AcceptFriend(ctx, boris.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)

	for _, id := range []string{anna.ID, boris.ID} {
		var badge models.UserBadge
		require.NoError(t, ts.db.First(&badge, "user_id = ? AND badge_id = ?", id, "social_butterfly").Error)
	}

	friends, err := svc.ListFriends(ctx, boris.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.True(t, friends[0].Incoming)
	assert.Equal(t, anna.ID, friends[0].UserID)
	assert.Equal(t, "Anna", friends[0].FirstName)

	friends, err = svc.ListFriends(ctx, anna.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.False(t, friends[0].Incoming)
	assert.Equal(t, "Boris", friends[0].FirstName)
}

func TestRequestFriend_ReverseRequestAccepts(t *testing.T) {
	ts, svc := newSocialService(t)
	ctx := context.Background()
	anna := createUser(t, ts.db, 8003)
	boris := createUser(t, ts.db, 8004)

	req, err := svc.RequestFriend(ctx, anna.ID, boris.TelegramID)
	require.NoError(t, err)

	back, err := svc.RequestFriend(ctx, boris.ID, anna.TelegramID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, back.ID)
	assert.Equal(t, models.FriendshipAccepted, back.Status)

	var count int64
	require.NoError(t, ts.db.Model(&models.Friendship{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRequestFriend_Errors(t *testing.T) {
	ts, svc := newSocialService(t)
	anna := createUser(t, ts.db, 8005)

	_, err := svc.RequestFriend(context.Background(), anna.ID, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.RequestFriend(context.Background(), anna.ID, anna.TelegramID)
	assert.ErrorIs(t, err, ErrSelfFriendship)
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/kcalbot/kcalbot-backend/internal/models"
	"github.com/kcalbot/kcalbot-backend/pkg/logger"
	"gorm.io/gorm"
)

// FriendView is one friend connection as seen by the current user.
type FriendView struct {
	FriendshipID  string                  `json:"friendshipId"`
	Status        models.FriendshipStatus `json:"status"`
	Incoming      bool                    `json:"incoming"`
	UserID        string                  `json:"userId"`
	TelegramID    int64                   `json:"telegramId"`
	Username      string                  `json:"username"`
	FirstName     string                  `json:"firstName"`
	Level         int                     `json:"level"`
	CurrentStreak int                     `json:"currentStreak"`
}

type SocialService struct {
	db     *gorm.DB
	badges *BadgeService
	clock  clockwork.Clock
}

func NewSocialService(db *gorm.DB, badges *BadgeService, clock clockwork.Clock) *SocialService {
	return &SocialService{db: db, badges: badges, clock: clock}
}

// RequestFriend sends a request to the user with the given Telegram id. A
// request in the opposite direction is accepted instead.
func (s *SocialService) RequestFriend(ctx context.Context, requesterID string, telegramID int64) (*models.Friendship, error) {
	var target models.User
	if err := s.db.WithContext(ctx).First(&target, "telegram_id = ?", telegramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if target.ID == requesterID {
		return nil, ErrSelfFriendship
	}

	var existing models.Friendship
	err := s.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			requesterID, target.ID, target.ID, requesterID).
		First(&existing).Error
	if err == nil {
		if existing.Status == models.FriendshipPending && existing.AddresseeID == requesterID {
			return s.AcceptFriend(ctx, requesterID, existing.ID)
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	friendship := models.Friendship{
		RequesterID: requesterID,
		AddresseeID: target.ID,
		Status:      models.FriendshipPending,
	}
	if err := s.db.WithContext(ctx).Create(&friendship).Error; err != nil {
		return nil, fmt.Errorf("create friendship: %w", err)
	}
	return &friendship, nil
}

// AcceptFriend accepts a pending request addressed to userID and evaluates
// badges for both sides.
func (s *SocialService) AcceptFriend(ctx context.Context, userID, friendshipID string) (*models.Friendship, error) {
	now := s.clock.Now().UTC()

	var friendship models.Friendship
	if err := s.db.WithContext(ctx).
		First(&friendship, "id = ? AND addressee_id = ?", friendshipID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFriendshipNotFound
		}
		return nil, err
	}
	if friendship.Status == models.FriendshipAccepted {
		return &friendship, nil
	}

	if err := s.db.WithContext(ctx).Model(&friendship).Updates(map[string]interface{}{
		"status":      models.FriendshipAccepted,
		"accepted_at": now,
	}).Error; err != nil {
		return nil, err
	}
	friendship.Status = models.FriendshipAccepted
	friendship.AcceptedAt = &now

	for _, id := range []string{friendship.RequesterID, friendship.AddresseeID} {
		if _, err := s.badges.CheckUser(ctx, id, now); err != nil {
			logger.Error().Err(err).Str("user_id", id).Msg("Badge check after friendship failed")
		}
	}
	return &friendship, nil
}

func (s *SocialService) ListFriends(ctx context.Context, userID string) ([]FriendView, error) {
	var friendships []models.Friendship
	if err := s.db.WithContext(ctx).
		Preload("Requester").Preload("Addressee").
		Where("requester_id = ? OR addressee_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&friendships).Error; err != nil {
		return nil, err
	}

	views := make([]FriendView, 0, len(friendships))
	for _, f := range friendships {
		other := f.Addressee
		incoming := false
		if f.AddresseeID == userID {
			other = f.Requester
			incoming = true
		}
		views = append(views, FriendView{
			FriendshipID:  f.ID,
			Status:        f.Status,
			Incoming:      incoming,
			UserID:        other.ID,
			TelegramID:    other.TelegramID,
			Username:      other.Username,
			FirstName:     other.FirstName,
			Level:         other.Level,
			CurrentStreak: other.CurrentStreak,
		})
	}
	return views, nil
}

package services

import (
	"context"
	"time"

	"github.com/kcalbot/kcalbot-backend/internal/models"
	"gorm.io/gorm"
)

// LogXP appends an award to the XP ledger. Zero awards are not recorded.
func LogXP(ctx context.Context, tx *gorm.DB, userID string, reason models.XPReason, amount int, at time.Time) error {
	if amount == 0 {
		return nil
	}
	event := models.XPEvent{
		UserID:    userID,
		Reason:    reason,
		Amount:    amount,
		CreatedAt: at.UTC(),
	}
	return tx.WithContext(ctx).Create(&event).Error
}

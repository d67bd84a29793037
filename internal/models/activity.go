package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type XPReason string

const (
	XPReasonMeal   XPReason = "MEAL_CONFIRMED"
	XPReasonWeight XPReason = "WEIGHT_LOGGED"
)

// XPEvent is the append-only ledger of XP awards. The weekly leaderboard
// sums it over a trailing window.
type XPEvent struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	UserID    string    `gorm:"index:idx_xp_events_user_created,priority:1;type:text;not null" json:"userId"`
	Reason    XPReason  `gorm:"type:text;not null" json:"reason"`
	Amount    int       `json:"amount"`
	CreatedAt time.Time `gorm:"index:idx_xp_events_user_created,priority:2" json:"createdAt"`
}

func (XPEvent) TableName() string {
	return "xp_events"
}

func (e *XPEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return
}

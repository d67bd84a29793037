package models

import "time"

type BadgeCategory string

const (
	BadgeCategoryLogging BadgeCategory = "LOGGING"
	BadgeCategoryStreak  BadgeCategory = "STREAK"
	BadgeCategoryLevel   BadgeCategory = "LEVEL"
	BadgeCategorySocial  BadgeCategory = "SOCIAL"
	BadgeCategoryBody    BadgeCategory = "BODY"
)

// Badge is a static achievement definition. Definitions live in code; only
// unlocks are persisted.
type Badge struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Category    BadgeCategory `json:"category"`
}

// UserBadge is an unlocked achievement. The composite key keeps one row per
// user and badge.
type UserBadge struct {
	UserID     string    `gorm:"primaryKey;type:text" json:"userId"`
	BadgeID    string    `gorm:"primaryKey;type:text" json:"badgeId"`
	UnlockedAt time.Time `json:"unlockedAt"`
	Seen       bool      `gorm:"default:false" json:"seen"`
}

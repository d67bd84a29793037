package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

type User struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Telegram identity
	TelegramID int64  `gorm:"uniqueIndex;not null" json:"telegramId"`
	Username   string `json:"username"`
	FirstName  string `json:"firstName"`
	Language   string `gorm:"type:text;default:'en'" json:"language"`

	// Nutrition profile
	DailyGoal     int     `gorm:"default:2000" json:"dailyGoal"`
	Gender        Gender  `gorm:"type:text" json:"gender"`
	Age           int     `json:"age"`
	Height        float64 `json:"height"` // cm
	Weight        float64 `json:"weight"` // kg
	TargetWeight  float64 `json:"targetWeight"`
	ActivityLevel string  `gorm:"type:text" json:"activityLevel"`
	Goal          Goal    `gorm:"type:text" json:"goal"`

	// Gamification
	XP            int        `gorm:"default:0;index" json:"xp"`
	Level         int        `gorm:"default:1" json:"level"`
	CurrentStreak int        `gorm:"default:0" json:"currentStreak"`
	LongestStreak int        `gorm:"default:0" json:"longestStreak"`
	LastLogDate   *time.Time `json:"lastLogDate"`

	// Daily report card cache
	LastReportCard     datatypes.JSON `gorm:"type:text" json:"-"` // stored verbatim, not as jsonb
	LastReportCardDate string         `gorm:"type:text" json:"lastReportCardDate"`

	PremiumUntil *time.Time `json:"premiumUntil"`

	Reminders ReminderSettings `gorm:"embedded;embeddedPrefix:reminder_" json:"reminders"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	ResolveUserDefaults(u)
	return
}

// IsPremium reports whether the subscription is active at now.
func (u *User) IsPremium(now time.Time) bool {
	return u.PremiumUntil != nil && u.PremiumUntil.After(now)
}

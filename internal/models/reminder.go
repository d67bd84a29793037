package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderCategory string

const (
	ReminderBreakfast  ReminderCategory = "breakfast"
	ReminderLunch      ReminderCategory = "lunch"
	ReminderDinner     ReminderCategory = "dinner"
	ReminderStreakRisk ReminderCategory = "streak_risk"
	ReminderWeighIn    ReminderCategory = "weekly_weigh_in"
	ReminderReport     ReminderCategory = "daily_report"
)

// ReminderSettings is embedded into User with the reminder_ column prefix.
// Times are HH:MM in the reference timezone.
type ReminderSettings struct {
	BreakfastEnabled bool   `gorm:"default:false" json:"breakfastEnabled"`
	BreakfastTime    string `gorm:"type:text" json:"breakfastTime"`
	LunchEnabled     bool   `gorm:"default:false" json:"lunchEnabled"`
	LunchTime        string `gorm:"type:text" json:"lunchTime"`
	DinnerEnabled    bool   `gorm:"default:false" json:"dinnerEnabled"`
	DinnerTime       string `gorm:"type:text" json:"dinnerTime"`
	StreakEnabled    bool   `gorm:"default:false" json:"streakEnabled"`
	StreakTime       string `gorm:"type:text" json:"streakTime"`
	WeighInEnabled   bool   `gorm:"default:false" json:"weighInEnabled"`
	WeighInTime      string `gorm:"type:text" json:"weighInTime"`
	WeighInDay       int    `gorm:"default:1" json:"weighInDay"` // 0 = Sunday
	ReportEnabled    bool   `gorm:"default:false" json:"reportEnabled"`
	ReportTime       string `gorm:"type:text" json:"reportTime"`
}

// ReminderDelivery is an audit row written after a reminder was handed to Telegram.
type ReminderDelivery struct {
	ID       string           `gorm:"primaryKey;type:text" json:"id"`
	UserID   string           `gorm:"index;type:text;not null" json:"userId"`
	Category ReminderCategory `gorm:"type:text;not null" json:"category"`
	Minute   string           `gorm:"type:text;not null" json:"minute"` // 2006-01-02T15:04
	SentAt   time.Time        `json:"sentAt"`
}

func (d *ReminderDelivery) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.SentAt.IsZero() {
		d.SentAt = time.Now()
	}
	return
}

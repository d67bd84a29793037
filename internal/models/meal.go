package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MealStatus string

const (
	MealStatusPending   MealStatus = "pending"
	MealStatusConfirmed MealStatus = "confirmed"
)

type MealSource string

const (
	MealSourceText  MealSource = "text"
	MealSourcePhoto MealSource = "photo"
	MealSourceVoice MealSource = "voice"
)

// Meal is one logged eating event. Only confirmed meals count toward stats.
type Meal struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	UserID string `gorm:"index:idx_meals_user_status_eaten,priority:1;type:text;not null" json:"userId"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	Name     string     `json:"name"`
	Calories float64    `json:"calories"`
	Protein  float64    `json:"protein"`
	Carbs    float64    `json:"carbs"`
	Fat      float64    `json:"fat"`
	Status   MealStatus `gorm:"index:idx_meals_user_status_eaten,priority:2;type:text;default:'pending'" json:"status"`
	Source   MealSource `gorm:"type:text;default:'text'" json:"source"`

	EatenAt     time.Time  `gorm:"index:idx_meals_user_status_eaten,priority:3;not null" json:"eatenAt"`
	ConfirmedAt *time.Time `json:"confirmedAt"`
	ImageURL    string     `json:"imageUrl,omitempty"`

	// Raw analyzer output kept for re-edits
	Analysis datatypes.JSON `json:"-"`

	Items []MealItem `gorm:"foreignKey:MealID;constraint:OnDelete:CASCADE" json:"items"`
}

// MealItem is one itemized entry of a meal breakdown.
type MealItem struct {
	ID       string  `gorm:"primaryKey;type:text" json:"id"`
	MealID   string  `gorm:"index;type:text;not null" json:"mealId"`
	Name     string  `json:"name"`
	Grams    float64 `json:"grams"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Status == "" {
		m.Status = MealStatusPending
	}
	return
}

func (mi *MealItem) BeforeCreate(tx *gorm.DB) (err error) {
	if mi.ID == "" {
		mi.ID = uuid.New().String()
	}
	return
}

// WeightLog is one body-weight measurement.
type WeightLog struct {
	ID       string    `gorm:"primaryKey;type:text" json:"id"`
	UserID   string    `gorm:"index;type:text;not null" json:"userId"`
	Weight   float64   `json:"weight"`
	LoggedAt time.Time `json:"loggedAt"`
}

func (w *WeightLog) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.LoggedAt.IsZero() {
		w.LoggedAt = time.Now()
	}
	return
}

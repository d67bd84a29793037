package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is a friend connection between two users.
type Friendship struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	RequesterID string `gorm:"uniqueIndex:idx_friend_pair;type:text;not null" json:"requesterId"`
	Requester   User   `gorm:"foreignKey:RequesterID" json:"requester"`

	AddresseeID string `gorm:"uniqueIndex:idx_friend_pair;type:text;not null" json:"addresseeId"`
	Addressee   User   `gorm:"foreignKey:AddresseeID" json:"addressee"`

	Status     FriendshipStatus `gorm:"type:text;default:'pending'" json:"status"`
	AcceptedAt *time.Time       `json:"acceptedAt"`
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.Status == "" {
		f.Status = FriendshipPending
	}
	return
}

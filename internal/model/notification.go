package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationFriendRequest NotificationType = "friend_request"
)

func (t NotificationType) IsValid() bool {
	return t == NotificationFriendRequest
}

type Notification struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`  // recipient
	ActorID      *uuid.UUID       `gorm:"type:uuid" json:"actor_id,omitempty"`      // user who triggered it
	FriendshipID *uuid.UUID       `gorm:"type:uuid" json:"friendship_id,omitempty"` // friendship it concerns
	Type         NotificationType `gorm:"size:50;not null" json:"type"`
	IsRead       bool             `gorm:"default:false" json:"is_read"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`

	// Associations - pointers to avoid recursion if User has Notifications
	User       *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Actor      *User       `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE" json:"actor,omitempty"`
	Friendship *Friendship `gorm:"foreignKey:FriendshipID;constraint:OnDelete:SET NULL" json:"friendship,omitempty"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

func (m MediaType) IsValid() bool {
	return m == MediaImage || m == MediaVideo
}

// Conversation scopes messages to exactly two participants. At most one
// conversation exists per ordered pair; lookups check both orders.
type Conversation struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Participant1ID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair" json:"participant1_id"`
	Participant2ID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair" json:"participant2_id"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Participant1 *User     `gorm:"foreignKey:Participant1ID;constraint:OnDelete:CASCADE" json:"participant1,omitempty"`
	Participant2 *User     `gorm:"foreignKey:Participant2ID;constraint:OnDelete:CASCADE" json:"participant2,omitempty"`
	Messages     []Message `gorm:"constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// HasParticipant reports whether userID belongs to the conversation.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.Participant1ID == userID || c.Participant2ID == userID
}

type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null" json:"sender_id"`
	Content        *string    `gorm:"type:text" json:"content,omitempty"`
	MediaURL       *string    `gorm:"type:text" json:"media_url,omitempty"`
	MediaType      *MediaType `gorm:"size:10" json:"media_type,omitempty"`
	IsRead         bool       `gorm:"default:false" json:"is_read"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Sender *User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
}

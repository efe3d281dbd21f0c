package models

import (
	"github.com/google/uuid"
)

// Vote is keyed by (chat_id, message_id); at most one vote per message.
type Vote struct {
	ChatID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"chat_id"`
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey" json:"message_id"`
	IsUpvoted bool      `gorm:"not null" json:"is_upvoted"`

	Chat    Chat    `gorm:"foreignKey:ChatID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Message Message `gorm:"foreignKey:MessageID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Vote) TableName() string {
	return "votes"
}

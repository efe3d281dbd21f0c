package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
)

// Chat is created on the first message of a conversation; the title is a short
// model-derived summary of that message.
type Chat struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title      string    `gorm:"type:text;not null" json:"title"`
	Visibility string    `gorm:"type:text;not null;default:'private'" json:"visibility"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Chat) TableName() string {
	return "chats"
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

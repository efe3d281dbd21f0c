package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message rows are append-only and totally ordered by created_at per chat.
// Parts holds the ordered content blocks, attachments the file references.
type Message struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ChatID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"chat_id"`
	Role        string         `gorm:"type:text;not null" json:"role"`
	Parts       datatypes.JSON `gorm:"type:jsonb;not null" json:"parts"`
	Attachments datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"attachments"`
	CreatedAt   time.Time      `json:"created_at"`

	Chat Chat `gorm:"foreignKey:ChatID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return nil
}

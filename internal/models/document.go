package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindText   = "text"
	KindCode   = "code"
	KindImage  = "image"
	KindSheet  = "sheet"
	KindSlides = "slides"
)

// Document rows are versions: every save inserts a new row sharing the same id
// with a distinct created_at. The current version of an artifact is the row
// with the maximum created_at for its id.
type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"primaryKey" json:"created_at"`
	Title     string    `gorm:"type:text;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	Kind      string    `gorm:"type:text;not null" json:"kind"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Document) TableName() string {
	return "documents"
}

// ValidKind reports whether kind names one of the closed artifact variants.
func ValidKind(kind string) bool {
	switch kind {
	case KindText, KindCode, KindImage, KindSheet, KindSlides:
		return true
	}
	return false
}

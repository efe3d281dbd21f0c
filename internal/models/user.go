package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User carries the credit ledger alongside the identity columns. Credits are
// mutated only by settlement and by billing webhook grants.
type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email           string     `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Credits         int        `gorm:"not null;default:0" json:"credits"`
	PlanType        string     `gorm:"type:text;not null;default:'free'" json:"plan_type"`
	HasAccess       bool       `gorm:"not null;default:false" json:"has_access"`
	LastCreditReset *time.Time `json:"last_credit_reset"`
	CustomerID      string     `gorm:"type:text" json:"-"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

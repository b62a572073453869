package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecoveryToken is a single-use password recovery token bound to a recovery email
type RecoveryToken struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Email     string    `gorm:"not null;index" json:"email"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"` // Don't expose token in JSON
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

// BeforeCreate hook to generate UUID
func (r *RecoveryToken) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// IsExpired checks if the token has expired at now
func (r *RecoveryToken) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// TableName specifies the table name for RecoveryToken model
func (RecoveryToken) TableName() string {
	return "recovery_tokens"
}

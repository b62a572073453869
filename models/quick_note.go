package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuickNote is a dashboard scratchpad entry. Positions form a dense 0..N-1 sequence.
type QuickNote struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Position  int       `gorm:"not null;index" json:"position"`
}

// BeforeCreate hook to generate UUID
func (n *QuickNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for QuickNote model
func (QuickNote) TableName() string {
	return "quick_notes"
}

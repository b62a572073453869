package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OtherActivity is an entry in the "Otras Gestiones" ledger: a service
// interaction that is not a PQR.
type OtherActivity struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OccurredAt           time.Time `gorm:"not null;index" json:"occurred_at"`
	IdentificationNumber string    `gorm:"size:30;index" json:"identification_number"`
	FullName             string    `json:"full_name"`
	Phone                string    `gorm:"size:30" json:"phone"`
	Entity               string    `gorm:"index" json:"entity"`
	Activity             string    `gorm:"index" json:"activity"`
	Notes                *string   `gorm:"type:text" json:"notes,omitempty"`
}

// BeforeCreate hook to generate UUID
func (o *OtherActivity) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.OccurredAt.IsZero() {
		o.OccurredAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for OtherActivity model
func (OtherActivity) TableName() string {
	return "other_activities"
}

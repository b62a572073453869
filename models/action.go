package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Action type constants
const (
	ActionTypeResponse     = "Respuesta"
	ActionTypeTransfer     = "Traslado"
	ActionTypeArchive      = "Archivo"
	ActionTypeObservation  = "Observación"
	ActionTypeStatusChange = "Cambio de Estado"
)

// DefaultActionUser is recorded when an action carries no acting user
const DefaultActionUser = "Sistema"

// Action (actuación) is an append-only follow-up entry on a case
type Action struct {
	ID          string    `gorm:"type:uuid;primarykey" json:"id"`
	CaseID      string    `gorm:"type:uuid;not null;index" json:"case_id"`
	PerformedAt time.Time `gorm:"not null;index" json:"performed_at"`
	ActionType  string    `gorm:"size:40;not null" json:"action_type"`
	Note        string    `gorm:"type:text" json:"note"`
	PerformedBy string    `gorm:"size:120;not null;default:Sistema" json:"performed_by"`

	AttachmentData []byte  `json:"-"`
	AttachmentName *string `json:"attachment_name,omitempty"`
}

// BeforeCreate hook to generate UUID and timestamp
func (a *Action) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.PerformedAt.IsZero() {
		a.PerformedAt = time.Now()
	}
	if a.PerformedBy == "" {
		a.PerformedBy = DefaultActionUser
	}
	return nil
}

// TableName specifies the table name for Action model
func (Action) TableName() string {
	return "case_actions"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identification type constants
const (
	IdentificationCC  = "CC"  // Cédula de ciudadanía
	IdentificationNIT = "NIT" // Tax identification number (organisations)
	IdentificationCE  = "CE"  // Cédula de extranjería
	IdentificationTI  = "TI"  // Tarjeta de identidad
	IdentificationPP  = "PP"  // Passport
)

// Requester is the citizen or organisation that files a PQR.
// Requesters are shared across cases and never deleted with them.
type Requester struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	IdentificationType   string `gorm:"size:10;not null;uniqueIndex:idx_requester_identification" json:"identification_type"`
	IdentificationNumber string `gorm:"size:30;not null;uniqueIndex:idx_requester_identification;index" json:"identification_number"`
	FullName             string `gorm:"not null" json:"full_name"`

	Email   *string `json:"email,omitempty"`
	Phone   *string `gorm:"size:30" json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *Requester) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Requester model
func (Requester) TableName() string {
	return "requesters"
}

// IsValidIdentificationType checks if the identification type is supported
func IsValidIdentificationType(t string) bool {
	switch t {
	case IdentificationCC, IdentificationNIT, IdentificationCE, IdentificationTI, IdentificationPP:
		return true
	}
	return false
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Default office settings applied at first-run setup
const (
	DefaultCaseNumberPrefix       = "PQR"
	DefaultPetitionDays           = 15
	DefaultComplaintDays          = 15
	DefaultClaimDays              = 15
	DefaultAppealDays             = 10
	DefaultInformationRequestDays = 10
	DefaultBackupFrequencyDays    = 7
	DefaultEntityName             = "PERSONERÍA MUNICIPAL"
)

// SystemConfig holds the office identity, response deadlines and the shared
// office password. The application keeps a single row.
type SystemConfig struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FirstSetupDone bool   `gorm:"not null;default:false" json:"first_setup_done"`
	HashedPassword string `json:"-"`

	// Response deadlines in business days per case type
	PetitionDays           int `gorm:"not null;default:15" json:"petition_days"`
	ComplaintDays          int `gorm:"not null;default:15" json:"complaint_days"`
	ClaimDays              int `gorm:"not null;default:15" json:"claim_days"`
	AppealDays             int `gorm:"not null;default:10" json:"appeal_days"`
	InformationRequestDays int `gorm:"not null;default:10" json:"information_request_days"`

	CaseNumberPrefix string `gorm:"size:20;not null;default:PQR" json:"case_number_prefix"`

	AutoBackup          bool       `gorm:"not null;default:false" json:"auto_backup"`
	BackupFrequencyDays int        `gorm:"not null;default:7" json:"backup_frequency_days"`
	LastBackupAt        *time.Time `json:"last_backup_at,omitempty"`

	RecoveryEmail1 *string `gorm:"column:recovery_email_1" json:"recovery_email_1,omitempty"`
	RecoveryEmail2 *string `gorm:"column:recovery_email_2" json:"recovery_email_2,omitempty"`

	// Office identity printed on vouchers and reports
	EntityName     *string `json:"entity_name,omitempty"`
	EntityLogo     []byte  `json:"-"`
	EntityEmail    *string `json:"entity_email,omitempty"`
	EntityPhone    *string `json:"entity_phone,omitempty"`
	EntityWhatsapp *string `json:"entity_whatsapp,omitempty"`
	EntityNIT      *string `json:"entity_nit,omitempty"`

	HasLogo bool `gorm:"-" json:"has_logo"`
}

// BeforeCreate hook to generate UUID
func (s *SystemConfig) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// AfterFind sets the logo flag
func (s *SystemConfig) AfterFind(tx *gorm.DB) error {
	s.HasLogo = len(s.EntityLogo) > 0
	return nil
}

// TableName specifies the table name for SystemConfig model
func (SystemConfig) TableName() string {
	return "system_configs"
}

// NewDefaultSystemConfig returns the settings used before an operator customises them
func NewDefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		PetitionDays:           DefaultPetitionDays,
		ComplaintDays:          DefaultComplaintDays,
		ClaimDays:              DefaultClaimDays,
		AppealDays:             DefaultAppealDays,
		InformationRequestDays: DefaultInformationRequestDays,
		CaseNumberPrefix:       DefaultCaseNumberPrefix,
		BackupFrequencyDays:    DefaultBackupFrequencyDays,
	}
}

// DeadlineDays returns the configured response deadline for a case type
func (s *SystemConfig) DeadlineDays(caseType string) int {
	switch caseType {
	case CaseTypePetition:
		return s.PetitionDays
	case CaseTypeComplaint:
		return s.ComplaintDays
	case CaseTypeClaim:
		return s.ClaimDays
	case CaseTypeAppeal:
		return s.AppealDays
	case CaseTypeInformationRequest:
		return s.InformationRequestDays
	}
	return 0
}

// Prefix returns the case number prefix, falling back to the default
func (s *SystemConfig) Prefix() string {
	if s == nil || s.CaseNumberPrefix == "" {
		return DefaultCaseNumberPrefix
	}
	return s.CaseNumberPrefix
}

// DisplayName returns the office name for printed documents
func (s *SystemConfig) DisplayName() string {
	if s == nil || s.EntityName == nil || *s.EntityName == "" {
		return DefaultEntityName
	}
	return *s.EntityName
}

// IsRecoveryEmail reports whether email is one of the configured recovery addresses
func (s *SystemConfig) IsRecoveryEmail(email string) bool {
	if email == "" {
		return false
	}
	for _, e := range []*string{s.RecoveryEmail1, s.RecoveryEmail2} {
		if e != nil && strings.EqualFold(*e, email) {
			return true
		}
	}
	return false
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case type constants (PQR categories)
const (
	CaseTypePetition           = "Petición"
	CaseTypeComplaint          = "Queja"
	CaseTypeClaim              = "Reclamo"
	CaseTypeAppeal             = "Recurso"
	CaseTypeInformationRequest = "Solicitud de Información"
)

// Case status constants
const (
	CaseStatusRegistered = "Registrada"
	CaseStatusInProgress = "En Trámite"
	CaseStatusAnswered   = "Respondida"
	CaseStatusClosed     = "Cerrada"
	CaseStatusArchived   = "Archivada"
)

// Reception channel constants
const (
	ChannelInPerson     = "Presencial"
	ChannelEmail        = "Correo Electrónico"
	ChannelWebsite      = "Página Web"
	ChannelPhone        = "Telefónico"
	ChannelSingleWindow = "Ventanilla Única"
)

// UnknownLabel is used in reports for records without a value in the grouped field
const UnknownLabel = "Desconocido"

// Case represents a filed PQR
type Case struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Radicado, e.g. 2024-PQR-0001
	CaseNumber string     `gorm:"size:60;not null;uniqueIndex" json:"case_number"`
	FiledAt    time.Time  `gorm:"not null;index" json:"filed_at"`
	DueDate    *time.Time `gorm:"index" json:"due_date,omitempty"`

	CaseType string  `gorm:"size:40;not null;index" json:"case_type"`
	Subject  string  `gorm:"type:text;not null" json:"subject"`
	Status   string  `gorm:"size:20;not null;default:Registrada;index" json:"status"`
	Channel  *string `gorm:"size:40" json:"channel,omitempty"`

	RequesterID string    `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester   Requester `gorm:"foreignKey:RequesterID" json:"requester"`

	// Documents are kept in the row; they are served through dedicated endpoints
	AttachmentData     []byte     `json:"-"`
	AttachmentName     *string    `json:"attachment_name,omitempty"`
	VoucherData        []byte     `json:"-"`
	VoucherGeneratedAt *time.Time `json:"voucher_generated_at,omitempty"`

	Actions []Action `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"actions,omitempty"`

	HasAttachment bool `gorm:"-" json:"has_attachment"`
	HasVoucher    bool `gorm:"-" json:"has_voucher"`
}

// BeforeCreate hook to generate UUID and set FiledAt
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.FiledAt.IsZero() {
		c.FiledAt = time.Now()
	}
	return nil
}

// AfterFind fills the document flags, which stay valid when blob columns are omitted
func (c *Case) AfterFind(tx *gorm.DB) error {
	c.HasAttachment = c.AttachmentName != nil || len(c.AttachmentData) > 0
	c.HasVoucher = c.VoucherGeneratedAt != nil || len(c.VoucherData) > 0
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// IsOverdue reports whether the case is past its due date and still awaiting an answer.
// A case without due date is never overdue.
func (c *Case) IsOverdue(now time.Time) bool {
	if c.DueDate == nil {
		return false
	}
	if c.Status == CaseStatusAnswered || c.Status == CaseStatusClosed {
		return false
	}
	return c.DueDate.Before(now)
}

// CaseTypes lists the supported case types
func CaseTypes() []string {
	return []string{
		CaseTypePetition,
		CaseTypeComplaint,
		CaseTypeClaim,
		CaseTypeAppeal,
		CaseTypeInformationRequest,
	}
}

// CaseStatuses lists the supported statuses in their usual order of progress
func CaseStatuses() []string {
	return []string{
		CaseStatusRegistered,
		CaseStatusInProgress,
		CaseStatusAnswered,
		CaseStatusClosed,
		CaseStatusArchived,
	}
}

// Channels lists the supported reception channels
func Channels() []string {
	return []string{
		ChannelInPerson,
		ChannelEmail,
		ChannelWebsite,
		ChannelPhone,
		ChannelSingleWindow,
	}
}

// IsValidCaseType checks if the case type is valid
func IsValidCaseType(caseType string) bool {
	return contains(CaseTypes(), caseType)
}

// IsValidCaseStatus checks if the status is valid
func IsValidCaseStatus(status string) bool {
	return contains(CaseStatuses(), status)
}

// IsValidChannel checks if the reception channel is valid
func IsValidChannel(channel string) bool {
	return contains(Channels(), channel)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Folder status constants
const (
	FolderStatusOpen     = "Abierto"
	FolderStatusClosed   = "Cerrado"
	FolderStatusArchived = "Archivado"
)

// Folder log actions
const (
	FolderLogCreated         = "Creación"
	FolderLogUpdated         = "Actualización"
	FolderLogStatusChanged   = "Cambio de Estado"
	FolderLogDocumentAdded   = "Documento agregado"
	FolderLogDocumentRemoved = "Documento eliminado"
)

// CaseFolder (expediente) groups documents and a log of administrative
// actions. It is independent of PQR cases.
type CaseFolder struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FolderNumber string    `gorm:"size:60;not null;uniqueIndex" json:"folder_number"`
	Title        string    `gorm:"not null" json:"title"`
	FolderType   string    `gorm:"size:120;index" json:"folder_type"`
	OpenedAt     time.Time `gorm:"not null;index" json:"opened_at"`
	Status       string    `gorm:"size:20;not null;default:Abierto;index" json:"status"`
	Description  *string   `gorm:"type:text" json:"description,omitempty"`

	Documents []FolderDocument `gorm:"foreignKey:FolderID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

// BeforeCreate hook to generate UUID and set OpenedAt
func (f *CaseFolder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.OpenedAt.IsZero() {
		f.OpenedAt = time.Now()
	}
	if f.Status == "" {
		f.Status = FolderStatusOpen
	}
	return nil
}

// TableName specifies the table name for CaseFolder model
func (CaseFolder) TableName() string {
	return "case_folders"
}

// IsValidFolderStatus checks if the folder status is valid
func IsValidFolderStatus(status string) bool {
	return status == FolderStatusOpen || status == FolderStatusClosed || status == FolderStatusArchived
}

// FolderDocument is a file uploaded to a folder. The bytes live in the
// storage provider under StorageKey.
type FolderDocument struct {
	ID         string    `gorm:"type:uuid;primarykey" json:"id"`
	FolderID   string    `gorm:"type:uuid;not null;index" json:"folder_id"`
	UploadedAt time.Time `gorm:"not null;index" json:"uploaded_at"`

	FileName    string  `gorm:"not null" json:"file_name"`
	StorageKey  string  `gorm:"not null" json:"-"` // Not exposed in JSON for security
	FileSize    int64   `gorm:"not null" json:"file_size"`
	MimeType    string  `json:"mime_type,omitempty"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *FolderDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for FolderDocument model
func (FolderDocument) TableName() string {
	return "folder_documents"
}

// FolderLogEntry is one line of a folder's bitácora
type FolderLogEntry struct {
	ID          string    `gorm:"type:uuid;primarykey" json:"id"`
	FolderID    string    `gorm:"type:uuid;not null;index" json:"folder_id"`
	OccurredAt  time.Time `gorm:"not null;index" json:"occurred_at"`
	Action      string    `gorm:"size:60;not null" json:"action"`
	Detail      string    `gorm:"type:text" json:"detail"`
	PerformedBy string    `gorm:"size:120" json:"performed_by"`
	DocumentID  *string   `gorm:"type:uuid" json:"document_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (l *FolderLogEntry) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.OccurredAt.IsZero() {
		l.OccurredAt = time.Now()
	}
	if l.PerformedBy == "" {
		l.PerformedBy = DefaultActionUser
	}
	return nil
}

// TableName specifies the table name for FolderLogEntry model
func (FolderLogEntry) TableName() string {
	return "folder_log_entries"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityType is a selectable category for other activities
type ActivityType struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
}

// BeforeCreate hook to generate UUID
func (a *ActivityType) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ActivityType model
func (ActivityType) TableName() string {
	return "activity_types"
}

// FolderType (tipo de expediente) is a selectable category for case folders
type FolderType struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
}

// BeforeCreate hook to generate UUID
func (f *FolderType) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for FolderType model
func (FolderType) TableName() string {
	return "folder_types"
}

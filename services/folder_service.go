package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"pqr_flow_app_go/db"
	"pqr_flow_app_go/models"

	"gorm.io/gorm"
)

// MaxFolderDocumentSize is the largest document accepted for a folder
const MaxFolderDocumentSize = 20 << 20

// FolderInput is the data of a new folder
type FolderInput struct {
	FolderNumber string
	Title        string
	FolderType   string
	Description  *string
}

// FolderUpdate is a partial folder update; nil fields are unchanged
type FolderUpdate struct {
	FolderNumber *string
	Title        *string
	FolderType   *string
	Status       *string
	Description  *string
}

// DocumentUpload is a file to be stored in a folder
type DocumentUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
	Description *string
}

// ListFolders returns folders, optionally filtered by type and status, most recently opened first
func ListFolders(database *gorm.DB, folderType, status string) ([]models.CaseFolder, error) {
	query := database.Model(&models.CaseFolder{})
	if folderType != "" {
		query = query.Where("folder_type = ?", folderType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var folders []models.CaseFolder
	if err := query.Order("opened_at DESC").Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// GetFolder loads a folder with its documents, newest first
func GetFolder(database *gorm.DB, id string) (*models.CaseFolder, error) {
	var folder models.CaseFolder
	err := database.Preload("Documents", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("uploaded_at DESC")
	}).First(&folder, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: folder %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}
	return &folder, nil
}

// CreateFolder opens a new folder and records it in the folder log
func CreateFolder(database *gorm.DB, input FolderInput, performedBy string) (*models.CaseFolder, error) {
	folder := &models.CaseFolder{
		FolderNumber: strings.TrimSpace(input.FolderNumber),
		Title:        SanitizeText(input.Title),
		FolderType:   SanitizeText(input.FolderType),
		Description:  SanitizeOptional(input.Description),
		OpenedAt:     nowFunc(),
		Status:       models.FolderStatusOpen,
	}
	if folder.FolderNumber == "" {
		return nil, fmt.Errorf("%w: folder number is required", ErrValidation)
	}
	if folder.Title == "" {
		return nil, fmt.Errorf("%w: folder title is required", ErrValidation)
	}

	err := database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Documents").Create(folder).Error; err != nil {
			return err
		}
		return appendFolderLog(tx, folder.ID, models.FolderLogCreated,
			fmt.Sprintf("Expediente %s creado", folder.FolderNumber), performedBy, nil)
	})
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: folder number %s already exists", ErrConflict, folder.FolderNumber)
		}
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	return folder, nil
}

// UpdateFolder applies a partial update and logs the changed fields
func UpdateFolder(database *gorm.DB, id string, input FolderUpdate, performedBy string) (*models.CaseFolder, error) {
	folder, err := GetFolder(database, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	var changed []string
	if input.FolderNumber != nil {
		number := strings.TrimSpace(*input.FolderNumber)
		if number == "" {
			return nil, fmt.Errorf("%w: folder number cannot be empty", ErrValidation)
		}
		if number != folder.FolderNumber {
			updates["folder_number"] = number
			changed = append(changed, "número")
		}
	}
	if input.Title != nil {
		title := SanitizeText(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: folder title cannot be empty", ErrValidation)
		}
		if title != folder.Title {
			updates["title"] = title
			changed = append(changed, "título")
		}
	}
	if input.FolderType != nil {
		updates["folder_type"] = SanitizeText(*input.FolderType)
		changed = append(changed, "tipo")
	}
	if input.Description != nil {
		updates["description"] = SanitizeOptional(input.Description)
		changed = append(changed, "descripción")
	}
	statusChanged := false
	if input.Status != nil && *input.Status != folder.Status {
		if !models.IsValidFolderStatus(*input.Status) {
			return nil, fmt.Errorf("%w: invalid folder status %q", ErrValidation, *input.Status)
		}
		updates["status"] = *input.Status
		statusChanged = true
	}

	if len(updates) == 0 {
		return folder, nil
	}

	err = database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CaseFolder{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if statusChanged {
			detail := fmt.Sprintf("Estado cambiado de %s a %s", folder.Status, *input.Status)
			if err := appendFolderLog(tx, id, models.FolderLogStatusChanged, detail, performedBy, nil); err != nil {
				return err
			}
		}
		if len(changed) > 0 {
			detail := "Campos actualizados: " + strings.Join(changed, ", ")
			if err := appendFolderLog(tx, id, models.FolderLogUpdated, detail, performedBy, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: folder number already exists", ErrConflict)
		}
		return nil, fmt.Errorf("failed to update folder: %w", err)
	}
	return GetFolder(database, id)
}

// DeleteFolder removes a folder with its documents and log. Stored files are
// removed after the records; a storage failure is logged only.
func DeleteFolder(ctx context.Context, database *gorm.DB, storage StorageProvider, id string) error {
	var keys []string
	err := database.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.CaseFolder{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: folder %s", ErrNotFound, id)
		}
		if err := tx.Model(&models.FolderDocument{}).Where("folder_id = ?", id).Pluck("storage_key", &keys).Error; err != nil {
			return err
		}
		if err := tx.Where("folder_id = ?", id).Delete(&models.FolderDocument{}).Error; err != nil {
			return err
		}
		if err := tx.Where("folder_id = ?", id).Delete(&models.FolderLogEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CaseFolder{}, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	for _, key := range keys {
		if err := storage.Delete(ctx, key); err != nil {
			log.Printf("[STORAGE] could not delete %s: %v", key, err)
		}
	}
	return nil
}

// AddFolderDocument stores a file and registers it on the folder
func AddFolderDocument(ctx context.Context, database *gorm.DB, storage StorageProvider, folderID string, upload DocumentUpload, performedBy string) (*models.FolderDocument, error) {
	name := filepath.Base(strings.TrimSpace(upload.FileName))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}
	if upload.Size > MaxFolderDocumentSize {
		return nil, fmt.Errorf("%w: file exceeds %d MB", ErrValidation, MaxFolderDocumentSize>>20)
	}
	if _, err := GetFolder(database, folderID); err != nil {
		return nil, err
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = contentTypeFromExt(name)
	}

	key := GenerateFolderDocumentKey(folderID, name)
	stored, err := storage.UploadReader(ctx, upload.Content, key, contentType, upload.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &models.FolderDocument{
		FolderID:    folderID,
		UploadedAt:  nowFunc(),
		FileName:    name,
		StorageKey:  stored.Key,
		FileSize:    stored.FileSize,
		MimeType:    contentType,
		Description: SanitizeOptional(upload.Description),
	}
	err = database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		return appendFolderLog(tx, folderID, models.FolderLogDocumentAdded, name, performedBy, &doc.ID)
	})
	if err != nil {
		// Do not leave an orphan file behind
		if delErr := storage.Delete(ctx, stored.Key); delErr != nil {
			log.Printf("[STORAGE] could not delete orphan %s: %v", stored.Key, delErr)
		}
		return nil, fmt.Errorf("failed to register document: %w", err)
	}
	return doc, nil
}

// ListFolderDocuments returns the documents of a folder, newest first
func ListFolderDocuments(database *gorm.DB, folderID string) ([]models.FolderDocument, error) {
	if _, err := GetFolder(database, folderID); err != nil {
		return nil, err
	}
	var docs []models.FolderDocument
	if err := database.Where("folder_id = ?", folderID).Order("uploaded_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func getFolderDocument(database *gorm.DB, folderID, docID string) (*models.FolderDocument, error) {
	var doc models.FolderDocument
	if err := database.Where("folder_id = ? AND id = ?", folderID, docID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, docID)
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return &doc, nil
}

// OpenFolderDocument returns a document's metadata and a reader over its content.
// The caller closes the reader.
func OpenFolderDocument(ctx context.Context, database *gorm.DB, storage StorageProvider, folderID, docID string) (*models.FolderDocument, io.ReadCloser, error) {
	doc, err := getFolderDocument(database, folderID, docID)
	if err != nil {
		return nil, nil, err
	}
	reader, _, err := storage.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}
	return doc, reader, nil
}

// DeleteFolderDocument removes a document from a folder and from storage
func DeleteFolderDocument(ctx context.Context, database *gorm.DB, storage StorageProvider, folderID, docID, performedBy string) error {
	doc, err := getFolderDocument(database, folderID, docID)
	if err != nil {
		return err
	}

	err = database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.FolderDocument{}, "id = ?", doc.ID).Error; err != nil {
			return err
		}
		return appendFolderLog(tx, folderID, models.FolderLogDocumentRemoved, doc.FileName, performedBy, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if err := storage.Delete(ctx, doc.StorageKey); err != nil {
		log.Printf("[STORAGE] could not delete %s: %v", doc.StorageKey, err)
	}
	return nil
}

// ListFolderLog returns the folder log, newest first
func ListFolderLog(database *gorm.DB, folderID string) ([]models.FolderLogEntry, error) {
	var n int64
	if err := database.Model(&models.CaseFolder{}).Where("id = ?", folderID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: folder %s", ErrNotFound, folderID)
	}

	var entries []models.FolderLogEntry
	err := database.Where("folder_id = ?", folderID).
		Order("occurred_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list folder log: %w", err)
	}
	return entries, nil
}

func appendFolderLog(tx *gorm.DB, folderID, action, detail, performedBy string, documentID *string) error {
	performedBy = SanitizeText(performedBy)
	if performedBy == "" {
		performedBy = models.DefaultActionUser
	}
	entry := &models.FolderLogEntry{
		FolderID:    folderID,
		OccurredAt:  nowFunc(),
		Action:      action,
		Detail:      detail,
		PerformedBy: performedBy,
		DocumentID:  documentID,
	}
	return tx.Create(entry).Error
}

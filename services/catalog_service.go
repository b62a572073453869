package services

import (
	"errors"
	"fmt"

	"pqr_flow_app_go/db"
	"pqr_flow_app_go/models"

	"gorm.io/gorm"
)

// CatalogEntry is a named entry of a selectable list
type CatalogEntry interface {
	models.ActivityType | models.FolderType
}

// ListCatalog returns the entries of a catalog by name
func ListCatalog[T CatalogEntry](database *gorm.DB) ([]T, error) {
	var entries []T
	if err := database.Order("name ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	return entries, nil
}

// CreateActivityType adds an activity type; names are unique
func CreateActivityType(database *gorm.DB, name string) (*models.ActivityType, error) {
	name, err := catalogName(name)
	if err != nil {
		return nil, err
	}
	entry := &models.ActivityType{Name: name}
	if err := createCatalogEntry(database, entry, name); err != nil {
		return nil, err
	}
	return entry, nil
}

// CreateFolderType adds a folder type; names are unique
func CreateFolderType(database *gorm.DB, name string) (*models.FolderType, error) {
	name, err := catalogName(name)
	if err != nil {
		return nil, err
	}
	entry := &models.FolderType{Name: name}
	if err := createCatalogEntry(database, entry, name); err != nil {
		return nil, err
	}
	return entry, nil
}

// RenameCatalogEntry changes the name of an activity or folder type
func RenameCatalogEntry[T CatalogEntry](database *gorm.DB, id, name string) (*T, error) {
	name, err := catalogName(name)
	if err != nil {
		return nil, err
	}

	var entry T
	if err := database.First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: catalog entry %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load catalog entry: %w", err)
	}
	if err := database.Model(&entry).Update("name", name).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %q already exists", ErrConflict, name)
		}
		return nil, fmt.Errorf("failed to rename catalog entry: %w", err)
	}
	if err := database.First(&entry, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload catalog entry: %w", err)
	}
	return &entry, nil
}

// DeleteCatalogEntry removes an activity or folder type. Records that used
// the name keep it as plain text.
func DeleteCatalogEntry[T CatalogEntry](database *gorm.DB, id string) error {
	var entry T
	result := database.Delete(&entry, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete catalog entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: catalog entry %s", ErrNotFound, id)
	}
	return nil
}

func catalogName(name string) (string, error) {
	name = SanitizeText(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(name) > 120 {
		return "", fmt.Errorf("%w: name is too long", ErrValidation)
	}
	return name, nil
}

func createCatalogEntry(database *gorm.DB, entry interface{}, name string) error {
	if err := database.Create(entry).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %q already exists", ErrConflict, name)
		}
		return fmt.Errorf("failed to create catalog entry: %w", err)
	}
	return nil
}

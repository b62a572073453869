package services

import (
	"errors"
	"fmt"
	"strings"

	"pqr_flow_app_go/models"

	"gorm.io/gorm"
)

// OtherActivityInput is a new ledger entry
type OtherActivityInput struct {
	IdentificationNumber string
	FullName             string
	Phone                string
	Entity               string
	Activity             string
	Notes                *string
}

// OtherActivityUpdate is a partial update; nil fields are unchanged
type OtherActivityUpdate struct {
	IdentificationNumber *string
	FullName             *string
	Phone                *string
	Entity               *string
	Activity             *string
	Notes                *string
}

// ListOtherActivities returns the entries matching filter, newest first
func ListOtherActivities(database *gorm.DB, filter ReportFilter, search string) ([]models.OtherActivity, error) {
	query := filteredOtherActivities(database, filter)
	if s := strings.TrimSpace(search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR identification_number LIKE ? OR LOWER(entity) LIKE ?", pattern, pattern, pattern)
	}

	var records []models.OtherActivity
	if err := query.Order("occurred_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list other activities: %w", err)
	}
	return records, nil
}

// CreateOtherActivity records a service interaction dated now
func CreateOtherActivity(database *gorm.DB, input OtherActivityInput) (*models.OtherActivity, error) {
	record := &models.OtherActivity{
		OccurredAt:           nowFunc(),
		IdentificationNumber: strings.TrimSpace(input.IdentificationNumber),
		FullName:             SanitizeText(input.FullName),
		Phone:                SanitizeText(input.Phone),
		Entity:               SanitizeText(input.Entity),
		Activity:             SanitizeText(input.Activity),
		Notes:                SanitizeOptional(input.Notes),
	}
	if record.FullName == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if record.Activity == "" {
		return nil, fmt.Errorf("%w: activity is required", ErrValidation)
	}

	if err := database.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create other activity: %w", err)
	}
	return record, nil
}

// UpdateOtherActivity applies a partial update to a ledger entry
func UpdateOtherActivity(database *gorm.DB, id string, input OtherActivityUpdate) (*models.OtherActivity, error) {
	var record models.OtherActivity
	if err := database.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: other activity %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load other activity: %w", err)
	}

	updates := map[string]interface{}{}
	if input.IdentificationNumber != nil {
		updates["identification_number"] = strings.TrimSpace(*input.IdentificationNumber)
	}
	if input.FullName != nil {
		name := SanitizeText(*input.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		updates["full_name"] = name
	}
	if input.Phone != nil {
		updates["phone"] = SanitizeText(*input.Phone)
	}
	if input.Entity != nil {
		updates["entity"] = SanitizeText(*input.Entity)
	}
	if input.Activity != nil {
		activity := SanitizeText(*input.Activity)
		if activity == "" {
			return nil, fmt.Errorf("%w: activity cannot be empty", ErrValidation)
		}
		updates["activity"] = activity
	}
	if input.Notes != nil {
		updates["notes"] = SanitizeOptional(input.Notes)
	}

	if len(updates) > 0 {
		if err := database.Model(&models.OtherActivity{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update other activity: %w", err)
		}
	}
	if err := database.First(&record, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload other activity: %w", err)
	}
	return &record, nil
}

// DeleteOtherActivity removes a ledger entry
func DeleteOtherActivity(database *gorm.DB, id string) error {
	result := database.Delete(&models.OtherActivity{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete other activity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: other activity %s", ErrNotFound, id)
	}
	return nil
}

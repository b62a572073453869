package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"pqr_flow_app_go/models"

	"gorm.io/gorm"
)

// SystemConfigUpdate carries a partial settings update; nil fields are unchanged.
// Empty strings clear optional text settings.
type SystemConfigUpdate struct {
	PetitionDays           *int
	ComplaintDays          *int
	ClaimDays              *int
	AppealDays             *int
	InformationRequestDays *int
	CaseNumberPrefix       *string
	AutoBackup             *bool
	BackupFrequencyDays    *int
	RecoveryEmail1         *string
	RecoveryEmail2         *string
	EntityName             *string
	EntityEmail            *string
	EntityPhone            *string
	EntityWhatsapp         *string
	EntityNIT              *string
	// EntityLogo replaces the logo when not nil; an empty slice removes it
	EntityLogo []byte
}

// GetSystemConfig loads the settings row
func GetSystemConfig(database *gorm.DB) (*models.SystemConfig, error) {
	var cfg models.SystemConfig
	if err := database.Order("created_at ASC").First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// IsSetupDone reports whether first-run setup has completed
func IsSetupDone(database *gorm.DB) bool {
	cfg, err := GetSystemConfig(database)
	return err == nil && cfg.FirstSetupDone
}

// UpdateSystemConfig applies a partial settings update
func UpdateSystemConfig(database *gorm.DB, input SystemConfigUpdate) (*models.SystemConfig, error) {
	cfg, err := GetSystemConfig(database)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	days := []struct {
		column string
		value  *int
	}{
		{"petition_days", input.PetitionDays},
		{"complaint_days", input.ComplaintDays},
		{"claim_days", input.ClaimDays},
		{"appeal_days", input.AppealDays},
		{"information_request_days", input.InformationRequestDays},
		{"backup_frequency_days", input.BackupFrequencyDays},
	}
	for _, d := range days {
		if d.value == nil {
			continue
		}
		if *d.value < 1 || *d.value > 365 {
			return nil, fmt.Errorf("%w: %s must be between 1 and 365", ErrValidation, d.column)
		}
		updates[d.column] = *d.value
	}

	if input.CaseNumberPrefix != nil {
		prefix := strings.ToUpper(strings.TrimSpace(*input.CaseNumberPrefix))
		if prefix == "" || strings.ContainsAny(prefix, "-%_ ") || len(prefix) > 20 {
			return nil, fmt.Errorf("%w: invalid case number prefix %q", ErrValidation, *input.CaseNumberPrefix)
		}
		updates["case_number_prefix"] = prefix
	}
	if input.AutoBackup != nil {
		updates["auto_backup"] = *input.AutoBackup
	}

	for column, value := range map[string]*string{
		"recovery_email_1": input.RecoveryEmail1,
		"recovery_email_2": input.RecoveryEmail2,
		"entity_email":     input.EntityEmail,
	} {
		if value == nil {
			continue
		}
		email := strings.TrimSpace(*value)
		if email == "" {
			updates[column] = nil
			continue
		}
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("%w: invalid email %q", ErrValidation, email)
		}
		updates[column] = strings.ToLower(email)
	}

	for column, value := range map[string]*string{
		"entity_name":     input.EntityName,
		"entity_phone":    input.EntityPhone,
		"entity_whatsapp": input.EntityWhatsapp,
		"entity_nit":      input.EntityNIT,
	} {
		if value != nil {
			updates[column] = SanitizeOptional(value)
		}
	}

	if input.EntityLogo != nil {
		if len(input.EntityLogo) == 0 {
			updates["entity_logo"] = nil
		} else {
			updates["entity_logo"] = input.EntityLogo
		}
	}

	if len(updates) > 0 {
		if err := database.Model(cfg).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update configuration: %w", err)
		}
	}
	return GetSystemConfig(database)
}

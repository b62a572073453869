package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pqr_flow_app_go/db"
	"pqr_flow_app_go/models"

	"gorm.io/gorm"
)

// RequesterInput identifies the requester of a new case
type RequesterInput struct {
	IdentificationType   string
	IdentificationNumber string
	FullName             string
	Email                *string
	Phone                *string
	Address              *string
}

// CreateCaseInput is the data needed to file a PQR
type CreateCaseInput struct {
	Requester RequesterInput
	CaseType  string
	Subject   string
	Channel   *string
	DueDate   *time.Time
	// ManualCaseNumber overrides the generated number when not blank
	ManualCaseNumber string
	AttachmentData   []byte
	AttachmentName   *string
}

// RequesterUpdate carries a partial requester update; nil fields are unchanged
type RequesterUpdate struct {
	IdentificationType   *string
	IdentificationNumber *string
	FullName             *string
	Email                *string
	Phone                *string
	Address              *string
}

// UpdateCaseInput carries a partial case update; nil fields are unchanged
type UpdateCaseInput struct {
	Status   *string
	Subject  *string
	CaseType *string
	Channel  *string
	DueDate  *time.Time
	// ClearDueDate removes the due date; it wins over DueDate
	ClearDueDate bool
	Requester    *RequesterUpdate
	VoucherData  []byte
}

// ActionInput is a new follow-up entry for a case
type ActionInput struct {
	ActionType     string
	Note           string
	PerformedBy    string
	AttachmentData []byte
	AttachmentName *string
}

// CaseSearch filters the case list. Zero values are ignored.
type CaseSearch struct {
	// Requester matches a substring of the requester's name or identification number
	Requester  string
	Status     string
	CaseNumber string
	CaseType   string
	From       *time.Time
	To         *time.Time
}

// blobColumns are skipped when listing cases
var blobColumns = []string{"attachment_data", "voucher_data"}

// CreateCase files a new PQR. Requester lookup or creation, case number
// allocation and the insert commit together or not at all.
func CreateCase(database *gorm.DB, cfg *models.SystemConfig, input CreateCaseInput) (*models.Case, error) {
	if err := validateCreateCase(&input); err != nil {
		return nil, err
	}

	var created *models.Case
	err := withCaseNumberRetry(database, func(tx *gorm.DB) error {
		now := nowFunc()

		requester, err := findOrCreateRequester(tx, input.Requester)
		if err != nil {
			return err
		}

		number := input.ManualCaseNumber
		if number != "" {
			taken, err := caseNumberExists(tx, number)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: case number %s already exists", ErrConflict, number)
			}
		} else {
			number, err = NextCaseNumber(tx, cfg.Prefix(), now)
			if err != nil {
				return err
			}
		}

		dueDate := input.DueDate
		if dueDate == nil && cfg != nil {
			if days := cfg.DeadlineDays(input.CaseType); days > 0 {
				d := AddBusinessDays(now, days)
				dueDate = &d
			}
		}

		c := &models.Case{
			CaseNumber:     number,
			FiledAt:        now,
			DueDate:        dueDate,
			CaseType:       input.CaseType,
			Subject:        input.Subject,
			Status:         models.CaseStatusRegistered,
			Channel:        input.Channel,
			RequesterID:    requester.ID,
			AttachmentData: input.AttachmentData,
			AttachmentName: input.AttachmentName,
		}
		if err := tx.Omit("Requester", "Actions").Create(c).Error; err != nil {
			return err
		}
		c.Requester = *requester
		c.HasAttachment = len(c.AttachmentData) > 0
		created = c
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	casesCreatedTotal.WithLabelValues(created.CaseType).Inc()
	log.Printf("[CASE] filed %s (%s)", created.CaseNumber, created.CaseType)
	return created, nil
}

func validateCreateCase(input *CreateCaseInput) error {
	r := &input.Requester
	r.IdentificationType = strings.TrimSpace(r.IdentificationType)
	r.IdentificationNumber = strings.TrimSpace(r.IdentificationNumber)
	r.FullName = SanitizeText(r.FullName)
	r.Email = SanitizeOptional(r.Email)
	r.Phone = SanitizeOptional(r.Phone)
	r.Address = SanitizeOptional(r.Address)
	input.Subject = SanitizeText(input.Subject)
	input.ManualCaseNumber = strings.TrimSpace(input.ManualCaseNumber)

	if r.IdentificationNumber == "" {
		return fmt.Errorf("%w: requester identification number is required", ErrValidation)
	}
	if r.FullName == "" {
		return fmt.Errorf("%w: requester name is required", ErrValidation)
	}
	if r.IdentificationType == "" {
		r.IdentificationType = models.IdentificationCC
	}
	if !models.IsValidIdentificationType(r.IdentificationType) {
		return fmt.Errorf("%w: invalid identification type %q", ErrValidation, r.IdentificationType)
	}
	if !models.IsValidCaseType(input.CaseType) {
		return fmt.Errorf("%w: invalid case type %q", ErrValidation, input.CaseType)
	}
	if input.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if input.Channel != nil && *input.Channel != "" && !models.IsValidChannel(*input.Channel) {
		return fmt.Errorf("%w: invalid reception channel %q", ErrValidation, *input.Channel)
	}
	if input.Channel != nil && *input.Channel == "" {
		input.Channel = nil
	}
	return nil
}

// findOrCreateRequester reuses the requester registered with the same
// identification number. Existing requesters are not modified.
func findOrCreateRequester(tx *gorm.DB, input RequesterInput) (*models.Requester, error) {
	var requester models.Requester
	err := tx.Where("identification_number = ?", input.IdentificationNumber).First(&requester).Error
	if err == nil {
		return &requester, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up requester: %w", err)
	}

	requester = models.Requester{
		IdentificationType:   input.IdentificationType,
		IdentificationNumber: input.IdentificationNumber,
		FullName:             input.FullName,
		Email:                input.Email,
		Phone:                input.Phone,
		Address:              input.Address,
	}
	if err := tx.Create(&requester).Error; err != nil {
		return nil, err
	}
	return &requester, nil
}

// GetCase loads a case with its requester and its actions, newest first
func GetCase(database *gorm.DB, id string) (*models.Case, error) {
	var c models.Case
	err := database.
		Preload("Requester").
		Preload("Actions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("performed_at DESC")
		}).
		First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: case %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load case: %w", err)
	}
	return &c, nil
}

// SearchCases lists cases matching the filter, newest filing first.
// Document blobs are not loaded.
func SearchCases(database *gorm.DB, search CaseSearch) ([]models.Case, error) {
	query := database.Model(&models.Case{}).Omit(blobColumns...).Preload("Requester")

	if s := strings.TrimSpace(search.Requester); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		sub := database.Model(&models.Requester{}).Select("id").
			Where("LOWER(full_name) LIKE ? OR identification_number LIKE ?", pattern, pattern)
		query = query.Where("requester_id IN (?)", sub)
	}
	if search.Status != "" {
		query = query.Where("status = ?", search.Status)
	}
	if s := strings.TrimSpace(search.CaseNumber); s != "" {
		query = query.Where("case_number LIKE ?", "%"+s+"%")
	}
	if search.CaseType != "" {
		query = query.Where("case_type = ?", search.CaseType)
	}
	if search.From != nil {
		query = query.Where("filed_at >= ?", StartOfDay(*search.From))
	}
	if search.To != nil {
		query = query.Where("filed_at <= ?", EndOfDay(*search.To))
	}

	var cases []models.Case
	if err := query.Order("filed_at DESC").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to search cases: %w", err)
	}
	return cases, nil
}

// UpdateCase applies a partial update to a case and, optionally, its requester.
// Any status of the status list may follow any other.
func UpdateCase(database *gorm.DB, id string, input UpdateCaseInput) (*models.Case, error) {
	var existing models.Case
	if err := database.Omit(blobColumns...).First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: case %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load case: %w", err)
	}

	updates, err := caseUpdates(input)
	if err != nil {
		return nil, err
	}
	requesterUpdates, err := requesterUpdates(input.Requester)
	if err != nil {
		return nil, err
	}

	err = database.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Case{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if len(requesterUpdates) > 0 {
			if err := tx.Model(&models.Requester{}).Where("id = ?", existing.RequesterID).Updates(requesterUpdates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, fmt.Errorf("%w: requester identification already registered", ErrConflict)
		}
		return nil, fmt.Errorf("failed to update case: %w", err)
	}

	return GetCase(database, id)
}

func caseUpdates(input UpdateCaseInput) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if input.Status != nil {
		if !models.IsValidCaseStatus(*input.Status) {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, *input.Status)
		}
		updates["status"] = *input.Status
	}
	if input.Subject != nil {
		subject := SanitizeText(*input.Subject)
		if subject == "" {
			return nil, fmt.Errorf("%w: subject cannot be empty", ErrValidation)
		}
		updates["subject"] = subject
	}
	if input.CaseType != nil {
		if !models.IsValidCaseType(*input.CaseType) {
			return nil, fmt.Errorf("%w: invalid case type %q", ErrValidation, *input.CaseType)
		}
		updates["case_type"] = *input.CaseType
	}
	if input.Channel != nil {
		if *input.Channel == "" {
			updates["channel"] = nil
		} else if !models.IsValidChannel(*input.Channel) {
			return nil, fmt.Errorf("%w: invalid reception channel %q", ErrValidation, *input.Channel)
		} else {
			updates["channel"] = *input.Channel
		}
	}
	if input.ClearDueDate {
		updates["due_date"] = nil
	} else if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}
	if len(input.VoucherData) > 0 {
		updates["voucher_data"] = input.VoucherData
		updates["voucher_generated_at"] = nowFunc()
	}
	return updates, nil
}

func requesterUpdates(input *RequesterUpdate) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if input == nil {
		return updates, nil
	}
	if input.IdentificationType != nil {
		if !models.IsValidIdentificationType(*input.IdentificationType) {
			return nil, fmt.Errorf("%w: invalid identification type %q", ErrValidation, *input.IdentificationType)
		}
		updates["identification_type"] = *input.IdentificationType
	}
	if input.IdentificationNumber != nil {
		n := strings.TrimSpace(*input.IdentificationNumber)
		if n == "" {
			return nil, fmt.Errorf("%w: identification number cannot be empty", ErrValidation)
		}
		updates["identification_number"] = n
	}
	if input.FullName != nil {
		name := SanitizeText(*input.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: requester name cannot be empty", ErrValidation)
		}
		updates["full_name"] = name
	}
	if input.Email != nil {
		updates["email"] = SanitizeOptional(input.Email)
	}
	if input.Phone != nil {
		updates["phone"] = SanitizeOptional(input.Phone)
	}
	if input.Address != nil {
		updates["address"] = SanitizeOptional(input.Address)
	}
	return updates, nil
}

// DeleteCase removes a case and its actions. The requester is kept.
func DeleteCase(database *gorm.DB, id string) error {
	return database.Transaction(func(tx *gorm.DB) error {
		var c models.Case
		if err := tx.Select("id").First(&c, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: case %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to load case: %w", err)
		}
		if err := tx.Where("case_id = ?", id).Delete(&models.Action{}).Error; err != nil {
			return fmt.Errorf("failed to delete case actions: %w", err)
		}
		if err := tx.Delete(&models.Case{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete case: %w", err)
		}
		return nil
	})
}

// AppendAction records a follow-up entry on a case. Actions are never edited.
func AppendAction(database *gorm.DB, caseID string, input ActionInput) (*models.Action, error) {
	actionType := SanitizeText(input.ActionType)
	if actionType == "" {
		return nil, fmt.Errorf("%w: action type is required", ErrValidation)
	}

	var n int64
	if err := database.Model(&models.Case{}).Where("id = ?", caseID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to load case: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: case %s", ErrNotFound, caseID)
	}

	performedBy := SanitizeText(input.PerformedBy)
	if performedBy == "" {
		performedBy = models.DefaultActionUser
	}

	action := &models.Action{
		CaseID:         caseID,
		PerformedAt:    nowFunc(),
		ActionType:     actionType,
		Note:           SanitizeText(input.Note),
		PerformedBy:    performedBy,
		AttachmentData: input.AttachmentData,
		AttachmentName: input.AttachmentName,
	}
	if err := database.Create(action).Error; err != nil {
		return nil, fmt.Errorf("failed to create action: %w", err)
	}
	return action, nil
}

// RegenerateVoucher renders the filing voucher of a case and stores it.
// It runs after the case mutation has been committed; a failure is logged and
// returned but never undoes that mutation.
func RegenerateVoucher(ctx context.Context, database *gorm.DB, renderer Renderer, cfg *models.SystemConfig, id string) error {
	if renderer == nil {
		return nil
	}
	c, err := GetCase(database, id)
	if err != nil {
		voucherFailuresTotal.Inc()
		log.Printf("[VOUCHER] could not load case %s: %v", id, err)
		return err
	}

	pdf, err := renderer.Render(ctx, DocumentVoucher, VoucherDocument(c, cfg))
	if err != nil {
		voucherFailuresTotal.Inc()
		log.Printf("[VOUCHER] rendering failed for %s: %v", c.CaseNumber, err)
		return err
	}

	err = database.Model(&models.Case{}).Where("id = ?", id).Updates(map[string]interface{}{
		"voucher_data":         pdf,
		"voucher_generated_at": nowFunc(),
	}).Error
	if err != nil {
		voucherFailuresTotal.Inc()
		log.Printf("[VOUCHER] could not store voucher for %s: %v", c.CaseNumber, err)
		return err
	}
	return nil
}

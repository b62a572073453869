package services

import (
	"errors"
	"fmt"

	"pqr_flow_app_go/models"

	"gorm.io/gorm"
)

// ListNotes returns the quick notes in display order
func ListNotes(database *gorm.DB) ([]models.QuickNote, error) {
	var notes []models.QuickNote
	if err := database.Order("position ASC").Order("created_at ASC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// AddNote appends a note at the end of the list
func AddNote(database *gorm.DB, text string) (*models.QuickNote, error) {
	text = SanitizeText(text)
	if text == "" {
		return nil, fmt.Errorf("%w: note text is required", ErrValidation)
	}

	note := &models.QuickNote{Text: text}
	err := database.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.QuickNote{}).Count(&count).Error; err != nil {
			return err
		}
		note.Position = int(count)
		return tx.Create(note).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	return note, nil
}

// UpdateNote replaces the text of a note
func UpdateNote(database *gorm.DB, id, text string) (*models.QuickNote, error) {
	text = SanitizeText(text)
	if text == "" {
		return nil, fmt.Errorf("%w: note text is required", ErrValidation)
	}

	var note models.QuickNote
	if err := database.First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: note %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	if err := database.Model(&note).Update("text", text).Error; err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	note.Text = text
	return &note, nil
}

// DeleteNote removes a note and closes the gap it leaves in the positions
func DeleteNote(database *gorm.DB, id string) error {
	return database.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.QuickNote{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete note: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: note %s", ErrNotFound, id)
		}

		remaining, err := ListNotes(tx)
		if err != nil {
			return err
		}
		return assignPositions(tx, remaining)
	})
}

// ReorderNotes sets the display order. ids must list every existing note exactly once.
func ReorderNotes(database *gorm.DB, ids []string) ([]models.QuickNote, error) {
	err := database.Transaction(func(tx *gorm.DB) error {
		current, err := ListNotes(tx)
		if err != nil {
			return err
		}
		if len(ids) != len(current) {
			return fmt.Errorf("%w: expected %d note ids, got %d", ErrValidation, len(current), len(ids))
		}

		byID := make(map[string]models.QuickNote, len(current))
		for _, n := range current {
			byID[n.ID] = n
		}
		ordered := make([]models.QuickNote, 0, len(ids))
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			n, ok := byID[id]
			if !ok || seen[id] {
				return fmt.Errorf("%w: note ids must be a permutation of the existing notes", ErrValidation)
			}
			seen[id] = true
			ordered = append(ordered, n)
		}
		return assignPositions(tx, ordered)
	})
	if err != nil {
		return nil, err
	}
	return ListNotes(database)
}

// assignPositions numbers the notes 0..N-1 in slice order
func assignPositions(tx *gorm.DB, notes []models.QuickNote) error {
	for i, n := range notes {
		if n.Position == i {
			continue
		}
		if err := tx.Model(&models.QuickNote{}).Where("id = ?", n.ID).Update("position", i).Error; err != nil {
			return fmt.Errorf("failed to update note position: %w", err)
		}
	}
	return nil
}

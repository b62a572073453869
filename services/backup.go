package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"pqr_flow_app_go/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// BackupFormat is the serialisation of a backup file
type BackupFormat string

const (
	BackupFormatJSON BackupFormat = "json"
	BackupFormatYAML BackupFormat = "yaml"
)

// BackupVersion is bumped whenever the snapshot layout changes
const BackupVersion = 1

// ParseBackupFormat accepts "json", "yaml" or "yml"; empty means JSON
func ParseBackupFormat(s string) (BackupFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return BackupFormatJSON, nil
	case "yaml", "yml":
		return BackupFormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported backup format %q", ErrValidation, s)
	}
}

// ContentType returns the MIME type of the format
func (f BackupFormat) ContentType() string {
	if f == BackupFormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// backupTable is one table of the snapshot and the columns it leaves out
type backupTable struct {
	name    string
	exclude []string
}

// backupTables lists every table in dependency order. Binary columns and the
// password hash are left out; recovery tokens are short lived and skipped.
var backupTables = []backupTable{
	{name: models.SystemConfig{}.TableName(), exclude: []string{"hashed_password", "entity_logo"}},
	{name: models.ActivityType{}.TableName()},
	{name: models.FolderType{}.TableName()},
	{name: models.Requester{}.TableName()},
	{name: models.Case{}.TableName(), exclude: []string{"attachment_data", "voucher_data"}},
	{name: models.Action{}.TableName(), exclude: []string{"attachment_data"}},
	{name: models.OtherActivity{}.TableName()},
	{name: models.CaseFolder{}.TableName()},
	{name: models.FolderDocument{}.TableName()},
	{name: models.FolderLogEntry{}.TableName()},
	{name: models.QuickNote{}.TableName()},
}

// Backup is a point-in-time snapshot of the database
type Backup struct {
	Version   int                                 `json:"version" yaml:"version"`
	CreatedAt time.Time                           `json:"created_at" yaml:"created_at"`
	Tables    map[string][]map[string]interface{} `json:"tables" yaml:"tables"`
}

// RowCount returns the number of rows across all tables
func (b *Backup) RowCount() int {
	n := 0
	for _, rows := range b.Tables {
		n += len(rows)
	}
	return n
}

// CreateBackup reads every table inside one transaction so the snapshot is consistent
func CreateBackup(database *gorm.DB) (*Backup, error) {
	backup := &Backup{
		Version:   BackupVersion,
		CreatedAt: nowFunc(),
		Tables:    make(map[string][]map[string]interface{}, len(backupTables)),
	}

	err := database.Transaction(func(tx *gorm.DB) error {
		for _, table := range backupTables {
			var rows []map[string]interface{}
			if err := tx.Table(table.name).Order("id").Find(&rows).Error; err != nil {
				return fmt.Errorf("table %s: %w", table.name, err)
			}
			for _, row := range rows {
				for _, col := range table.exclude {
					delete(row, col)
				}
				normaliseBackupRow(row)
			}
			if rows == nil {
				rows = []map[string]interface{}{}
			}
			backup.Tables[table.name] = rows
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}
	return backup, nil
}

// normaliseBackupRow turns driver specific values into plain strings
func normaliseBackupRow(row map[string]interface{}) {
	for k, v := range row {
		switch val := v.(type) {
		case []byte:
			row[k] = string(val)
		case [16]byte:
			row[k] = uuid.UUID(val).String()
		}
	}
}

// WriteBackup encodes the snapshot in the requested format
func WriteBackup(w io.Writer, backup *Backup, format BackupFormat) error {
	switch format {
	case BackupFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(backup); err != nil {
			return fmt.Errorf("failed to encode backup: %w", err)
		}
		return enc.Close()
	case BackupFormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(backup); err != nil {
			return fmt.Errorf("failed to encode backup: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported backup format %q", ErrValidation, format)
	}
}

// ReadBackup decodes a snapshot written by WriteBackup
func ReadBackup(r io.Reader, format BackupFormat) (*Backup, error) {
	var backup Backup
	var err error
	switch format {
	case BackupFormatYAML:
		err = yaml.NewDecoder(r).Decode(&backup)
	default:
		err = json.NewDecoder(r).Decode(&backup)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid backup: %v", ErrValidation, err)
	}
	return &backup, nil
}

// UploadBackup snapshots the database and stores it through the storage
// provider under a key stamped with now
func UploadBackup(ctx context.Context, database *gorm.DB, storage StorageProvider, format BackupFormat, now time.Time) (string, error) {
	backup, err := CreateBackup(database)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := WriteBackup(&buf, backup, format); err != nil {
		return "", err
	}

	key := GenerateBackupKey(now, format)
	size := int64(buf.Len())
	if _, err := storage.UploadReader(ctx, &buf, key, format.ContentType(), size); err != nil {
		return "", fmt.Errorf("failed to store backup: %w", err)
	}

	log.Printf("[BACKUP] Stored %s (%d rows, %d bytes)", key, backup.RowCount(), size)
	return key, nil
}

// BackupDue reports whether an automatic backup should run now
func BackupDue(cfg *models.SystemConfig, now time.Time) bool {
	if cfg == nil || !cfg.AutoBackup {
		return false
	}
	if cfg.LastBackupAt == nil {
		return true
	}
	days := cfg.BackupFrequencyDays
	if days <= 0 {
		days = models.DefaultBackupFrequencyDays
	}
	return !now.Before(cfg.LastBackupAt.AddDate(0, 0, days))
}

// MarkBackupDone records the time of the latest automatic backup
func MarkBackupDone(database *gorm.DB, cfg *models.SystemConfig, at time.Time) error {
	err := database.Model(&models.SystemConfig{}).
		Where("id = ?", cfg.ID).
		Update("last_backup_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to record backup time: %w", err)
	}
	cfg.LastBackupAt = &at
	return nil
}

package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"pqr_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackupFormat(t *testing.T) {
	for in, want := range map[string]BackupFormat{"": BackupFormatJSON, "JSON": BackupFormatJSON, "yml": BackupFormatYAML, "yaml": BackupFormatYAML} {
		got, err := ParseBackupFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseBackupFormat("xml")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBackup_ExcludesSecretsAndBlobs(t *testing.T) {
	database := setupServiceDB(t)
	_, err := Setup(database, "Oficina2024")
	require.NoError(t, err)
	_, err = UpdateSystemConfig(database, SystemConfigUpdate{EntityLogo: []byte("logo")})
	require.NoError(t, err)

	input := newCaseInput("1", "Uno", models.CaseTypePetition)
	input.AttachmentData = []byte("adjunto")
	input.AttachmentName = stringPtr("adjunto.pdf")
	c := mustCreateCase(t, database, input)
	_, err = AddNote(database, "nota")
	require.NoError(t, err)

	backup, err := CreateBackup(database)
	require.NoError(t, err)
	assert.Equal(t, BackupVersion, backup.Version)

	configs := backup.Tables["system_configs"]
	require.Len(t, configs, 1)
	assert.NotContains(t, configs[0], "hashed_password")
	assert.NotContains(t, configs[0], "entity_logo")

	cases := backup.Tables["cases"]
	require.Len(t, cases, 1)
	assert.Equal(t, c.CaseNumber, cases[0]["case_number"])
	assert.NotContains(t, cases[0], "attachment_data")
	assert.Contains(t, cases[0], "attachment_name")

	assert.Len(t, backup.Tables["requesters"], 1)
	assert.Len(t, backup.Tables["quick_notes"], 1)
	assert.Empty(t, backup.Tables["case_folders"])
	assert.NotContains(t, backup.Tables, "recovery_tokens")
}

func TestWriteBackup_RoundTrip(t *testing.T) {
	database := setupServiceDB(t)
	mustCreateCase(t, database, newCaseInput("1", "Uno", models.CaseTypePetition))
	backup, err := CreateBackup(database)
	require.NoError(t, err)

	for _, format := range []BackupFormat{BackupFormatJSON, BackupFormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteBackup(&buf, backup, format))

			decoded, err := ReadBackup(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, backup.RowCount(), decoded.RowCount())
			assert.Equal(t, backup.Tables["cases"][0]["case_number"], decoded.Tables["cases"][0]["case_number"])
		})
	}
}

func TestUploadBackup(t *testing.T) {
	database := setupServiceDB(t)
	storage := NewLocalStorage(t.TempDir())
	at := time.Date(2024, 7, 1, 2, 0, 0, 0, time.Local)

	key, err := UploadBackup(context.Background(), database, storage, BackupFormatYAML, at)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "backups/pqr_backup_20240701_020000_"), key)

	again, err := UploadBackup(context.Background(), database, storage, BackupFormatYAML, at)
	require.NoError(t, err)
	assert.NotEqual(t, key, again)

	reader, _, err := storage.Get(context.Background(), key)
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 1")
}

func TestBackupDue(t *testing.T) {
	now := time.Date(2024, 7, 10, 0, 0, 0, 0, time.Local)
	cfg := models.NewDefaultSystemConfig()

	assert.False(t, BackupDue(nil, now))
	assert.False(t, BackupDue(cfg, now))

	cfg.AutoBackup = true
	assert.True(t, BackupDue(cfg, now))

	last := now.AddDate(0, 0, -3)
	cfg.LastBackupAt = &last
	assert.False(t, BackupDue(cfg, now))

	last = now.AddDate(0, 0, -7)
	assert.True(t, BackupDue(cfg, now))
}

package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pqr_flow_app_go/models"
	"pqr_flow_app_go/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupJobsTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestCleanupRecoveryTokens(t *testing.T) {
	db := setupJobsTestDB(t)

	expired := models.RecoveryToken{Email: "a@b.co", Token: "expired", ExpiresAt: time.Now().Add(-time.Hour)}
	valid := models.RecoveryToken{Email: "a@b.co", Token: "valid", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&valid).Error)

	CleanupRecoveryTokens(db)

	var tokens []models.RecoveryToken
	require.NoError(t, db.Find(&tokens).Error)
	require.Len(t, tokens, 1)
	assert.Equal(t, "valid", tokens[0].Token)
}

func TestRunAutoBackup(t *testing.T) {
	db := setupJobsTestDB(t)
	dir := t.TempDir()
	storage := services.NewLocalStorage(dir)
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 2, 0, 0, 0, time.Local)

	t.Run("not configured", func(t *testing.T) {
		assert.False(t, RunAutoBackup(ctx, db, storage, now))
	})

	cfg := models.NewDefaultSystemConfig()
	cfg.FirstSetupDone = true
	require.NoError(t, db.Create(cfg).Error)

	t.Run("disabled", func(t *testing.T) {
		assert.False(t, RunAutoBackup(ctx, db, storage, now))
	})

	require.NoError(t, db.Model(cfg).Update("auto_backup", true).Error)

	t.Run("first run stores a backup", func(t *testing.T) {
		assert.True(t, RunAutoBackup(ctx, db, storage, now))

		files, err := filepath.Glob(filepath.Join(dir, "backups", "*.json"))
		require.NoError(t, err)
		assert.Len(t, files, 1)

		reloaded, err := services.GetSystemConfig(db)
		require.NoError(t, err)
		require.NotNil(t, reloaded.LastBackupAt)
	})

	t.Run("skipped before the interval elapses", func(t *testing.T) {
		assert.False(t, RunAutoBackup(ctx, db, storage, now.AddDate(0, 0, 3)))
	})

	t.Run("runs again after the interval", func(t *testing.T) {
		later := now.AddDate(0, 0, models.DefaultBackupFrequencyDays)
		assert.True(t, RunAutoBackup(ctx, db, storage, later))

		entries, err := os.ReadDir(filepath.Join(dir, "backups"))
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

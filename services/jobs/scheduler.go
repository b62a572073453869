package jobs

import (
	"context"
	"errors"
	"log"
	"time"

	"pqr_flow_app_go/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Schedules of the background jobs
const (
	TokenCleanupSpec = "@hourly"
	AutoBackupSpec   = "0 2 * * *"
)

// StartScheduler registers the background jobs and starts the cron runner.
// The returned runner is stopped by the caller on shutdown.
func StartScheduler(database *gorm.DB, storage services.StorageProvider) (*cron.Cron, error) {
	loc, err := time.LoadLocation("America/Bogota")
	if err != nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(TokenCleanupSpec, func() {
		CleanupRecoveryTokens(database)
		services.Monitor.Prune()
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(AutoBackupSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		RunAutoBackup(ctx, database, storage, time.Now())
	}); err != nil {
		return nil, err
	}

	c.Start()
	log.Println("[CRON] Planificador de tareas iniciado correctamente.")
	return c, nil
}

// CleanupRecoveryTokens deletes expired password recovery tokens
func CleanupRecoveryTokens(database *gorm.DB) {
	n, err := services.CleanupExpiredTokens(database)
	if err != nil {
		log.Printf("[CRON] Error limpiando tokens de recuperación: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[CRON] %d tokens de recuperación expirados eliminados", n)
	}
}

// RunAutoBackup uploads a snapshot when automatic backups are enabled and the
// configured interval has elapsed. It reports whether a backup was stored.
func RunAutoBackup(ctx context.Context, database *gorm.DB, storage services.StorageProvider, now time.Time) bool {
	cfg, err := services.GetSystemConfig(database)
	if err != nil {
		if !errors.Is(err, services.ErrNotConfigured) {
			log.Printf("[CRON] Error cargando configuración: %v", err)
		}
		return false
	}
	if !services.BackupDue(cfg, now) {
		return false
	}
	if storage == nil || !storage.IsConfigured() {
		log.Println("[CRON] Respaldo automático omitido: almacenamiento no configurado")
		return false
	}

	key, err := services.UploadBackup(ctx, database, storage, services.BackupFormatJSON, now)
	if err != nil {
		log.Printf("[CRON] Error en respaldo automático: %v", err)
		return false
	}
	if err := services.MarkBackupDone(database, cfg, now); err != nil {
		log.Printf("[CRON] %v", err)
	}
	log.Printf("[CRON] Respaldo automático almacenado en %s", key)
	return true
}

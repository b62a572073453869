package services

import (
	"fmt"
	"testing"
	"time"

	"pqr_flow_app_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupServiceDB opens an isolated in-memory database with every table migrated
func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// freezeTime pins nowFunc to at for the duration of the test
func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = prev })
}

func stringPtr(s string) *string {
	return &s
}

func newCaseInput(idNumber, name, caseType string) CreateCaseInput {
	return CreateCaseInput{
		Requester: RequesterInput{
			IdentificationType:   models.IdentificationCC,
			IdentificationNumber: idNumber,
			FullName:             name,
		},
		CaseType: caseType,
		Subject:  "Solicitud de copia de documentos",
		Channel:  stringPtr(models.ChannelInPerson),
	}
}

func mustCreateCase(t *testing.T, db *gorm.DB, input CreateCaseInput) *models.Case {
	t.Helper()
	c, err := CreateCase(db, models.NewDefaultSystemConfig(), input)
	require.NoError(t, err)
	return c
}

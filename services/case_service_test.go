package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pqr_flow_app_go/db"
	"pqr_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestFormatCaseNumber(t *testing.T) {
	assert.Equal(t, "2024-PQR-0001", FormatCaseNumber(2024, "PQR", 1))
	assert.Equal(t, "2024-PQR-0042", FormatCaseNumber(2024, "", 42))
	assert.Equal(t, "2025-PER-12345", FormatCaseNumber(2025, "PER", 12345))
}

func TestParseCaseSequence(t *testing.T) {
	tests := []struct {
		number string
		seq    int
		ok     bool
	}{
		{"2024-PQR-0001", 1, true},
		{"2024-PQR-0120", 120, true},
		{"2024-PQR-10000", 10000, true},
		{"2023-PQR-0005", 0, false},
		{"2024-OTRO-0005", 0, false},
		{"MANUAL-77", 0, false},
		{"2024-PQR-abc", 0, false},
		{"2024-PQR-0000", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			seq, ok := ParseCaseSequence(tt.number, 2024, "PQR")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.seq, seq)
		})
	}
}

func TestCreateCase_SequentialNumbers(t *testing.T) {
	database := setupServiceDB(t)
	freezeTime(t, time.Date(2024, 3, 4, 9, 30, 0, 0, time.Local))

	var numbers []string
	for i := 1; i <= 3; i++ {
		c := mustCreateCase(t, database, newCaseInput(fmt.Sprintf("10%d", i), "Ana Pérez", models.CaseTypePetition))
		numbers = append(numbers, c.CaseNumber)
		assert.Equal(t, models.CaseStatusRegistered, c.Status)
	}
	assert.Equal(t, []string{"2024-PQR-0001", "2024-PQR-0002", "2024-PQR-0003"}, numbers)
}

func TestCreateCase_NumberingRestartsEachYear(t *testing.T) {
	database := setupServiceDB(t)

	freezeTime(t, time.Date(2023, 12, 29, 10, 0, 0, 0, time.Local))
	mustCreateCase(t, database, newCaseInput("1", "Uno", models.CaseTypeComplaint))
	mustCreateCase(t, database, newCaseInput("2", "Dos", models.CaseTypeComplaint))

	freezeTime(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.Local))
	c := mustCreateCase(t, database, newCaseInput("3", "Tres", models.CaseTypeComplaint))
	assert.Equal(t, "2024-PQR-0001", c.CaseNumber)
}

func TestCreateCase_SkipsTakenNumberAfterDelete(t *testing.T) {
	database := setupServiceDB(t)
	freezeTime(t, time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local))

	mustCreateCase(t, database, newCaseInput("1", "Uno", models.CaseTypeClaim))
	second := mustCreateCase(t, database, newCaseInput("2", "Dos", models.CaseTypeClaim))
	mustCreateCase(t, database, newCaseInput("3", "Tres", models.CaseTypeClaim))

	require.NoError(t, DeleteCase(database, second.ID))

	// Two cases remain, so the count suggests 0003, which is taken
	next := mustCreateCase(t, database, newCaseInput("4", "Cuatro", models.CaseTypeClaim))
	assert.Equal(t, "2024-PQR-0004", next.CaseNumber)
}

func TestCreateCase_UsesConfiguredPrefix(t *testing.T) {
	database := setupServiceDB(t)
	freezeTime(t, time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local))

	cfg := models.NewDefaultSystemConfig()
	cfg.CaseNumberPrefix = "PER"
	c, err := CreateCase(database, cfg, newCaseInput("1", "Uno", models.CaseTypeAppeal))
	require.NoError(t, err)
	assert.Equal(t, "2024-PER-0001", c.CaseNumber)
}

func TestCreateCase_ManualNumber(t *testing.T) {
	database := setupServiceDB(t)

	input := newCaseInput("1", "Uno", models.CaseTypePetition)
	input.ManualCaseNumber = "  RAD-2024-77  "
	c := mustCreateCase(t, database, input)
	assert.Equal(t, "RAD-2024-77", c.CaseNumber)

	dup := newCaseInput("2", "Dos", models.CaseTypePetition)
	dup.ManualCaseNumber = "RAD-2024-77"
	_, err := CreateCase(database, models.NewDefaultSystemConfig(), dup)
	assert.ErrorIs(t, err, ErrConflict)

	var count int64
	database.Model(&models.Case{}).Count(&count)
	assert.Equal(t, int64(1), count)
	// The rejected case must not leave its requester behind
	database.Model(&models.Requester{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateCase_ReusesRequester(t *testing.T) {
	database := setupServiceDB(t)

	first := mustCreateCase(t, database, newCaseInput("900123", "María Gómez", models.CaseTypePetition))
	again := newCaseInput("900123", "Otro Nombre", models.CaseTypeComplaint)
	second := mustCreateCase(t, database, again)

	assert.Equal(t, first.RequesterID, second.RequesterID)
	assert.Equal(t, "María Gómez", second.Requester.FullName)

	var count int64
	database.Model(&models.Requester{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateCase_DueDateFromDeadline(t *testing.T) {
	database := setupServiceDB(t)
	// Friday
	filed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	freezeTime(t, filed)

	cfg := models.NewDefaultSystemConfig()
	c, err := CreateCase(database, cfg, newCaseInput("1", "Uno", models.CaseTypeAppeal))
	require.NoError(t, err)
	require.NotNil(t, c.DueDate)
	// 10 business days after Friday 1 March is Friday 15 March
	assert.Equal(t, time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local), *c.DueDate)

	explicit := time.Date(2024, 4, 30, 0, 0, 0, 0, time.Local)
	input := newCaseInput("2", "Dos", models.CaseTypeAppeal)
	input.DueDate = &explicit
	c2, err := CreateCase(database, cfg, input)
	require.NoError(t, err)
	assert.Equal(t, explicit, *c2.DueDate)
}

func TestCreateCase_ExhaustedRetriesHideDriverError(t *testing.T) {
	database := setupServiceDB(t)
	err := database.Callback().Create().Before("gorm:create").Register("test:reject_cases", func(tx *gorm.DB) {
		if tx.Statement.Table == "cases" {
			tx.AddError(errors.New("UNIQUE constraint failed: cases.case_number"))
		}
	})
	require.NoError(t, err)

	_, err = CreateCase(database, nil, newCaseInput("1", "Ana Gómez", models.CaseTypePetition))
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "conflict: could not allocate a unique case number, retry the request", err.Error())
	assert.NotContains(t, err.Error(), "UNIQUE")

	var count int64
	database.Model(&models.Case{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateCase_Validation(t *testing.T) {
	database := setupServiceDB(t)
	cfg := models.NewDefaultSystemConfig()

	tests := []struct {
		name   string
		mutate func(*CreateCaseInput)
	}{
		{"missing identification", func(in *CreateCaseInput) { in.Requester.IdentificationNumber = " " }},
		{"missing name", func(in *CreateCaseInput) { in.Requester.FullName = "" }},
		{"bad identification type", func(in *CreateCaseInput) { in.Requester.IdentificationType = "XX" }},
		{"bad case type", func(in *CreateCaseInput) { in.CaseType = "Sugerencia" }},
		{"missing subject", func(in *CreateCaseInput) { in.Subject = "   " }},
		{"bad channel", func(in *CreateCaseInput) { in.Channel = stringPtr("Paloma mensajera") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := newCaseInput("1", "Uno", models.CaseTypePetition)
			tt.mutate(&input)
			_, err := CreateCase(database, cfg, input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	var count int64
	database.Model(&models.Case{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateCase_ConcurrentNumbersAreUniqueAndDense(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pqr.db")
	database, err := gorm.Open(sqlite.Open(db.SQLiteDSN(path)), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(models.All()...))
	freezeTime(t, time.Date(2024, 9, 2, 11, 0, 0, 0, time.Local))

	const workers = 20
	cfg := models.NewDefaultSystemConfig()
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := CreateCase(database, cfg, newCaseInput(fmt.Sprintf("ID-%02d", i), "Solicitante", models.CaseTypePetition))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var numbers []string
	require.NoError(t, database.Model(&models.Case{}).Order("case_number").Pluck("case_number", &numbers).Error)
	require.Len(t, numbers, workers)
	for i, n := range numbers {
		assert.Equal(t, FormatCaseNumber(2024, "PQR", i+1), n)
	}
}

func TestGetCase(t *testing.T) {
	database := setupServiceDB(t)
	c := mustCreateCase(t, database, newCaseInput("1", "Uno", models.CaseTypePetition))

	freezeTime(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local))
	_, err := AppendAction(database, c.ID, ActionInput{ActionType: "Traslado", Note: "Enviado a la alcaldía"})
	require.NoError(t, err)
	freezeTime(t, time.Date(2024, 5, 2, 9, 0, 0, 0, time.Local))
	_, err = AppendAction(database, c.ID, ActionInput{ActionType: "Respuesta", Note: "Respondido", PerformedBy: "Laura"})
	require.NoError(t, err)

	loaded, err := GetCase(database, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Uno", loaded.Requester.FullName)
	require.Len(t, loaded.Actions, 2)
	assert.Equal(t, "Respuesta", loaded.Actions[0].ActionType)
	assert.Equal(t, "Laura", loaded.Actions[0].PerformedBy)
	assert.Equal(t, models.DefaultActionUser, loaded.Actions[1].PerformedBy)

	_, err = GetCase(database, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendAction_Errors(t *testing.T) {
	database := setupServiceDB(t)
	c := mustCreateCase(t, database, newCaseInput("1", "Uno", models.CaseTypePetition))

	_, err := AppendAction(database, c.ID, ActionInput{ActionType: " "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = AppendAction(database, "missing", ActionInput{ActionType: "Archivo"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCase(t *testing.T) {
	database := setupServiceDB(t)
	c := mustCreateCase(t, database, newCaseInput("1", "Uno", models.CaseTypePetition))

	t.Run("partial update keeps other fields", func(t *testing.T) {
		updated, err := UpdateCase(database, c.ID, UpdateCaseInput{Status: stringPtr(models.CaseStatusInProgress)})
		require.NoError(t, err)
		assert.Equal(t, models.CaseStatusInProgress, updated.Status)
		assert.Equal(t, c.Subject, updated.Subject)
		assert.Equal(t, c.CaseNumber, updated.CaseNumber)
	})

	t.Run("any status may follow any other", func(t *testing.T) {
		_, err := UpdateCase(database, c.ID, UpdateCaseInput{Status: stringPtr(models.CaseStatusArchived)})
		require.NoError(t, err)
		updated, err := UpdateCase(database, c.ID, UpdateCaseInput{Status: stringPtr(models.CaseStatusRegistered)})
		require.NoError(t, err)
		assert.Equal(t, models.CaseStatusRegistered, updated.Status)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		_, err := UpdateCase(database, c.ID, UpdateCaseInput{Status: stringPtr("Perdida")})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("nested requester update", func(t *testing.T) {
		updated, err := UpdateCase(database, c.ID, UpdateCaseInput{
			Requester: &RequesterUpdate{FullName: stringPtr("Uno Actualizado"), Email: stringPtr("uno@correo.co")},
		})
		require.NoError(t, err)
		assert.Equal(t, "Uno Actualizado", updated.Requester.FullName)
		require.NotNil(t, updated.Requester.Email)
		assert.Equal(t, "uno@correo.co", *updated.Requester.Email)
		assert.Equal(t, "1", updated.Requester.IdentificationNumber)
	})

	t.Run("clearing the due date", func(t *testing.T) {
		due := time.Date(2030, 1, 15, 0, 0, 0, 0, time.Local)
		updated, err := UpdateCase(database, c.ID, UpdateCaseInput{DueDate: &due})
		require.NoError(t, err)
		require.NotNil(t, updated.DueDate)

		updated, err = UpdateCase(database, c.ID, UpdateCaseInput{ClearDueDate: true})
		require.NoError(t, err)
		assert.Nil(t, updated.DueDate)
	})

	t.Run("clearing the channel", func(t *testing.T) {
		updated, err := UpdateCase(database, c.ID, UpdateCaseInput{Channel: stringPtr("")})
		require.NoError(t, err)
		assert.Nil(t, updated.Channel)
	})

	t.Run("missing case", func(t *testing.T) {
		_, err := UpdateCase(database, "missing", UpdateCaseInput{Subject: stringPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteCase_CascadesActionsAndKeepsRequester(t *testing.T) {
	database := setupServiceDB(t)
	c := mustCreateCase(t, database, newCaseInput("1", "Uno", models.CaseTypePetition))
	other := mustCreateCase(t, database, newCaseInput("2", "Dos", models.CaseTypePetition))
	for i := 0; i < 3; i++ {
		_, err := AppendAction(database, c.ID, ActionInput{ActionType: models.ActionTypeObservation, Note: fmt.Sprint(i)})
		require.NoError(t, err)
	}
	_, err := AppendAction(database, other.ID, ActionInput{ActionType: models.ActionTypeObservation})
	require.NoError(t, err)

	require.NoError(t, DeleteCase(database, c.ID))

	var actions int64
	database.Model(&models.Action{}).Where("case_id = ?", c.ID).Count(&actions)
	assert.Zero(t, actions)
	database.Model(&models.Action{}).Where("case_id = ?", other.ID).Count(&actions)
	assert.Equal(t, int64(1), actions)

	var requesters int64
	database.Model(&models.Requester{}).Where("id = ?", c.RequesterID).Count(&requesters)
	assert.Equal(t, int64(1), requesters)

	assert.ErrorIs(t, DeleteCase(database, c.ID), ErrNotFound)
}

func TestSearchCases(t *testing.T) {
	database := setupServiceDB(t)

	freezeTime(t, time.Date(2024, 2, 10, 9, 0, 0, 0, time.Local))
	a := mustCreateCase(t, database, newCaseInput("111", "Carlos Ruiz", models.CaseTypePetition))
	freezeTime(t, time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local))
	b := mustCreateCase(t, database, newCaseInput("222", "Lucía Ramírez", models.CaseTypeComplaint))
	freezeTime(t, time.Date(2024, 4, 20, 9, 0, 0, 0, time.Local))
	c := mustCreateCase(t, database, newCaseInput("333", "Carla Ruiz", models.CaseTypeComplaint))
	_, err := UpdateCase(database, c.ID, UpdateCaseInput{Status: stringPtr(models.CaseStatusAnswered)})
	require.NoError(t, err)

	ids := func(cases []models.Case) []string {
		out := make([]string, len(cases))
		for i, x := range cases {
			out[i] = x.ID
		}
		return out
	}

	all, err := SearchCases(database, CaseSearch{})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, ids(all))

	byName, err := SearchCases(database, CaseSearch{Requester: "ruiz"})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID}, ids(byName))

	byID, err := SearchCases(database, CaseSearch{Requester: "22"})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(byID))

	byType, err := SearchCases(database, CaseSearch{CaseType: models.CaseTypeComplaint, Status: models.CaseStatusRegistered})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(byType))

	byNumber, err := SearchCases(database, CaseSearch{CaseNumber: "0001"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids(byNumber))

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	byRange, err := SearchCases(database, CaseSearch{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(byRange))
}

package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"pqr_flow_app_go/models"
	"pqr_flow_app_go/services/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportCases() []models.Case {
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)
	return []models.Case{
		{
			CaseNumber: "2024-PQR-0001",
			FiledAt:    time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local),
			DueDate:    &due,
			CaseType:   models.CaseTypePetition,
			Subject:    "Copia, con coma",
			Status:     models.CaseStatusRegistered,
			Channel:    stringPtr(models.ChannelWebsite),
			Requester:  models.Requester{IdentificationType: "CC", IdentificationNumber: "123", FullName: "Ana"},
		},
		{
			CaseNumber: "2024-PQR-0002",
			FiledAt:    time.Date(2024, 1, 11, 9, 0, 0, 0, time.Local),
			CaseType:   models.CaseTypeComplaint,
			Subject:    "Ruido",
			Status:     models.CaseStatusClosed,
			Requester:  models.Requester{IdentificationType: "NIT", IdentificationNumber: "900", FullName: "Empresa"},
		},
	}
}

func TestWriteCasesCSV(t *testing.T) {
	require.NoError(t, i18n.Load())
	ctx := i18n.WithLocale(context.Background(), "es")

	var buf bytes.Buffer
	require.NoError(t, WriteCasesCSV(ctx, &buf, exportCases(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Radicado", records[0][0])
	assert.Equal(t, []string{
		"2024-PQR-0001", "2024-01-10", models.CaseTypePetition, "Copia, con coma",
		models.CaseStatusRegistered, models.ChannelWebsite, "2024-02-01", "Ana", "CC 123", "Sí",
	}, records[1])
	assert.Equal(t, "", records[2][6])
	assert.Equal(t, "No", records[2][9])
}

func TestWriteCasesCSV_English(t *testing.T) {
	require.NoError(t, i18n.Load())
	ctx := i18n.WithLocale(context.Background(), "en")

	var buf bytes.Buffer
	require.NoError(t, WriteCasesCSV(ctx, &buf, nil, time.Now()))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotEqual(t, "Radicado", records[0][0])
}

func TestBuildCasesWorkbook(t *testing.T) {
	require.NoError(t, i18n.Load())
	ctx := i18n.WithLocale(context.Background(), "es")

	buf, err := BuildCasesWorkbook(ctx, exportCases(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("PQR")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Radicado", rows[0][0])
	assert.Equal(t, "2024-PQR-0002", rows[2][0])
}

func TestBuildReportWorkbook(t *testing.T) {
	require.NoError(t, i18n.Load())
	ctx := i18n.WithLocale(context.Background(), "es")

	stats := &CaseStats{
		Total:   3,
		Overdue: 1,
		ByType:  []LabelCount{{Label: models.CaseTypePetition, Count: 3}},
	}
	periods := []LabelCount{{Label: "2024-01", Count: 3}}
	matrix := []ActivityEntityCount{{Activity: "Asesoría", Entity: "Alcaldía", Count: 2}}

	buf, err := BuildReportWorkbook(ctx, stats, periods, matrix)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	total, err := f.GetCellValue("Resumen", "B1")
	require.NoError(t, err)
	assert.Equal(t, "3", total)

	rows, err := f.GetRows("Otras gestiones")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Asesoría", "Alcaldía", "2"}, rows[1])
}

package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"pqr_flow_app_go/models"
	"pqr_flow_app_go/services/i18n"

	"github.com/xuri/excelize/v2"
)

const exportDateLayout = "2006-01-02"

// caseExportHeader returns the translated column titles of case exports
func caseExportHeader(ctx context.Context) []string {
	keys := []string{
		"export.case_number", "export.filed_at", "export.case_type", "export.subject",
		"export.status", "export.channel", "export.due_date", "export.requester",
		"export.identification", "export.overdue",
	}
	header := make([]string, len(keys))
	for i, k := range keys {
		header[i] = i18n.T(ctx, k)
	}
	return header
}

func caseExportRecord(ctx context.Context, c models.Case, now time.Time) []string {
	dueDate := ""
	if c.DueDate != nil {
		dueDate = c.DueDate.Format(exportDateLayout)
	}
	overdue := i18n.T(ctx, "export.no")
	if c.IsOverdue(now) {
		overdue = i18n.T(ctx, "export.yes")
	}
	return []string{
		c.CaseNumber,
		c.FiledAt.Format(exportDateLayout),
		c.CaseType,
		c.Subject,
		c.Status,
		derefString(c.Channel),
		dueDate,
		c.Requester.FullName,
		c.Requester.IdentificationType + " " + c.Requester.IdentificationNumber,
		overdue,
	}
}

// WriteCasesCSV writes the cases as CSV with a translated header row
func WriteCasesCSV(ctx context.Context, w io.Writer, cases []models.Case, now time.Time) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(caseExportHeader(ctx)); err != nil {
		return err
	}
	for _, c := range cases {
		if err := writer.Write(caseExportRecord(ctx, c, now)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// BuildCasesWorkbook creates an XLSX workbook with one row per case
func BuildCasesWorkbook(ctx context.Context, cases []models.Case, now time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := i18n.T(ctx, "export.sheet_cases")
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DBEAFE"}, Pattern: 1},
	})

	header := caseExportHeader(ctx)
	if err := writeRow(f, sheet, 1, header); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle)

	for i, c := range cases {
		if err := writeRow(f, sheet, i+2, caseExportRecord(ctx, c, now)); err != nil {
			return nil, err
		}
	}
	f.SetColWidth(sheet, "A", "C", 20)
	f.SetColWidth(sheet, "D", "D", 50)
	f.SetColWidth(sheet, "E", lastCol, 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// BuildReportWorkbook creates an XLSX workbook with the statistics summary,
// the period breakdown and the other-activity matrix
func BuildReportWorkbook(ctx context.Context, stats *CaseStats, periods []LabelCount, matrix []ActivityEntityCount) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	summary := i18n.T(ctx, "export.sheet_summary")
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	row := 1
	put := func(sheet string, values ...interface{}) error {
		err := writeRow(f, sheet, row, values)
		row++
		return err
	}

	if err := put(summary, i18n.T(ctx, "report.total"), stats.Total); err != nil {
		return nil, err
	}
	if err := put(summary, i18n.T(ctx, "report.overdue"), stats.Overdue); err != nil {
		return nil, err
	}
	f.SetCellStyle(summary, "A1", "A2", boldStyle)

	sections := []struct {
		title  string
		counts []LabelCount
	}{
		{"report.by_type", stats.ByType},
		{"report.by_status", stats.ByStatus},
		{"report.by_channel", stats.ByChannel},
		{"report.by_period", periods},
	}
	for _, s := range sections {
		row++
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := put(summary, i18n.T(ctx, s.title), i18n.T(ctx, "report.count")); err != nil {
			return nil, err
		}
		f.SetCellStyle(summary, cell, cell, boldStyle)
		for _, c := range s.counts {
			if err := put(summary, c.Label, c.Count); err != nil {
				return nil, err
			}
		}
	}
	f.SetColWidth(summary, "A", "A", 35)

	others := i18n.T(ctx, "report.other_activities")
	if _, err := f.NewSheet(others); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	row = 1
	if err := put(others, i18n.T(ctx, "report.activity"), i18n.T(ctx, "report.entity"), i18n.T(ctx, "report.count")); err != nil {
		return nil, err
	}
	f.SetCellStyle(others, "A1", "C1", boldStyle)
	for _, m := range matrix {
		if err := put(others, m.Activity, m.Entity, m.Count); err != nil {
			return nil, err
		}
	}
	f.SetColWidth(others, "A", "B", 35)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func writeRow[T any](f *excelize.File, sheet string, row int, values []T) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

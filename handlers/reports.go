package handlers

import (
	"fmt"
	"net/http"
	"time"

	"pqr_flow_app_go/db"
	"pqr_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type typeCount struct {
	Tipo  string `json:"tipo"`
	Count int64  `json:"count"`
}

type statusCount struct {
	Estado string `json:"estado"`
	Count  int64  `json:"count"`
}

type channelCount struct {
	Canal string `json:"canal"`
	Count int64  `json:"count"`
}

type activityCount struct {
	Actividad string `json:"actividad"`
	Count     int64  `json:"count"`
}

type activityEntityCount struct {
	Actividad string `json:"actividad"`
	Entidad   string `json:"entidad"`
	Count     int64  `json:"count"`
}

// reportStatsResponse keeps the field names the front end reads
type reportStatsResponse struct {
	TotalPQR  int64          `json:"totalPQR"`
	Vencidas  int64          `json:"vencidas"`
	PorTipo   []typeCount    `json:"porTipo"`
	PorEstado []statusCount  `json:"porEstado"`
	PorCanal  []channelCount `json:"porCanal"`
}

type generalReportResponse struct {
	PQRs  []typeCount     `json:"pqrs"`
	Otras []activityCount `json:"otras"`
}

func newReportStatsResponse(stats *services.CaseStats) reportStatsResponse {
	resp := reportStatsResponse{
		TotalPQR:  stats.Total,
		Vencidas:  stats.Overdue,
		PorTipo:   make([]typeCount, 0, len(stats.ByType)),
		PorEstado: make([]statusCount, 0, len(stats.ByStatus)),
		PorCanal:  make([]channelCount, 0, len(stats.ByChannel)),
	}
	for _, g := range stats.ByType {
		resp.PorTipo = append(resp.PorTipo, typeCount{Tipo: g.Label, Count: g.Count})
	}
	for _, g := range stats.ByStatus {
		resp.PorEstado = append(resp.PorEstado, statusCount{Estado: g.Label, Count: g.Count})
	}
	for _, g := range stats.ByChannel {
		resp.PorCanal = append(resp.PorCanal, channelCount{Canal: g.Label, Count: g.Count})
	}
	return resp
}

// ReportStatsHandler returns totals, overdue count and the type, status and channel breakdowns
func ReportStatsHandler(c echo.Context) error {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		return serviceError(err)
	}
	stats, err := services.ComputeCaseStats(db.DB, filter, time.Now())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, newReportStatsResponse(stats))
}

// CasesByPeriodHandler groups the filtered cases by month, year or type
func CasesByPeriodHandler(c echo.Context) error {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		return serviceError(err)
	}
	groupBy, err := services.ParseGroupBy(c.QueryParam("groupBy"), services.GroupByType)
	if err != nil {
		return serviceError(err)
	}
	counts, err := services.CountCases(db.DB, filter, groupBy)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, counts)
}

// GeneralReportHandler returns case counts per type and activity counts over all records
func GeneralReportHandler(c echo.Context) error {
	report, err := services.BuildGeneralReport(db.DB)
	if err != nil {
		return serviceError(err)
	}
	resp := generalReportResponse{
		PQRs:  make([]typeCount, 0, len(report.Cases)),
		Otras: make([]activityCount, 0, len(report.OtherActivities)),
	}
	for _, g := range report.Cases {
		resp.PQRs = append(resp.PQRs, typeCount{Tipo: g.Label, Count: g.Count})
	}
	for _, g := range report.OtherActivities {
		resp.Otras = append(resp.Otras, activityCount{Actividad: g.Label, Count: g.Count})
	}
	return c.JSON(http.StatusOK, resp)
}

// OtherActivitiesReportHandler counts other activities per activity and entity
func OtherActivitiesReportHandler(c echo.Context) error {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		return serviceError(err)
	}
	matrix, err := services.OtherActivityMatrix(db.DB, filter)
	if err != nil {
		return serviceError(err)
	}
	resp := make([]activityEntityCount, 0, len(matrix))
	for _, m := range matrix {
		resp = append(resp, activityEntityCount{Actividad: m.Activity, Entidad: m.Entity, Count: m.Count})
	}
	return c.JSON(http.StatusOK, resp)
}

// OtherActivitiesByPeriodHandler groups other activities by month, year, activity or entity
func OtherActivitiesByPeriodHandler(c echo.Context) error {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		return serviceError(err)
	}
	groupBy, err := services.ParseGroupBy(c.QueryParam("groupBy"), services.GroupByActivity)
	if err != nil {
		return serviceError(err)
	}
	counts, err := services.CountOtherActivities(db.DB, filter, groupBy)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, counts)
}

// ExportReportXLSXHandler exports the statistics, the monthly series and the
// other-activities matrix as a workbook
func ExportReportXLSXHandler(c echo.Context) error {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		return serviceError(err)
	}
	now := time.Now()
	stats, err := services.ComputeCaseStats(db.DB, filter, now)
	if err != nil {
		return serviceError(err)
	}
	periods, err := services.CountCases(db.DB, filter, services.GroupByMonth)
	if err != nil {
		return serviceError(err)
	}
	matrix, err := services.OtherActivityMatrix(db.DB, filter)
	if err != nil {
		return serviceError(err)
	}

	buf, err := services.BuildReportWorkbook(c.Request().Context(), stats, periods, matrix)
	if err != nil {
		return serviceError(err)
	}
	return sendFile(c, xlsxContentType, fmt.Sprintf("informe_%s.xlsx", now.Format("20060102_150405")), buf.Bytes())
}

// ExportReportPDFHandler renders the statistics report as PDF
func ExportReportPDFHandler(c echo.Context) error {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		return serviceError(err)
	}
	now := time.Now()
	stats, err := services.ComputeCaseStats(db.DB, filter, now)
	if err != nil {
		return serviceError(err)
	}
	cfg, err := officeConfig()
	if err != nil {
		return serviceError(err)
	}
	return renderPDF(c, services.DocumentReport, services.ReportDocument(stats, filter, cfg), fmt.Sprintf("informe_%s.pdf", now.Format("20060102_150405")))
}

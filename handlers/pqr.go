package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pqr_flow_app_go/db"
	"pqr_flow_app_go/models"
	"pqr_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type requesterRequest struct {
	IdentificationType   string  `json:"identification_type"`
	IdentificationNumber string  `json:"identification_number"`
	FullName             string  `json:"full_name"`
	Email                *string `json:"email"`
	Phone                *string `json:"phone"`
	Address              *string `json:"address"`
}

type createCaseRequest struct {
	Requester        requesterRequest `json:"requester"`
	CaseType         string           `json:"case_type"`
	Subject          string           `json:"subject"`
	Channel          *string          `json:"channel"`
	DueDate          *string          `json:"due_date"`
	ManualCaseNumber string           `json:"manual_case_number"`
	Attachment       Attachment       `json:"attachment"`
	AttachmentName   *string          `json:"attachment_name"`
}

type requesterUpdateRequest struct {
	IdentificationType   *string `json:"identification_type"`
	IdentificationNumber *string `json:"identification_number"`
	FullName             *string `json:"full_name"`
	Email                *string `json:"email"`
	Phone                *string `json:"phone"`
	Address              *string `json:"address"`
}

type updateCaseRequest struct {
	Status    *string                 `json:"status"`
	Subject   *string                 `json:"subject"`
	CaseType  *string                 `json:"case_type"`
	Channel   *string                 `json:"channel"`
	DueDate   nullableString          `json:"due_date"`
	Requester *requesterUpdateRequest `json:"requester"`
	Voucher   Attachment              `json:"voucher"`
}

type actionRequest struct {
	ActionType     string     `json:"action_type"`
	Note           string     `json:"note"`
	PerformedBy    string     `json:"performed_by"`
	Attachment     Attachment `json:"attachment"`
	AttachmentName *string    `json:"attachment_name"`
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := services.ParseDate(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// officeConfig returns the office settings, or nil before first-run setup
func officeConfig() (*models.SystemConfig, error) {
	cfg, err := services.GetSystemConfig(db.DB)
	if errors.Is(err, services.ErrNotConfigured) {
		return nil, nil
	}
	return cfg, err
}

// refreshVoucher regenerates the stored voucher. Failures are logged by the service.
func refreshVoucher(ctx context.Context, cfg *models.SystemConfig, id string) {
	_ = services.RegenerateVoucher(ctx, db.DB, DocumentRenderer, cfg, id)
}

func caseSearchFromQuery(c echo.Context) (services.CaseSearch, error) {
	search := services.CaseSearch{
		Requester:  c.QueryParam("solicitante"),
		Status:     c.QueryParam("estado"),
		CaseNumber: c.QueryParam("radicado"),
		CaseType:   c.QueryParam("tipo_pqr"),
	}
	var err error
	if search.From, err = queryDate(c, "fecha_inicio"); err != nil {
		return search, err
	}
	if search.To, err = queryDate(c, "fecha_fin"); err != nil {
		return search, err
	}
	return search, nil
}

// ListCasesHandler returns the cases matching the query filters, newest first
func ListCasesHandler(c echo.Context) error {
	search, err := caseSearchFromQuery(c)
	if err != nil {
		return serviceError(err)
	}
	cases, err := services.SearchCases(db.DB, search)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, cases)
}

// GetCaseHandler returns a case with its requester and actions
func GetCaseHandler(c echo.Context) error {
	record, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, record)
}

// CreateCaseHandler files a new PQR
func CreateCaseHandler(c echo.Context) error {
	var req createCaseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}

	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return serviceError(err)
	}

	cfg, err := officeConfig()
	if err != nil {
		return serviceError(err)
	}

	created, err := services.CreateCase(db.DB, cfg, services.CreateCaseInput{
		Requester: services.RequesterInput{
			IdentificationType:   req.Requester.IdentificationType,
			IdentificationNumber: req.Requester.IdentificationNumber,
			FullName:             req.Requester.FullName,
			Email:                req.Requester.Email,
			Phone:                req.Requester.Phone,
			Address:              req.Requester.Address,
		},
		CaseType:         req.CaseType,
		Subject:          req.Subject,
		Channel:          req.Channel,
		DueDate:          dueDate,
		ManualCaseNumber: req.ManualCaseNumber,
		AttachmentData:   req.Attachment.Bytes(),
		AttachmentName:   req.AttachmentName,
	})
	if err != nil {
		return serviceError(err)
	}

	refreshVoucher(c.Request().Context(), cfg, created.ID)
	return c.JSON(http.StatusCreated, created)
}

// UpdateCaseHandler applies a partial update to a case
func UpdateCaseHandler(c echo.Context) error {
	var req updateCaseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}

	dueDate, err := parseOptionalDate(req.DueDate.Value)
	if err != nil {
		return serviceError(err)
	}

	input := services.UpdateCaseInput{
		Status:       req.Status,
		Subject:      req.Subject,
		CaseType:     req.CaseType,
		Channel:      req.Channel,
		DueDate:      dueDate,
		ClearDueDate: req.DueDate.Set && dueDate == nil,
		VoucherData:  req.Voucher.Bytes(),
	}
	if r := req.Requester; r != nil {
		input.Requester = &services.RequesterUpdate{
			IdentificationType:   r.IdentificationType,
			IdentificationNumber: r.IdentificationNumber,
			FullName:             r.FullName,
			Email:                r.Email,
			Phone:                r.Phone,
			Address:              r.Address,
		}
	}

	updated, err := services.UpdateCase(db.DB, c.Param("id"), input)
	if err != nil {
		return serviceError(err)
	}

	if input.VoucherData == nil {
		cfg, err := officeConfig()
		if err == nil {
			refreshVoucher(c.Request().Context(), cfg, updated.ID)
		}
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteCaseHandler removes a case and its actions
func DeleteCaseHandler(c echo.Context) error {
	if err := services.DeleteCase(db.DB, c.Param("id")); err != nil {
		return serviceError(err)
	}
	return messageResponse(c, http.StatusOK, "PQR eliminada")
}

// CreateActionHandler appends an action (actuación) to a case
func CreateActionHandler(c echo.Context) error {
	var req actionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}

	action, err := services.AppendAction(db.DB, c.Param("id"), services.ActionInput{
		ActionType:     req.ActionType,
		Note:           req.Note,
		PerformedBy:    req.PerformedBy,
		AttachmentData: req.Attachment.Bytes(),
		AttachmentName: req.AttachmentName,
	})
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, action)
}

// CaseAttachmentHandler downloads the document filed with a case
func CaseAttachmentHandler(c echo.Context) error {
	record, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	if len(record.AttachmentData) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "La PQR no tiene adjunto")
	}
	name := record.CaseNumber
	if record.AttachmentName != nil && *record.AttachmentName != "" {
		name = *record.AttachmentName
	}
	return sendFile(c, http.DetectContentType(record.AttachmentData), name, record.AttachmentData)
}

// ActionAttachmentHandler downloads the document attached to an action
func ActionAttachmentHandler(c echo.Context) error {
	var action models.Action
	err := db.DB.Where("id = ? AND case_id = ?", c.Param("actionId"), c.Param("id")).First(&action).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Actuación no encontrada")
		}
		return serviceError(err)
	}
	if len(action.AttachmentData) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "La actuación no tiene adjunto")
	}
	name := "actuacion-" + action.ID
	if action.AttachmentName != nil && *action.AttachmentName != "" {
		name = *action.AttachmentName
	}
	return sendFile(c, http.DetectContentType(action.AttachmentData), name, action.AttachmentData)
}

// CaseVoucherHandler serves the stored voucher, rendering it when none was stored yet
func CaseVoucherHandler(c echo.Context) error {
	record, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	filename := fmt.Sprintf("radicado-%s.pdf", record.CaseNumber)
	if len(record.VoucherData) > 0 {
		return sendFile(c, "application/pdf", filename, record.VoucherData)
	}

	cfg, err := officeConfig()
	if err != nil {
		return serviceError(err)
	}
	return renderPDF(c, services.DocumentVoucher, services.VoucherDocument(record, cfg), filename)
}

// CaseLogPDFHandler renders the case log (bitácora) of a case
func CaseLogPDFHandler(c echo.Context) error {
	record, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	cfg, err := officeConfig()
	if err != nil {
		return serviceError(err)
	}
	return renderPDF(c, services.DocumentCaseLog, services.CaseLogDocument(record, cfg), fmt.Sprintf("bitacora-%s.pdf", record.CaseNumber))
}

// ExportCasesCSVHandler exports the filtered case list as CSV
func ExportCasesCSVHandler(c echo.Context) error {
	search, err := caseSearchFromQuery(c)
	if err != nil {
		return serviceError(err)
	}
	cases, err := services.SearchCases(db.DB, search)
	if err != nil {
		return serviceError(err)
	}

	now := time.Now()
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=pqr_%s.csv", now.Format("20060102_150405")))
	c.Response().WriteHeader(http.StatusOK)
	return services.WriteCasesCSV(c.Request().Context(), c.Response().Writer, cases, now)
}

// ExportCasesXLSXHandler exports the filtered case list as a spreadsheet
func ExportCasesXLSXHandler(c echo.Context) error {
	search, err := caseSearchFromQuery(c)
	if err != nil {
		return serviceError(err)
	}
	cases, err := services.SearchCases(db.DB, search)
	if err != nil {
		return serviceError(err)
	}

	now := time.Now()
	buf, err := services.BuildCasesWorkbook(c.Request().Context(), cases, now)
	if err != nil {
		return serviceError(err)
	}
	return sendFile(c, xlsxContentType, fmt.Sprintf("pqr_%s.xlsx", now.Format("20060102_150405")), buf.Bytes())
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

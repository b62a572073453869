package handlers

import (
	"fmt"
	"net/http"
	"time"

	"pqr_flow_app_go/db"
	"pqr_flow_app_go/models"
	"pqr_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type systemConfigRequest struct {
	PetitionDays           *int       `json:"petition_days"`
	ComplaintDays          *int       `json:"complaint_days"`
	ClaimDays              *int       `json:"claim_days"`
	AppealDays             *int       `json:"appeal_days"`
	InformationRequestDays *int       `json:"information_request_days"`
	CaseNumberPrefix       *string    `json:"case_number_prefix"`
	AutoBackup             *bool      `json:"auto_backup"`
	BackupFrequencyDays    *int       `json:"backup_frequency_days"`
	RecoveryEmail1         *string    `json:"recovery_email_1"`
	RecoveryEmail2         *string    `json:"recovery_email_2"`
	EntityName             *string    `json:"entity_name"`
	EntityEmail            *string    `json:"entity_email"`
	EntityPhone            *string    `json:"entity_phone"`
	EntityWhatsapp         *string    `json:"entity_whatsapp"`
	EntityNIT              *string    `json:"entity_nit"`
	EntityLogo             Attachment `json:"entity_logo"`
	RemoveLogo             bool       `json:"remove_logo"`
}

// GetSystemConfigHandler returns the office settings. The password hash is never serialised.
func GetSystemConfigHandler(c echo.Context) error {
	cfg, err := services.GetSystemConfig(db.DB)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, cfg)
}

// UpdateSystemConfigHandler applies a partial settings update
func UpdateSystemConfigHandler(c echo.Context) error {
	var req systemConfigRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}

	input := services.SystemConfigUpdate{
		PetitionDays:           req.PetitionDays,
		ComplaintDays:          req.ComplaintDays,
		ClaimDays:              req.ClaimDays,
		AppealDays:             req.AppealDays,
		InformationRequestDays: req.InformationRequestDays,
		CaseNumberPrefix:       req.CaseNumberPrefix,
		AutoBackup:             req.AutoBackup,
		BackupFrequencyDays:    req.BackupFrequencyDays,
		RecoveryEmail1:         req.RecoveryEmail1,
		RecoveryEmail2:         req.RecoveryEmail2,
		EntityName:             req.EntityName,
		EntityEmail:            req.EntityEmail,
		EntityPhone:            req.EntityPhone,
		EntityWhatsapp:         req.EntityWhatsapp,
		EntityNIT:              req.EntityNIT,
		EntityLogo:             req.EntityLogo.Bytes(),
	}
	if req.RemoveLogo {
		input.EntityLogo = []byte{}
	}

	cfg, err := services.UpdateSystemConfig(db.DB, input)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, cfg)
}

// LogoHandler serves the office logo
func LogoHandler(c echo.Context) error {
	cfg, err := services.GetSystemConfig(db.DB)
	if err != nil {
		return serviceError(err)
	}
	if len(cfg.EntityLogo) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No hay logo configurado")
	}
	return c.Blob(http.StatusOK, http.DetectContentType(cfg.EntityLogo), cfg.EntityLogo)
}

// BackupHandler downloads a snapshot of every table as JSON or YAML
func BackupHandler(c echo.Context) error {
	format, err := services.ParseBackupFormat(c.QueryParam("format"))
	if err != nil {
		return serviceError(err)
	}
	backup, err := services.CreateBackup(db.DB)
	if err != nil {
		return serviceError(err)
	}

	filename := fmt.Sprintf("respaldo_%s.%s", backup.CreatedAt.Format("20060102_150405"), format)
	c.Response().Header().Set(echo.HeaderContentType, format.ContentType())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	c.Response().WriteHeader(http.StatusOK)
	return services.WriteBackup(c.Response().Writer, backup, format)
}

type catalogRequest struct {
	Name string `json:"name"`
}

func listCatalogHandler[T services.CatalogEntry]() echo.HandlerFunc {
	return func(c echo.Context) error {
		entries, err := services.ListCatalog[T](db.DB)
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(http.StatusOK, entries)
	}
}

func createCatalogHandler[T services.CatalogEntry](create func(*gorm.DB, string) (*T, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req catalogRequest
		if err := c.Bind(&req); err != nil {
			return badRequest("Invalid request body")
		}
		entry, err := create(db.DB, req.Name)
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(http.StatusCreated, entry)
	}
}

func renameCatalogHandler[T services.CatalogEntry]() echo.HandlerFunc {
	return func(c echo.Context) error {
		var req catalogRequest
		if err := c.Bind(&req); err != nil {
			return badRequest("Invalid request body")
		}
		entry, err := services.RenameCatalogEntry[T](db.DB, c.Param("id"), req.Name)
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(http.StatusOK, entry)
	}
}

func deleteCatalogHandler[T services.CatalogEntry]() echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := services.DeleteCatalogEntry[T](db.DB, c.Param("id")); err != nil {
			return serviceError(err)
		}
		return messageResponse(c, http.StatusOK, "Eliminado")
	}
}

// Activity type (tipos de actividad) handlers
var (
	ListActivityTypesHandler  = listCatalogHandler[models.ActivityType]()
	CreateActivityTypeHandler = createCatalogHandler(services.CreateActivityType)
	UpdateActivityTypeHandler = renameCatalogHandler[models.ActivityType]()
	DeleteActivityTypeHandler = deleteCatalogHandler[models.ActivityType]()
)

// Folder type (tipos de expediente) handlers
var (
	ListFolderTypesHandler  = listCatalogHandler[models.FolderType]()
	CreateFolderTypeHandler = createCatalogHandler(services.CreateFolderType)
	UpdateFolderTypeHandler = renameCatalogHandler[models.FolderType]()
	DeleteFolderTypeHandler = deleteCatalogHandler[models.FolderType]()
)

// HealthHandler reports whether the database answers
func HealthHandler(c echo.Context) error {
	status := http.StatusOK
	dbStatus := "ok"
	if sqlDB, err := db.DB.DB(); err != nil || sqlDB.Ping() != nil {
		status = http.StatusServiceUnavailable
		dbStatus = "unavailable"
	}
	return c.JSON(status, map[string]string{
		"status":   http.StatusText(status),
		"database": dbStatus,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

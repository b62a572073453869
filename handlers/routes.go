package handlers

import (
	"pqr_flow_app_go/config"
	"pqr_flow_app_go/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the REST API under /api plus the health and metrics endpoints
func RegisterRoutes(e *echo.Echo, cfg *config.Config) {
	e.GET("/health", HealthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.Use(middleware.APIRateLimiter.Middleware())

	// Public authentication routes
	auth := api.Group("/auth")
	auth.GET("/status", SetupStatusHandler)
	auth.POST("/setup", SetupHandler, middleware.LoginRateLimiter.Middleware())
	auth.POST("/login", LoginHandler, middleware.LoginRateLimiter.Middleware())
	auth.POST("/forgot-password", ForgotPasswordHandler, middleware.RecoveryRateLimiter.Middleware())
	auth.POST("/verify-token", VerifyTokenHandler, middleware.RecoveryRateLimiter.Middleware())
	auth.POST("/reset-password", ResetPasswordHandler, middleware.RecoveryRateLimiter.Middleware())

	requireAuth := middleware.RequireAuth(cfg.JWTSecret)
	auth.POST("/change-password", ChangePasswordHandler, requireAuth)

	pqr := api.Group("/pqr", requireAuth)
	{
		pqr.GET("", ListCasesHandler)
		pqr.POST("", CreateCaseHandler)
		pqr.GET("/export.csv", ExportCasesCSVHandler)
		pqr.GET("/export.xlsx", ExportCasesXLSXHandler)
		pqr.GET("/:id", GetCaseHandler)
		pqr.PUT("/:id", UpdateCaseHandler)
		pqr.DELETE("/:id", DeleteCaseHandler)
		pqr.POST("/:id/actuacion", CreateActionHandler)
		pqr.GET("/:id/actuacion/:actionId/attachment", ActionAttachmentHandler)
		pqr.GET("/:id/attachment", CaseAttachmentHandler)
		pqr.GET("/:id/voucher", CaseVoucherHandler)
		pqr.GET("/:id/bitacora.pdf", CaseLogPDFHandler)
	}

	report := api.Group("/report", requireAuth)
	{
		report.GET("/stats", ReportStatsHandler)
		report.GET("/by-period", CasesByPeriodHandler)
		report.GET("/general", GeneralReportHandler)
		report.GET("/otras", OtherActivitiesReportHandler)
		report.GET("/otras/by-period", OtherActivitiesByPeriodHandler)
		report.GET("/export.xlsx", ExportReportXLSXHandler)
		report.GET("/export.pdf", ExportReportPDFHandler)
	}

	cfgGroup := api.Group("/config", requireAuth)
	{
		cfgGroup.GET("/system", GetSystemConfigHandler)
		cfgGroup.PUT("/system", UpdateSystemConfigHandler)
		cfgGroup.GET("/logo", LogoHandler)
		cfgGroup.GET("/backup", BackupHandler)

		cfgGroup.GET("/tipos-actividad", ListActivityTypesHandler)
		cfgGroup.POST("/tipos-actividad", CreateActivityTypeHandler)
		cfgGroup.PUT("/tipos-actividad/:id", UpdateActivityTypeHandler)
		cfgGroup.DELETE("/tipos-actividad/:id", DeleteActivityTypeHandler)

		cfgGroup.GET("/tipos-expediente", ListFolderTypesHandler)
		cfgGroup.POST("/tipos-expediente", CreateFolderTypeHandler)
		cfgGroup.PUT("/tipos-expediente/:id", UpdateFolderTypeHandler)
		cfgGroup.DELETE("/tipos-expediente/:id", DeleteFolderTypeHandler)
	}

	dashboard := api.Group("/dashboard", requireAuth)
	{
		dashboard.GET("/stats", DashboardStatsHandler)
		dashboard.GET("/pending", PendingCasesHandler)
		dashboard.GET("/notes", ListNotesHandler)
		dashboard.POST("/notes", CreateNoteHandler)
		dashboard.POST("/notes/reorder", ReorderNotesHandler)
		dashboard.PUT("/notes/:id", UpdateNoteHandler)
		dashboard.DELETE("/notes/:id", DeleteNoteHandler)
	}

	other := api.Group("/otra-gestion", requireAuth)
	{
		other.GET("", ListOtherActivitiesHandler)
		other.POST("", CreateOtherActivityHandler)
		other.PUT("/:id", UpdateOtherActivityHandler)
		other.DELETE("/:id", DeleteOtherActivityHandler)
	}

	folders := api.Group("/expedientes", requireAuth)
	{
		folders.GET("", ListFoldersHandler)
		folders.POST("", CreateFolderHandler)
		folders.GET("/:id", GetFolderHandler)
		folders.PUT("/:id", UpdateFolderHandler)
		folders.DELETE("/:id", DeleteFolderHandler)
		folders.GET("/:id/documentos", ListFolderDocumentsHandler)
		folders.POST("/:id/documentos", UploadFolderDocumentHandler)
		folders.GET("/:id/documentos/:docId", DownloadFolderDocumentHandler)
		folders.DELETE("/:id/documentos/:docId", DeleteFolderDocumentHandler)
		folders.GET("/:id/bitacora", FolderLogHandler)
	}
}

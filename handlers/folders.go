package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pqr_flow_app_go/db"
	"pqr_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type folderRequest struct {
	FolderNumber *string `json:"folder_number"`
	Title        *string `json:"title"`
	FolderType   *string `json:"folder_type"`
	Status       *string `json:"status"`
	Description  *string `json:"description"`
	PerformedBy  string  `json:"performed_by"`
}

type documentRequest struct {
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	Content     Attachment `json:"content"`
	Description *string    `json:"description"`
	PerformedBy string     `json:"performed_by"`
}

// ListFoldersHandler lists folders filtered by ?tipo= and ?estado=
func ListFoldersHandler(c echo.Context) error {
	folders, err := services.ListFolders(db.DB, c.QueryParam("tipo"), c.QueryParam("estado"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, folders)
}

// GetFolderHandler returns a folder with its documents
func GetFolderHandler(c echo.Context) error {
	folder, err := services.GetFolder(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, folder)
}

// CreateFolderHandler opens a new folder
func CreateFolderHandler(c echo.Context) error {
	var req folderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	folder, err := services.CreateFolder(db.DB, services.FolderInput{
		FolderNumber: value(req.FolderNumber),
		Title:        value(req.Title),
		FolderType:   value(req.FolderType),
		Description:  req.Description,
	}, req.PerformedBy)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, folder)
}

// UpdateFolderHandler applies a partial folder update
func UpdateFolderHandler(c echo.Context) error {
	var req folderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	folder, err := services.UpdateFolder(db.DB, c.Param("id"), services.FolderUpdate{
		FolderNumber: req.FolderNumber,
		Title:        req.Title,
		FolderType:   req.FolderType,
		Status:       req.Status,
		Description:  req.Description,
	}, req.PerformedBy)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, folder)
}

// DeleteFolderHandler removes a folder, its documents and its log
func DeleteFolderHandler(c echo.Context) error {
	if err := services.DeleteFolder(c.Request().Context(), db.DB, services.Storage, c.Param("id")); err != nil {
		return serviceError(err)
	}
	return messageResponse(c, http.StatusOK, "Expediente eliminado")
}

// ListFolderDocumentsHandler lists the documents of a folder
func ListFolderDocumentsHandler(c echo.Context) error {
	docs, err := services.ListFolderDocuments(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, docs)
}

// UploadFolderDocumentHandler stores a document in a folder. It accepts a
// multipart form with a "file" field or a JSON body carrying the content.
func UploadFolderDocumentHandler(c echo.Context) error {
	var (
		upload      services.DocumentUpload
		performedBy string
	)

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return badRequest("No file uploaded")
		}
		src, err := fileHeader.Open()
		if err != nil {
			return serviceError(fmt.Errorf("failed to open upload: %w", err))
		}
		defer src.Close()

		upload = services.DocumentUpload{
			FileName:    fileHeader.Filename,
			ContentType: services.FileContentType(fileHeader),
			Size:        fileHeader.Size,
			Content:     src,
		}
		if d := c.FormValue("description"); d != "" {
			upload.Description = &d
		}
		performedBy = c.FormValue("performed_by")
	} else {
		var req documentRequest
		if err := c.Bind(&req); err != nil {
			return badRequest("Invalid request body")
		}
		if len(req.Content) == 0 {
			return badRequest("El documento está vacío")
		}
		upload = services.DocumentUpload{
			FileName:    req.FileName,
			ContentType: req.ContentType,
			Size:        int64(len(req.Content)),
			Content:     bytes.NewReader(req.Content),
			Description: req.Description,
		}
		performedBy = req.PerformedBy
	}

	if services.Storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Document storage is not available")
	}
	doc, err := services.AddFolderDocument(c.Request().Context(), db.DB, services.Storage, c.Param("id"), upload, performedBy)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, doc)
}

// DownloadFolderDocumentHandler streams a stored document
func DownloadFolderDocumentHandler(c echo.Context) error {
	if services.Storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Document storage is not available")
	}
	doc, content, err := services.OpenFolderDocument(c.Request().Context(), db.DB, services.Storage, c.Param("id"), c.Param("docId"))
	if err != nil {
		return serviceError(err)
	}
	defer content.Close()

	contentType := doc.MimeType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	return c.Stream(http.StatusOK, contentType, io.Reader(content))
}

// DeleteFolderDocumentHandler removes a document from a folder
func DeleteFolderDocumentHandler(c echo.Context) error {
	if services.Storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Document storage is not available")
	}
	err := services.DeleteFolderDocument(c.Request().Context(), db.DB, services.Storage, c.Param("id"), c.Param("docId"), c.QueryParam("performed_by"))
	if err != nil {
		return serviceError(err)
	}
	return messageResponse(c, http.StatusOK, "Documento eliminado")
}

// FolderLogHandler returns the log (bitácora) of a folder, newest first
func FolderLogHandler(c echo.Context) error {
	entries, err := services.ListFolderLog(db.DB, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

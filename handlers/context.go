package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"pqr_flow_app_go/config"
	"pqr_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// DocumentRenderer renders vouchers, case logs and report PDFs.
// cmd/server sets it at startup; nil disables PDF output.
var DocumentRenderer services.Renderer

func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get("config").(*config.Config); ok && cfg != nil {
		return cfg
	}
	return &config.Config{}
}

// queryDate parses an optional YYYY-MM-DD query parameter
func queryDate(c echo.Context, name string) (*time.Time, error) {
	value := strings.TrimSpace(c.QueryParam(name))
	if value == "" {
		return nil, nil
	}
	t, err := services.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &t, nil
}

// queryList reads a comma separated or repeated query parameter
func queryList(c echo.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryParams()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// reportFilterFromQuery reads the filter parameters shared by list, report and export endpoints
func reportFilterFromQuery(c echo.Context) (services.ReportFilter, error) {
	var filter services.ReportFilter
	var err error
	if filter.From, err = queryDate(c, "fecha_inicio"); err != nil {
		return filter, err
	}
	if filter.To, err = queryDate(c, "fecha_fin"); err != nil {
		return filter, err
	}
	filter.Types = queryList(c, "tipo_pqr")
	filter.Statuses = queryList(c, "estado")
	filter.Channels = queryList(c, "canal")
	filter.Activities = queryList(c, "actividades")
	return filter, nil
}

// sendFile writes a binary download
func sendFile(c echo.Context, contentType, filename string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, data)
}

// renderPDF renders a document with DocumentRenderer
func renderPDF(c echo.Context, kind services.DocumentKind, data interface{}, filename string) error {
	if DocumentRenderer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "PDF rendering is not available")
	}
	pdf, err := DocumentRenderer.Render(c.Request().Context(), kind, data)
	if err != nil {
		return serviceError(fmt.Errorf("failed to render %s: %w", kind, err))
	}
	return sendFile(c, "application/pdf", filename, pdf)
}

func messageResponse(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"message": message})
}

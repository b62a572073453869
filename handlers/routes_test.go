package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pqr_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRoutes(t *testing.T) {
	setupTestDB(t)

	e := echo.New()
	cfg := testConfig()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	RegisterRoutes(e, cfg)

	serve := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/metrics", "").Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/api/auth/status", "").Code)

	assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/api/pqr", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/api/pqr", "not-a-token").Code)

	other, _, err := services.IssueToken("another-secret-of-sufficient-length", time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/api/report/stats", other).Code)

	token, _, err := services.IssueToken(testSecret, time.Now())
	require.NoError(t, err)
	for _, path := range []string{"/api/pqr", "/api/report/stats", "/api/dashboard/notes", "/api/otra-gestion", "/api/expedientes"} {
		assert.Equal(t, http.StatusOK, serve(http.MethodGet, path, token).Code, path)
	}
	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/api/pqr/missing", token).Code)
}

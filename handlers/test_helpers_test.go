package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pqr_flow_app_go/config"
	"pqr_flow_app_go/db"
	"pqr_flow_app_go/models"
	"pqr_flow_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "handler-test-secret-with-enough-length"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique shared memory name isolates tests
	dsn := fmt.Sprintf("file:mem_%s?mode=memory&cache=shared", uuid.New().String())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))

	// Set globals used by handlers
	db.DB = testDB
	services.Storage = services.NewLocalStorage(t.TempDir())
	DocumentRenderer = nil
	t.Cleanup(func() { DocumentRenderer = nil })

	return testDB
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:   "test",
		JWTSecret:     testSecret,
		AppURL:        "http://localhost:5173",
		EmailTestMode: true,
	}
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", testConfig())

	return e, c, rec
}

// jsonContext builds a context with a JSON body and optional path parameters given as name, value pairs
func jsonContext(t *testing.T, method, path string, body interface{}, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	_, c, rec := setupEcho(method, path, reader)
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	setParams(c, params...)
	return c, rec
}

func setParams(c echo.Context, params ...string) {
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if assert.ErrorAs(t, err, &he) {
		assert.Equal(t, code, he.Code)
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func newCaseBody(idNumber, name, caseType string) map[string]interface{} {
	return map[string]interface{}{
		"requester": map[string]interface{}{
			"identification_type":   models.IdentificationCC,
			"identification_number": idNumber,
			"full_name":             name,
		},
		"case_type": caseType,
		"subject":   "Solicitud de copia de documentos",
		"channel":   models.ChannelInPerson,
	}
}

func createCaseViaHandler(t *testing.T, body map[string]interface{}) models.Case {
	t.Helper()
	c, rec := jsonContext(t, http.MethodPost, "/api/pqr", body)
	require.NoError(t, CreateCaseHandler(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[models.Case](t, rec)
}

// fakeRenderer records the documents it renders
type fakeRenderer struct {
	kinds []services.DocumentKind
	err   error
}

func (f *fakeRenderer) Render(ctx context.Context, kind services.DocumentKind, data interface{}) ([]byte, error) {
	f.kinds = append(f.kinds, kind)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 " + string(kind)), nil
}

func stringToPtr(s string) *string {
	return &s
}

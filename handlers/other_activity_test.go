package handlers

import (
	"net/http"
	"testing"

	"pqr_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOtherActivityHandlers(t *testing.T) {
	setupTestDB(t)

	var created []models.OtherActivity
	for _, body := range []map[string]string{
		{"identification_number": "1020", "full_name": "Juan Ríos", "entity": "Alcaldía", "activity": "Asesoría"},
		{"identification_number": "3040", "full_name": "Eva Mora", "entity": "Juzgado", "activity": "Conciliación"},
	} {
		c, rec := jsonContext(t, http.MethodPost, "/api/otra-gestion", body)
		require.NoError(t, CreateOtherActivityHandler(c))
		require.Equal(t, http.StatusCreated, rec.Code)
		created = append(created, decode[models.OtherActivity](t, rec))
	}

	t.Run("Activity is required", func(t *testing.T) {
		c, _ := jsonContext(t, http.MethodPost, "/api/otra-gestion", map[string]string{"full_name": "Sin actividad"})
		assertHTTPError(t, CreateOtherActivityHandler(c), http.StatusBadRequest)
	})

	t.Run("List and search", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/otra-gestion", nil)
		require.NoError(t, ListOtherActivitiesHandler(c))
		assert.Len(t, decode[[]models.OtherActivity](t, rec), 2)

		_, c, rec = setupEcho(http.MethodGet, "/api/otra-gestion?q=mora", nil)
		require.NoError(t, ListOtherActivitiesHandler(c))
		found := decode[[]models.OtherActivity](t, rec)
		require.Len(t, found, 1)
		assert.Equal(t, created[1].ID, found[0].ID)

		_, c, rec = setupEcho(http.MethodGet, "/api/otra-gestion?q=3040", nil)
		require.NoError(t, ListOtherActivitiesHandler(c))
		assert.Len(t, decode[[]models.OtherActivity](t, rec), 1)
	})

	t.Run("Update", func(t *testing.T) {
		c, rec := jsonContext(t, http.MethodPut, "/", map[string]string{"phone": "3001234567", "notes": "Volver el lunes"}, "id", created[0].ID)
		require.NoError(t, UpdateOtherActivityHandler(c))
		updated := decode[models.OtherActivity](t, rec)
		assert.Equal(t, "3001234567", updated.Phone)
		assert.Equal(t, "Asesoría", updated.Activity)
		require.NotNil(t, updated.Notes)
		assert.Equal(t, "Volver el lunes", *updated.Notes)

		c, _ = jsonContext(t, http.MethodPut, "/", map[string]string{"activity": ""}, "id", created[0].ID)
		assertHTTPError(t, UpdateOtherActivityHandler(c), http.StatusBadRequest)

		c, _ = jsonContext(t, http.MethodPut, "/", map[string]string{"phone": "1"}, "id", "missing")
		assertHTTPError(t, UpdateOtherActivityHandler(c), http.StatusNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		c, _ := jsonContext(t, http.MethodDelete, "/", nil, "id", created[0].ID)
		require.NoError(t, DeleteOtherActivityHandler(c))

		c, _ = jsonContext(t, http.MethodDelete, "/", nil, "id", created[0].ID)
		assertHTTPError(t, DeleteOtherActivityHandler(c), http.StatusNotFound)
	})
}

package services

import (
	"testing"

	"pqr_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityTypeCatalog(t *testing.T) {
	database := setupServiceDB(t)

	asesoria, err := CreateActivityType(database, "Asesoría")
	require.NoError(t, err)
	_, err = CreateActivityType(database, "Conciliación")
	require.NoError(t, err)

	_, err = CreateActivityType(database, "Asesoría")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = CreateActivityType(database, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	entries, err := ListCatalog[models.ActivityType](database)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Asesoría", entries[0].Name)

	renamed, err := RenameCatalogEntry[models.ActivityType](database, asesoria.ID, "Asesoría jurídica")
	require.NoError(t, err)
	assert.Equal(t, "Asesoría jurídica", renamed.Name)

	_, err = RenameCatalogEntry[models.ActivityType](database, asesoria.ID, "Conciliación")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = RenameCatalogEntry[models.ActivityType](database, "missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, DeleteCatalogEntry[models.ActivityType](database, asesoria.ID))
	assert.ErrorIs(t, DeleteCatalogEntry[models.ActivityType](database, asesoria.ID), ErrNotFound)
}

func TestFolderTypeCatalogIsSeparate(t *testing.T) {
	database := setupServiceDB(t)

	_, err := CreateActivityType(database, "Contratos")
	require.NoError(t, err)
	_, err = CreateFolderType(database, "Contratos")
	require.NoError(t, err)

	folderTypes, err := ListCatalog[models.FolderType](database)
	require.NoError(t, err)
	assert.Len(t, folderTypes, 1)
}

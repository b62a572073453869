package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pqr_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderLifecycle(t *testing.T) {
	database := setupServiceDB(t)

	freezeTime(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local))
	folder, err := CreateFolder(database, FolderInput{
		FolderNumber: "EXP-2024-01",
		Title:        "Contrato de aseo",
		FolderType:   "Contratos",
	}, "Laura")
	require.NoError(t, err)
	assert.Equal(t, models.FolderStatusOpen, folder.Status)

	_, err = CreateFolder(database, FolderInput{FolderNumber: "EXP-2024-01", Title: "Otro"}, "")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = CreateFolder(database, FolderInput{FolderNumber: "EXP-2", Title: " "}, "")
	assert.ErrorIs(t, err, ErrValidation)

	freezeTime(t, time.Date(2024, 5, 2, 9, 0, 0, 0, time.Local))
	updated, err := UpdateFolder(database, folder.ID, FolderUpdate{
		Title:  stringPtr("Contrato de aseo 2024"),
		Status: stringPtr(models.FolderStatusClosed),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "Contrato de aseo 2024", updated.Title)
	assert.Equal(t, models.FolderStatusClosed, updated.Status)

	_, err = UpdateFolder(database, folder.ID, FolderUpdate{Status: stringPtr("Perdido")}, "")
	assert.ErrorIs(t, err, ErrValidation)

	entries, err := ListFolderLog(database, folder.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	actions := []string{entries[0].Action, entries[1].Action, entries[2].Action}
	assert.Contains(t, actions, models.FolderLogStatusChanged)
	assert.Contains(t, actions, models.FolderLogUpdated)
	assert.Equal(t, models.FolderLogCreated, entries[2].Action)
	assert.Equal(t, "Laura", entries[2].PerformedBy)
	assert.Equal(t, models.DefaultActionUser, entries[0].PerformedBy)
}

func TestListFolders_Filters(t *testing.T) {
	database := setupServiceDB(t)

	freezeTime(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local))
	a, err := CreateFolder(database, FolderInput{FolderNumber: "A", Title: "A", FolderType: "Contratos"}, "")
	require.NoError(t, err)
	freezeTime(t, time.Date(2024, 2, 1, 9, 0, 0, 0, time.Local))
	b, err := CreateFolder(database, FolderInput{FolderNumber: "B", Title: "B", FolderType: "Tutelas"}, "")
	require.NoError(t, err)
	_, err = UpdateFolder(database, b.ID, FolderUpdate{Status: stringPtr(models.FolderStatusArchived)}, "")
	require.NoError(t, err)

	all, err := ListFolders(database, "", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID)

	contracts, err := ListFolders(database, "Contratos", "")
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, a.ID, contracts[0].ID)

	archived, err := ListFolders(database, "", models.FolderStatusArchived)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, b.ID, archived[0].ID)
}

func TestFolderDocuments(t *testing.T) {
	database := setupServiceDB(t)
	dir := t.TempDir()
	storage := NewLocalStorage(dir)
	ctx := context.Background()

	folder, err := CreateFolder(database, FolderInput{FolderNumber: "EXP-9", Title: "Tutela"}, "")
	require.NoError(t, err)

	content := "%PDF-1.4 contenido"
	doc, err := AddFolderDocument(ctx, database, storage, folder.ID, DocumentUpload{
		FileName: "../../fallo.pdf",
		Size:     int64(len(content)),
		Content:  strings.NewReader(content),
	}, "Laura")
	require.NoError(t, err)
	assert.Equal(t, "fallo.pdf", doc.FileName)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, int64(len(content)), doc.FileSize)
	assert.True(t, strings.HasPrefix(doc.StorageKey, "folders/"+folder.ID+"/"))

	docs, err := ListFolderDocuments(database, folder.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	meta, reader, err := OpenFolderDocument(ctx, database, storage, folder.ID, doc.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	assert.Equal(t, doc.ID, meta.ID)

	_, _, err = OpenFolderDocument(ctx, database, storage, "other-folder", doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = AddFolderDocument(ctx, database, storage, folder.ID, DocumentUpload{
		FileName: "grande.pdf",
		Size:     MaxFolderDocumentSize + 1,
		Content:  strings.NewReader("x"),
	}, "")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, DeleteFolderDocument(ctx, database, storage, folder.ID, doc.ID, ""))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(doc.StorageKey)))
	assert.True(t, os.IsNotExist(err))

	entries, err := ListFolderLog(database, folder.ID)
	require.NoError(t, err)
	var actions []string
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, models.FolderLogDocumentAdded)
	assert.Contains(t, actions, models.FolderLogDocumentRemoved)
}

func TestDeleteFolder_RemovesDocumentsAndFiles(t *testing.T) {
	database := setupServiceDB(t)
	dir := t.TempDir()
	storage := NewLocalStorage(dir)
	ctx := context.Background()

	folder, err := CreateFolder(database, FolderInput{FolderNumber: "EXP-1", Title: "Archivo"}, "")
	require.NoError(t, err)
	doc, err := AddFolderDocument(ctx, database, storage, folder.ID, DocumentUpload{
		FileName: "acta.txt",
		Size:     4,
		Content:  strings.NewReader("acta"),
	}, "")
	require.NoError(t, err)

	require.NoError(t, DeleteFolder(ctx, database, storage, folder.ID))

	var n int64
	database.Model(&models.FolderDocument{}).Count(&n)
	assert.Zero(t, n)
	database.Model(&models.FolderLogEntry{}).Count(&n)
	assert.Zero(t, n)
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(doc.StorageKey)))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, DeleteFolder(ctx, database, storage, folder.ID), ErrNotFound)
	_, err = ListFolderLog(database, folder.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

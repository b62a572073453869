package services

import (
	"testing"

	"pqr_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noteTexts(notes []models.QuickNote) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Text
	}
	return out
}

func assertDensePositions(t *testing.T, notes []models.QuickNote) {
	t.Helper()
	for i, n := range notes {
		assert.Equal(t, i, n.Position)
	}
}

func TestNotesLifecycle(t *testing.T) {
	database := setupServiceDB(t)

	a, err := AddNote(database, "Llamar a la alcaldía")
	require.NoError(t, err)
	b, err := AddNote(database, "Revisar correo")
	require.NoError(t, err)
	c, err := AddNote(database, "Imprimir informe")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, []int{a.Position, b.Position, c.Position})

	_, err = AddNote(database, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := UpdateNote(database, b.ID, "Revisar correo institucional")
	require.NoError(t, err)
	assert.Equal(t, "Revisar correo institucional", updated.Text)

	_, err = UpdateNote(database, "missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, DeleteNote(database, a.ID))
	notes, err := ListNotes(database)
	require.NoError(t, err)
	assert.Equal(t, []string{"Revisar correo institucional", "Imprimir informe"}, noteTexts(notes))
	assertDensePositions(t, notes)

	assert.ErrorIs(t, DeleteNote(database, a.ID), ErrNotFound)
}

func TestReorderNotes(t *testing.T) {
	database := setupServiceDB(t)

	var ids []string
	for _, text := range []string{"uno", "dos", "tres", "cuatro"} {
		n, err := AddNote(database, text)
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	reordered, err := ReorderNotes(database, []string{ids[3], ids[1], ids[0], ids[2]})
	require.NoError(t, err)
	assert.Equal(t, []string{"cuatro", "dos", "uno", "tres"}, noteTexts(reordered))
	assertDensePositions(t, reordered)

	listed, err := ListNotes(database)
	require.NoError(t, err)
	assert.Equal(t, noteTexts(reordered), noteTexts(listed))
}

func TestReorderNotes_RejectsNonPermutation(t *testing.T) {
	database := setupServiceDB(t)

	var ids []string
	for _, text := range []string{"uno", "dos", "tres"} {
		n, err := AddNote(database, text)
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	tests := map[string][]string{
		"missing id":   {ids[0], ids[1]},
		"duplicate id": {ids[0], ids[0], ids[1]},
		"unknown id":   {ids[0], ids[1], "other"},
	}
	for name, order := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReorderNotes(database, order)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	listed, err := ListNotes(database)
	require.NoError(t, err)
	assert.Equal(t, []string{"uno", "dos", "tres"}, noteTexts(listed))
}

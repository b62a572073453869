package handlers

import (
	"net/http"
	"sort"

	"pqr_flow_app_go/db"
	"pqr_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// DashboardStatsHandler returns case and folder totals with the per-status breakdown
func DashboardStatsHandler(c echo.Context) error {
	stats, err := services.GetDashboardStats(db.DB)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

// PendingCasesHandler returns the in-progress cases closest to their due date
func PendingCasesHandler(c echo.Context) error {
	cases, err := services.PendingCases(db.DB)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, cases)
}

type noteRequest struct {
	Text string `json:"text"`
}

// ListNotesHandler returns the quick notes in display order
func ListNotesHandler(c echo.Context) error {
	notes, err := services.ListNotes(db.DB)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, notes)
}

// CreateNoteHandler appends a quick note
func CreateNoteHandler(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	note, err := services.AddNote(db.DB, req.Text)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, note)
}

// UpdateNoteHandler edits the text of a quick note
func UpdateNoteHandler(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	note, err := services.UpdateNote(db.DB, c.Param("id"), req.Text)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, note)
}

// DeleteNoteHandler removes a quick note
func DeleteNoteHandler(c echo.Context) error {
	if err := services.DeleteNote(db.DB, c.Param("id")); err != nil {
		return serviceError(err)
	}
	return messageResponse(c, http.StatusOK, "Nota eliminada")
}

// ReorderNotesHandler sets the display order of all notes. The body is either
// {"ids": [...]} in the new order or {"notes": [{"id", "position"}]}.
func ReorderNotesHandler(c echo.Context) error {
	var req struct {
		IDs   []string `json:"ids"`
		Notes []struct {
			ID       string `json:"id"`
			Position int    `json:"position"`
		} `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}

	ids := req.IDs
	if len(ids) == 0 && len(req.Notes) > 0 {
		sort.SliceStable(req.Notes, func(i, j int) bool { return req.Notes[i].Position < req.Notes[j].Position })
		for _, n := range req.Notes {
			ids = append(ids, n.ID)
		}
	}

	notes, err := services.ReorderNotes(db.DB, ids)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, notes)
}

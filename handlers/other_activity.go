package handlers

import (
	"net/http"

	"pqr_flow_app_go/db"
	"pqr_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type otherActivityRequest struct {
	IdentificationNumber *string `json:"identification_number"`
	FullName             *string `json:"full_name"`
	Phone                *string `json:"phone"`
	Entity               *string `json:"entity"`
	Activity             *string `json:"activity"`
	Notes                *string `json:"notes"`
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListOtherActivitiesHandler returns the other-activities ledger, newest first
func ListOtherActivitiesHandler(c echo.Context) error {
	filter, err := reportFilterFromQuery(c)
	if err != nil {
		return serviceError(err)
	}
	records, err := services.ListOtherActivities(db.DB, filter, c.QueryParam("q"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, records)
}

// CreateOtherActivityHandler records a new service interaction
func CreateOtherActivityHandler(c echo.Context) error {
	var req otherActivityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	record, err := services.CreateOtherActivity(db.DB, services.OtherActivityInput{
		IdentificationNumber: value(req.IdentificationNumber),
		FullName:             value(req.FullName),
		Phone:                value(req.Phone),
		Entity:               value(req.Entity),
		Activity:             value(req.Activity),
		Notes:                req.Notes,
	})
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, record)
}

// UpdateOtherActivityHandler applies a partial update to a ledger entry
func UpdateOtherActivityHandler(c echo.Context) error {
	var req otherActivityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	record, err := services.UpdateOtherActivity(db.DB, c.Param("id"), services.OtherActivityUpdate{
		IdentificationNumber: req.IdentificationNumber,
		FullName:             req.FullName,
		Phone:                req.Phone,
		Entity:               req.Entity,
		Activity:             req.Activity,
		Notes:                req.Notes,
	})
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, record)
}

// DeleteOtherActivityHandler removes a ledger entry
func DeleteOtherActivityHandler(c echo.Context) error {
	if err := services.DeleteOtherActivity(db.DB, c.Param("id")); err != nil {
		return serviceError(err)
	}
	return messageResponse(c, http.StatusOK, "Registro eliminado")
}

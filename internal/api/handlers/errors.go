package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

// respondError maps a lifecycle error onto its HTTP status. Validation errors
// are the client's fault, invalid transitions are conflicts, collaborator
// failures are bad gateways; anything unrecognized is a 500.
func respondError(c echo.Context, requestID string, err error) error {
	status := http.StatusInternalServerError
	code := "internal_error"

	if custom, ok := utils.AsCustomError(err); ok {
		switch custom.Kind {
		case utils.KindNotFound:
			status = http.StatusNotFound
			code = "not_found"
		case utils.KindInvalidTransition:
			status = http.StatusConflict
			code = "invalid_transition"
		case utils.KindValidation:
			status = http.StatusBadRequest
			code = "validation_failed"
		case utils.KindCollaborator:
			status = http.StatusBadGateway
			code = "collaborator_error"
		case utils.KindParse:
			status = http.StatusBadGateway
			code = "collaborator_error"
		}
	}

	return c.JSON(status, models.ErrorResponse{
		Error:     code,
		Message:   err.Error(),
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}

// bindError is the 400 for unreadable request bodies
func bindError(c echo.Context, requestID string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:     "invalid_request",
		Message:   "Invalid request format",
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}

// validationError is the 400 for requests that bind but fail validation
func validationError(c echo.Context, requestID string, err error) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:     "validation_failed",
		Message:   err.Error(),
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}

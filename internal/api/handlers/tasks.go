package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"talentloop/internal/background"
	"talentloop/pkg/models"
)

// TaskStatusHandler returns the status of a background task by process id
func TaskStatusHandler(taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)

		result, err := taskManager.GetTaskResult(c.Request().Context(), c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "not_found",
				Message:   "No task found for process id " + c.Param("id"),
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, models.AsyncTaskStatusResponse{
			ProcessID:      result.ProcessID,
			Status:         models.AsyncStatus(result.Status),
			Data:           result.Data,
			Error:          result.Error,
			CreatedAt:      result.CreatedAt,
			CompletedAt:    result.CompletedAt,
			ProcessingTime: result.ProcessingTime,
			Metadata:       result.Metadata,
		})
	}
}

package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"talentloop/internal/background"
	"talentloop/internal/lifecycle"
	"talentloop/internal/logging"
	"talentloop/internal/store"
	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

var validate = validator.New()

// ScoringRunHandler scores the collaborator's profiles against a job and
// creates candidate records. Pass ?async=true to run the scoring pass in the
// background and poll it through the tasks endpoint.
func ScoringRunHandler(controller *lifecycle.Controller, taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.LogWithRequestID(reqID)

		var req models.ScoringRunRequest
		if err := c.Bind(&req); err != nil {
			logger.Error("Failed to bind scoring request", map[string]interface{}{"error": err.Error()})
			return bindError(c, reqID)
		}
		if err := validate.Struct(&req); err != nil {
			logger.Error("Scoring request validation failed", map[string]interface{}{"error": err.Error()})
			return validationError(c, reqID, err)
		}

		if c.QueryParam("async") == "true" {
			processID := utils.GenerateRequestID()
			if err := taskManager.SubmitScoringTask(c.Request().Context(), processID, req); err != nil {
				return respondError(c, reqID, err)
			}
			return c.JSON(http.StatusAccepted, models.CreateAsyncScoringResponse(processID))
		}

		created, err := controller.RunScoring(c.Request().Context(), &req)
		if err != nil {
			logger.Error("Scoring run failed", map[string]interface{}{
				"job_reference": req.JobReference,
				"error":         err.Error(),
			})
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.CandidateListResponse{
			Success:    true,
			Candidates: created,
			Count:      len(created),
			RequestID:  reqID,
		})
	}
}

// JobCandidatesHandler lists a job's candidates, best score first
func JobCandidatesHandler(st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)

		candidates, err := st.ListCandidatesByJob(c.Request().Context(), c.Param("reference"))
		if err != nil {
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.CandidateListResponse{
			Success:    true,
			Candidates: candidates,
			Count:      len(candidates),
			RequestID:  reqID,
		})
	}
}

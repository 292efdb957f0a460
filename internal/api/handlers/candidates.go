package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"talentloop/internal/background"
	"talentloop/internal/lifecycle"
	"talentloop/internal/logging"
	"talentloop/internal/store"
	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

// GetCandidateHandler returns a candidate with its interview when one exists
func GetCandidateHandler(st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		ctx := c.Request().Context()

		candidate, err := st.GetCandidate(ctx, c.Param("id"))
		if err != nil {
			return respondError(c, reqID, err)
		}

		response := models.CandidateResponse{
			Success:   true,
			Candidate: candidate,
			RequestID: reqID,
		}
		if interview, err := st.GetInterviewByCandidate(ctx, candidate.ID); err == nil {
			response.Interview = interview
		}

		return c.JSON(http.StatusOK, response)
	}
}

// InviteHandler moves a scored candidate to invited and sends the invitation
func InviteHandler(controller *lifecycle.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.LogWithRequestID(reqID)

		candidate, err := controller.Invite(c.Request().Context(), c.Param("id"))
		if err != nil {
			logger.Error("Invite failed", map[string]interface{}{
				"candidate_id": c.Param("id"),
				"error":        err.Error(),
			})
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.CandidateResponse{
			Success:   true,
			Candidate: candidate,
			RequestID: reqID,
		})
	}
}

// ScheduleHandler books the interview and kicks off the background bot watch.
// The watch task's process id is returned in the X-Watch-Process-ID header.
func ScheduleHandler(controller *lifecycle.Controller, taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.LogWithRequestID(reqID)

		var req models.ScheduleRequest
		if err := c.Bind(&req); err != nil {
			return bindError(c, reqID)
		}
		if err := validate.Struct(&req); err != nil {
			return validationError(c, reqID, err)
		}

		ctx := c.Request().Context()
		candidate, interview, err := controller.Schedule(ctx, c.Param("id"), &req)
		if err != nil {
			logger.Error("Schedule failed", map[string]interface{}{
				"candidate_id": c.Param("id"),
				"error":        err.Error(),
			})
			return respondError(c, reqID, err)
		}

		processID := utils.GenerateRequestID()
		if err := taskManager.SubmitWatchTask(ctx, processID, interview); err != nil {
			logger.Warn("Bot watch submission failed, interview needs manual polling", map[string]interface{}{
				"interview_id": interview.ID,
				"error":        err.Error(),
			})
		} else {
			c.Response().Header().Set("X-Watch-Process-ID", processID)
		}

		return c.JSON(http.StatusOK, models.CandidateResponse{
			Success:   true,
			Candidate: candidate,
			Interview: interview,
			RequestID: reqID,
		})
	}
}

// CompleteHandler manually finalizes the candidate's interview. Used when the
// background watch was lost or the recruiter ends the interview by hand.
func CompleteHandler(controller *lifecycle.Controller, st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		ctx := c.Request().Context()

		interview, err := st.GetInterviewByCandidate(ctx, c.Param("id"))
		if err != nil {
			return respondError(c, reqID, err)
		}

		updated, err := controller.CompleteInterview(ctx, interview.ID, models.InterviewCompleted, "manual")
		if err != nil {
			return respondError(c, reqID, err)
		}

		candidate, err := st.GetCandidate(ctx, c.Param("id"))
		if err != nil {
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.CandidateResponse{
			Success:   true,
			Candidate: candidate,
			Interview: updated,
			RequestID: reqID,
		})
	}
}

// DecideHandler records the terminal accept/reject decision
func DecideHandler(controller *lifecycle.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.LogWithRequestID(reqID)

		var req models.DecideRequest
		if err := c.Bind(&req); err != nil {
			return bindError(c, reqID)
		}
		if err := validate.Struct(&req); err != nil {
			return validationError(c, reqID, err)
		}

		decision, candidate, err := controller.Decide(c.Request().Context(), c.Param("id"), &req)
		if err != nil {
			logger.Error("Decision failed", map[string]interface{}{
				"candidate_id": c.Param("id"),
				"choice":       string(req.Choice),
				"error":        err.Error(),
			})
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.DecisionResponse{
			Success:   true,
			Candidate: candidate,
			Decision:  decision,
			RequestID: reqID,
		})
	}
}

// RematchHandler previews alternative openings for a candidate
func RematchHandler(controller *lifecycle.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)

		suggestions, err := controller.Rematch(c.Request().Context(), c.Param("id"))
		if err != nil {
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.RematchResponse{
			Success:     true,
			Suggestions: suggestions,
			RequestID:   reqID,
		})
	}
}

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"talentloop/internal/lifecycle"
	"talentloop/internal/logging"
	"talentloop/internal/store"
	"talentloop/pkg/models"
)

// GetInterviewHandler returns an interview record
func GetInterviewHandler(st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)

		interview, err := st.GetInterview(c.Request().Context(), c.Param("id"))
		if err != nil {
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.InterviewResponse{
			Success:   true,
			Interview: interview,
			RequestID: reqID,
		})
	}
}

// PollInterviewHandler performs one bot status poll and applies the result
func PollInterviewHandler(controller *lifecycle.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.LogWithRequestID(reqID)

		interview, err := controller.PollInterview(c.Request().Context(), c.Param("id"))
		if err != nil {
			logger.Error("Interview poll failed", map[string]interface{}{
				"interview_id": c.Param("id"),
				"error":        err.Error(),
			})
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.InterviewResponse{
			Success:   true,
			Interview: interview,
			RequestID: reqID,
		})
	}
}

// TranscriptHandler returns the normalized transcript for an interview
func TranscriptHandler(controller *lifecycle.Controller) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)

		_, segments, err := controller.Transcript(c.Request().Context(), c.Param("id"))
		if err != nil {
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.TranscriptResponse{
			Success:   true,
			Segments:  segments,
			RequestID: reqID,
		})
	}
}

// EvaluateHandler runs the evaluation over a completed interview and moves
// the candidate to evaluated
func EvaluateHandler(controller *lifecycle.Controller, st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.LogWithRequestID(reqID)
		ctx := c.Request().Context()

		var req models.EvaluateRequest
		if err := c.Bind(&req); err != nil {
			return bindError(c, reqID)
		}

		interview, err := st.GetInterview(ctx, c.Param("id"))
		if err != nil {
			return respondError(c, reqID, err)
		}

		evaluation, err := controller.RecordEvaluation(ctx, interview.CandidateID, req.JobDescription)
		if err != nil {
			logger.Error("Evaluation failed", map[string]interface{}{
				"interview_id": interview.ID,
				"candidate_id": interview.CandidateID,
				"error":        err.Error(),
			})
			return respondError(c, reqID, err)
		}

		candidate, err := st.GetCandidate(ctx, interview.CandidateID)
		if err != nil {
			return respondError(c, reqID, err)
		}

		return c.JSON(http.StatusOK, models.EvaluationResponse{
			Success:    true,
			Candidate:  candidate,
			Evaluation: evaluation,
			RequestID:  reqID,
		})
	}
}

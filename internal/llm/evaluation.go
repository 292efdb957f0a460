package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"talentloop/internal/logging"
	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

// rawEvaluation is the JSON shape requested from the provider. Every field is
// optional on the wire; defaulting happens per field, never whole-response.
type rawEvaluation struct {
	Summary          string   `json:"summary"`
	GreenFlags       []string `json:"green_flags"`
	YellowFlags      []string `json:"yellow_flags"`
	RedFlags         []string `json:"red_flags"`
	MatchPercentage  *int     `json:"match_percentage"`
	MatchExplanation string   `json:"match_explanation"`
}

// Completer is the slice of the manager the evaluator needs
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Evaluator turns an interview transcript into a structured evaluation using
// the configured text-generation provider
type Evaluator struct {
	completer Completer
	logger    logging.Logger
}

// NewEvaluator creates an evaluator backed by the given completer, usually
// the provider manager
func NewEvaluator(completer Completer) *Evaluator {
	return &Evaluator{
		completer: completer,
		logger:    logging.GetGlobalLogger().WithField("component", "evaluator"),
	}
}

// EvaluateInterview produces an evaluation from the transcript and job
// description. Transport failures surface as collaborator errors; a malformed
// or partial response is absorbed by field-level defaults so a completed
// interview always yields an evaluation.
func (e *Evaluator) EvaluateInterview(ctx context.Context, candidate *models.Candidate, interview *models.Interview, transcript []models.TranscriptSegment, jobDescription string) (*models.Evaluation, error) {
	prompt := buildEvaluationPrompt(candidate, transcript, jobDescription)

	responseText, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, utils.NewCollaboratorError("llm", err)
	}

	evaluation := parseEvaluationResponse(responseText)
	evaluation.CandidateID = candidate.ID
	evaluation.InterviewID = interview.ID

	e.logger.Info("Interview evaluated", map[string]interface{}{
		"candidate_id":     candidate.ID,
		"interview_id":     interview.ID,
		"match_percentage": evaluation.MatchPercentage,
		"green_flags":      len(evaluation.GreenFlags),
		"red_flags":        len(evaluation.RedFlags),
	})
	return evaluation, nil
}

// buildEvaluationPrompt renders the transcript and job context into the
// evaluation prompt
func buildEvaluationPrompt(candidate *models.Candidate, transcript []models.TranscriptSegment, jobDescription string) string {
	var sb strings.Builder
	for _, seg := range transcript {
		sb.WriteString(seg.Speaker)
		sb.WriteString(": ")
		sb.WriteString(seg.Text)
		sb.WriteString("\n")
	}
	transcriptText := sb.String()
	if transcriptText == "" {
		transcriptText = "(no transcript was captured)"
	}

	return fmt.Sprintf(`You are an experienced technical recruiter reviewing an interview transcript. Analyze the candidate's performance against the job requirements and return your assessment as a JSON object.

Return ONLY a valid JSON object with exactly these fields:

{
  "summary": "string - 2-3 sentence overall assessment of the interview",
  "green_flags": ["array of strings - positive signals observed in the interview"],
  "yellow_flags": ["array of strings - points needing clarification or mild concerns"],
  "red_flags": ["array of strings - serious concerns observed in the interview"],
  "match_percentage": number - integer 0-100 for overall fit against the job,
  "match_explanation": "string - 1-2 sentences justifying the match percentage"
}

IMPORTANT RULES:
1. Return ONLY valid JSON, no additional text or explanation
2. Base every observation on the transcript; never invent statements the candidate did not make
3. Use empty arrays when no flags of a kind were observed
4. match_percentage must be an integer between 0 and 100

CANDIDATE: %s

JOB DESCRIPTION:
%s

INTERVIEW TRANSCRIPT:
%s`, candidate.Name, jobDescription, transcriptText)
}

// parseEvaluationResponse decodes the provider's reply with field-level
// defaulting and clamping. A response that fails to parse entirely still
// yields a neutral evaluation rather than an error.
func parseEvaluationResponse(responseText string) *models.Evaluation {
	responseText = stripCodeFences(responseText)

	var raw rawEvaluation
	if err := json.Unmarshal([]byte(responseText), &raw); err != nil {
		logging.GetGlobalLogger().Warn("Evaluation response was not valid JSON, applying defaults", map[string]interface{}{
			"error": err.Error(),
		})
	}

	evaluation := &models.Evaluation{
		Summary:          utils.GetStringOrDefault(strings.TrimSpace(raw.Summary), models.DefaultEvaluationSummary),
		GreenFlags:       emptyIfNil(raw.GreenFlags),
		YellowFlags:      emptyIfNil(raw.YellowFlags),
		RedFlags:         emptyIfNil(raw.RedFlags),
		MatchPercentage:  models.NeutralMatchPercentage,
		MatchExplanation: strings.TrimSpace(raw.MatchExplanation),
	}
	if raw.MatchPercentage != nil {
		evaluation.MatchPercentage = utils.ClampPercentage(*raw.MatchPercentage)
	}
	return evaluation
}

// stripCodeFences removes markdown code fences some providers wrap around JSON
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}
	return text
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

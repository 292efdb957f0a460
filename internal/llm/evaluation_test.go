package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentloop/pkg/models"
)

func TestParseEvaluationResponse_CompleteResponse(t *testing.T) {
	response := `{
		"summary": "Strong technical performance with clear communication.",
		"green_flags": ["Deep Go experience", "Clear explanations"],
		"yellow_flags": ["Limited Kubernetes exposure"],
		"red_flags": [],
		"match_percentage": 84,
		"match_explanation": "Covers nearly every requirement of the role."
	}`

	evaluation := parseEvaluationResponse(response)

	assert.Equal(t, "Strong technical performance with clear communication.", evaluation.Summary)
	assert.Equal(t, []string{"Deep Go experience", "Clear explanations"}, evaluation.GreenFlags)
	assert.Equal(t, []string{"Limited Kubernetes exposure"}, evaluation.YellowFlags)
	assert.Equal(t, []string{}, evaluation.RedFlags)
	assert.Equal(t, 84, evaluation.MatchPercentage)
	assert.Equal(t, "Covers nearly every requirement of the role.", evaluation.MatchExplanation)
}

func TestParseEvaluationResponse_FencedJSON(t *testing.T) {
	response := "```json\n{\"summary\": \"Good interview.\", \"match_percentage\": 70}\n```"

	evaluation := parseEvaluationResponse(response)

	assert.Equal(t, "Good interview.", evaluation.Summary)
	assert.Equal(t, 70, evaluation.MatchPercentage)
}

func TestParseEvaluationResponse_MissingFieldsGetDefaults(t *testing.T) {
	evaluation := parseEvaluationResponse(`{"green_flags": ["Punctual"]}`)

	assert.Equal(t, models.DefaultEvaluationSummary, evaluation.Summary)
	assert.Equal(t, []string{"Punctual"}, evaluation.GreenFlags)
	assert.Equal(t, []string{}, evaluation.YellowFlags)
	assert.Equal(t, []string{}, evaluation.RedFlags)
	assert.Equal(t, models.NeutralMatchPercentage, evaluation.MatchPercentage)
}

func TestParseEvaluationResponse_ClampsMatchPercentage(t *testing.T) {
	high := parseEvaluationResponse(`{"match_percentage": 150}`)
	assert.Equal(t, 100, high.MatchPercentage)

	low := parseEvaluationResponse(`{"match_percentage": -5}`)
	assert.Equal(t, 0, low.MatchPercentage)
}

func TestParseEvaluationResponse_GarbageYieldsNeutralEvaluation(t *testing.T) {
	evaluation := parseEvaluationResponse("I'm sorry, I cannot evaluate this interview.")

	require.NotNil(t, evaluation)
	assert.Equal(t, models.DefaultEvaluationSummary, evaluation.Summary)
	assert.Equal(t, models.NeutralMatchPercentage, evaluation.MatchPercentage)
	assert.Empty(t, evaluation.GreenFlags)
	assert.Empty(t, evaluation.RedFlags)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, stripCodeFences("  {\"a\":1}  "))
}

func TestBuildEvaluationPrompt_IncludesTranscriptAndJob(t *testing.T) {
	candidate := &models.Candidate{Name: "Ada Lovelace"}
	transcript := []models.TranscriptSegment{
		{Speaker: "Interviewer", Text: "Tell me about your last project."},
		{Speaker: "Ada Lovelace", Text: "I built a distributed scheduler in Go."},
	}

	prompt := buildEvaluationPrompt(candidate, transcript, "Senior Go engineer")

	assert.Contains(t, prompt, "Ada Lovelace")
	assert.Contains(t, prompt, "Interviewer: Tell me about your last project.")
	assert.Contains(t, prompt, "Senior Go engineer")
	assert.NotContains(t, prompt, "(no transcript was captured)")
}

func TestBuildEvaluationPrompt_EmptyTranscriptPlaceholder(t *testing.T) {
	prompt := buildEvaluationPrompt(&models.Candidate{Name: "Ada"}, nil, "Senior Go engineer")
	assert.Contains(t, prompt, "(no transcript was captured)")
}

package models

import "time"

// DefaultEvaluationSummary is substituted when the text-generation collaborator
// returns no usable summary
const DefaultEvaluationSummary = "Evaluation completed"

// NeutralMatchPercentage is substituted when no percentage could be parsed
const NeutralMatchPercentage = 50

// Evaluation is produced once per completed interview. All fields originate
// from the text-generation collaborator and are stored verbatim after
// field-level defaulting and clamping.
type Evaluation struct {
	ID               string    `json:"id"`
	CandidateID      string    `json:"candidate_id"`
	InterviewID      string    `json:"interview_id"`
	Summary          string    `json:"summary"`
	GreenFlags       []string  `json:"green_flags"`
	YellowFlags      []string  `json:"yellow_flags"`
	RedFlags         []string  `json:"red_flags"`
	MatchPercentage  int       `json:"match_percentage"`
	MatchExplanation string    `json:"match_explanation"`
	CreatedAt        time.Time `json:"created_at"`
}

// DecisionChoice is the accept/reject flag on a terminal decision
type DecisionChoice string

const (
	ChoiceAccept DecisionChoice = "accept"
	ChoiceReject DecisionChoice = "reject"
)

// RematchSuggestion is one ranked alternative opening for a rejected candidate
type RematchSuggestion struct {
	JobReference    string `json:"job_reference"`
	JobTitle        string `json:"job_title"`
	MatchPercentage int    `json:"match_percentage"`
	Explanation     string `json:"explanation"`
}

// Decision is the terminal record tied to a candidate and its evaluation.
// On reject it carries a documented reason and the ranked rematch suggestions.
type Decision struct {
	ID                 string              `json:"id"`
	CandidateID        string              `json:"candidate_id"`
	EvaluationID       string              `json:"evaluation_id,omitempty"`
	Choice             DecisionChoice      `json:"choice"`
	Reason             string              `json:"reason,omitempty"`
	ReasonCategory     string              `json:"reason_category,omitempty"`
	RematchSuggestions []RematchSuggestion `json:"rematch_suggestions,omitempty"`
	AddedToMarketplace bool                `json:"added_to_marketplace"`
	EmailSentAt        *time.Time          `json:"email_sent_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

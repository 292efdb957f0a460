package models

// ScoringRunRequest asks the scoring collaborator to score profiles against a job
type ScoringRunRequest struct {
	JobReference   string  `json:"job_reference" validate:"required"`
	TopK           int     `json:"top_k,omitempty" validate:"omitempty,min=1,max=100"`
	ScoreThreshold float64 `json:"score_threshold,omitempty" validate:"omitempty,min=0,max=100"`
}

// ScheduleRequest carries the meeting details for scheduling an interview
type ScheduleRequest struct {
	MeetingURL  string `json:"meeting_url" validate:"required,url"`
	ScheduledAt string `json:"scheduled_at" validate:"required"`
}

// DecideRequest records the terminal accept/reject decision for a candidate.
// A reject requires a reason category; free-text reason is required when the
// category is "other".
type DecideRequest struct {
	Choice         DecisionChoice `json:"choice" validate:"required,oneof=accept reject"`
	ReasonCategory string         `json:"reason_category,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	SuppressEmail  bool           `json:"suppress_email,omitempty"`
}

// EvaluateRequest triggers an LLM evaluation of a completed interview
type EvaluateRequest struct {
	JobDescription string `json:"job_description,omitempty"`
}

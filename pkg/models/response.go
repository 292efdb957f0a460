package models

import "time"

// CandidateListResponse is the response for listing candidates of a job
type CandidateListResponse struct {
	Success    bool         `json:"success"`
	Candidates []*Candidate `json:"candidates"`
	Count      int          `json:"count"`
	RequestID  string       `json:"request_id"`
}

// CandidateResponse wraps a single candidate mutation result
type CandidateResponse struct {
	Success   bool       `json:"success"`
	Candidate *Candidate `json:"candidate"`
	Interview *Interview `json:"interview,omitempty"`
	RequestID string     `json:"request_id"`
}

// DecisionResponse wraps the terminal decision result
type DecisionResponse struct {
	Success   bool       `json:"success"`
	Candidate *Candidate `json:"candidate"`
	Decision  *Decision  `json:"decision"`
	RequestID string     `json:"request_id"`
}

// EvaluationResponse wraps a recorded evaluation
type EvaluationResponse struct {
	Success    bool        `json:"success"`
	Candidate  *Candidate  `json:"candidate"`
	Evaluation *Evaluation `json:"evaluation"`
	RequestID  string      `json:"request_id"`
}

// RematchResponse carries the resolver's ranked suggestions
type RematchResponse struct {
	Success     bool                `json:"success"`
	Suggestions []RematchSuggestion `json:"suggestions"`
	RequestID   string              `json:"request_id"`
}

// TranscriptResponse carries the normalized interview transcript
type TranscriptResponse struct {
	Success   bool                `json:"success"`
	Segments  []TranscriptSegment `json:"segments"`
	RequestID string              `json:"request_id"`
}

// InterviewResponse wraps a single interview record
type InterviewResponse struct {
	Success   bool       `json:"success"`
	Interview *Interview `json:"interview"`
	RequestID string     `json:"request_id"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

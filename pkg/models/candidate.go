package models

import "time"

// CandidateStatus represents the candidate's stage in the recruitment workflow
type CandidateStatus string

const (
	StatusScored        CandidateStatus = "scored"
	StatusInvited       CandidateStatus = "invited"
	StatusScheduled     CandidateStatus = "scheduled"
	StatusInterviewDone CandidateStatus = "interview_done"
	StatusEvaluated     CandidateStatus = "evaluated"
	StatusDecided       CandidateStatus = "decided"
	StatusMarketplace   CandidateStatus = "marketplace"
)

// CandidateStatuses lists every valid candidate status
var CandidateStatuses = []CandidateStatus{
	StatusScored,
	StatusInvited,
	StatusScheduled,
	StatusInterviewDone,
	StatusEvaluated,
	StatusDecided,
	StatusMarketplace,
}

// IsValid reports whether the status is one of the enumerated values
func (s CandidateStatus) IsValid() bool {
	for _, known := range CandidateStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s CandidateStatus) String() string {
	return string(s)
}

// Candidate represents a profile scored against one job posting, tracked
// through the recruitment lifecycle
type Candidate struct {
	ID               string          `json:"id"`
	JobReference     string          `json:"job_reference"`
	ProfileReference string          `json:"profile_reference"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone,omitempty"`
	Score            float64         `json:"score"`
	WhyMatch         []string        `json:"why_match,omitempty"`
	Status           CandidateStatus `json:"status"`

	InvitedAt       *time.Time `json:"invited_at,omitempty"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	InterviewDoneAt *time.Time `json:"interview_done_at,omitempty"`
	EvaluatedAt     *time.Time `json:"evaluated_at,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

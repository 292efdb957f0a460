package models

import "time"

// InterviewStatus represents the interview's own smaller lifecycle, driven by
// polling the recording bot collaborator. Interviews are born scheduled: the
// bot is dispatched in the same operation that creates the record.
type InterviewStatus string

const (
	InterviewScheduled  InterviewStatus = "scheduled"
	InterviewInProgress InterviewStatus = "in_progress"
	InterviewCompleted  InterviewStatus = "completed"
	InterviewFailed     InterviewStatus = "failed"
)

// IsTerminal reports whether the interview has reached a final state
func (s InterviewStatus) IsTerminal() bool {
	return s == InterviewCompleted || s == InterviewFailed
}

func (s InterviewStatus) String() string {
	return string(s)
}

// Interview is one-to-one with a candidate for a given job and carries the
// scheduling metadata plus the external recording-bot reference
type Interview struct {
	ID           string          `json:"id"`
	CandidateID  string          `json:"candidate_id"`
	JobReference string          `json:"job_reference"`
	MeetingURL   string          `json:"meeting_url"`
	ScheduledAt  time.Time       `json:"scheduled_at"`
	BotID        string          `json:"bot_id,omitempty"`
	Status       InterviewStatus `json:"status"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	EndedAt      *time.Time      `json:"ended_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TranscriptSegment is a speaker-attributed slice of the interview recording
type TranscriptSegment struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	StartMs    int     `json:"start_ms"`
	EndMs      int     `json:"end_ms"`
	Confidence float64 `json:"confidence"`
}

package models

import (
	"time"
)

// AsyncStatus represents the status of an async operation
type AsyncStatus string

const (
	AsyncStatusAccepted   AsyncStatus = "ACCEPTED"
	AsyncStatusProcessing AsyncStatus = "PROCESSING"
	AsyncStatusSuccess    AsyncStatus = "SUCCESS"
	AsyncStatusFailure    AsyncStatus = "FAILURE"
)

// AsyncWatchResponse represents the immediate response when a bot watch task
// is accepted for background processing
type AsyncWatchResponse struct {
	ProcessID string      `json:"processId"`
	Status    AsyncStatus `json:"status"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// AsyncTaskStatusResponse represents the response for task status queries
type AsyncTaskStatusResponse struct {
	ProcessID      string                 `json:"processId"`
	Status         AsyncStatus            `json:"status"`
	Data           interface{}            `json:"data,omitempty"`
	Error          string                 `json:"error,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	CompletedAt    *time.Time             `json:"completedAt,omitempty"`
	ProcessingTime *time.Duration         `json:"processingTime,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// AsyncWatchCompletionData represents the completion data for bot watch tasks
type AsyncWatchCompletionData struct {
	InterviewID string          `json:"interview_id"`
	BotID       string          `json:"bot_id,omitempty"`
	FinalStatus InterviewStatus `json:"final_status"`
	Attempts    int             `json:"attempts"`
}

// CreateAsyncWatchResponse creates a successful async watch response
func CreateAsyncWatchResponse(processID string) *AsyncWatchResponse {
	return &AsyncWatchResponse{
		ProcessID: processID,
		Status:    AsyncStatusAccepted,
		Message:   "Interview bot watch accepted for background processing",
		Timestamp: time.Now(),
	}
}

// CreateAsyncScoringResponse creates a successful async scoring response
func CreateAsyncScoringResponse(processID string) *AsyncWatchResponse {
	return &AsyncWatchResponse{
		ProcessID: processID,
		Status:    AsyncStatusAccepted,
		Message:   "Scoring run accepted for background processing",
		Timestamp: time.Now(),
	}
}

// IsCompleted checks if the async task has completed (success or failure)
func (r *AsyncTaskStatusResponse) IsCompleted() bool {
	return r.Status == AsyncStatusSuccess || r.Status == AsyncStatusFailure
}

package store

import (
	"context"

	"talentloop/pkg/models"
)

// Store is the persistence collaborator for candidate lifecycle records.
// Implementations must apply status updates atomically per candidate id:
// the read-validate-write of status plus timestamp is one logical unit and
// no partial write may be observed.
type Store interface {
	// CreateCandidate assigns a new identity and initial status "scored"
	CreateCandidate(ctx context.Context, candidate *models.Candidate) error

	// GetCandidate returns the record or a NotFound error
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)

	// UpdateCandidateStatus validates the edge against the transition table
	// and atomically sets status plus the matching timestamp. Fails with
	// ValidationError for an unknown status and InvalidTransition for a
	// denied edge, leaving the record unchanged.
	UpdateCandidateStatus(ctx context.Context, id string, newStatus models.CandidateStatus) (*models.Candidate, error)

	// ListCandidatesByJob returns all candidates for a job ordered by score
	// descending, ties broken by creation order
	ListCandidatesByJob(ctx context.Context, jobReference string) ([]*models.Candidate, error)

	CreateInterview(ctx context.Context, interview *models.Interview) error
	GetInterview(ctx context.Context, id string) (*models.Interview, error)
	GetInterviewByCandidate(ctx context.Context, candidateID string) (*models.Interview, error)
	UpdateInterview(ctx context.Context, interview *models.Interview) error

	CreateEvaluation(ctx context.Context, evaluation *models.Evaluation) error
	GetEvaluationByCandidate(ctx context.Context, candidateID string) (*models.Evaluation, error)

	CreateDecision(ctx context.Context, decision *models.Decision) error
	GetDecisionByCandidate(ctx context.Context, candidateID string) (*models.Decision, error)

	// Ping checks connectivity to the backing storage
	Ping(ctx context.Context) error

	// Close releases storage resources
	Close() error
}

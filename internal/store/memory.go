package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

// MemoryStore implements Store using in-memory maps. Suitable for demos and
// tests; records do not survive a restart.
type MemoryStore struct {
	mu          sync.RWMutex
	candidates  map[string]*models.Candidate
	seq         map[string]int64
	nextSeq     int64
	interviews  map[string]*models.Interview
	byCandidate map[string]string // candidate id -> interview id
	evaluations map[string]*models.Evaluation // keyed by candidate id
	decisions   map[string]*models.Decision   // keyed by candidate id
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		candidates:  make(map[string]*models.Candidate),
		seq:         make(map[string]int64),
		interviews:  make(map[string]*models.Interview),
		byCandidate: make(map[string]string),
		evaluations: make(map[string]*models.Evaluation),
		decisions:   make(map[string]*models.Decision),
	}
}

// CreateCandidate assigns a new identity and initial status "scored"
func (s *MemoryStore) CreateCandidate(ctx context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if candidate.ID == "" {
		candidate.ID = utils.GenerateRecordID()
	}
	candidate.Status = models.StatusScored
	candidate.CreatedAt = time.Now()

	s.nextSeq++
	s.seq[candidate.ID] = s.nextSeq
	s.candidates[candidate.ID] = cloneCandidate(candidate)
	return nil
}

// GetCandidate returns the record or a NotFound error
func (s *MemoryStore) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidate, exists := s.candidates[id]
	if !exists {
		return nil, utils.NewNotFoundError("candidate " + id)
	}
	return cloneCandidate(candidate), nil
}

// UpdateCandidateStatus atomically applies a validated status transition
func (s *MemoryStore) UpdateCandidateStatus(ctx context.Context, id string, newStatus models.CandidateStatus) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, exists := s.candidates[id]
	if !exists {
		return nil, utils.NewNotFoundError("candidate " + id)
	}

	if !newStatus.IsValid() {
		return nil, utils.NewValidationError("unknown status " + string(newStatus))
	}

	if !models.CanTransition(candidate.Status, newStatus) {
		return nil, utils.NewInvalidTransitionError(candidate.Status.String(), newStatus.String())
	}

	updated := cloneCandidate(candidate)
	updated.Status = newStatus
	stampStatus(updated, newStatus, time.Now())

	s.candidates[id] = updated
	return cloneCandidate(updated), nil
}

// ListCandidatesByJob returns candidates for a job, score descending, ties
// broken by creation order
func (s *MemoryStore) ListCandidatesByJob(ctx context.Context, jobReference string) ([]*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Candidate
	for _, candidate := range s.candidates {
		if candidate.JobReference == jobReference {
			result = append(result, cloneCandidate(candidate))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return s.seq[result[i].ID] < s.seq[result[j].ID]
	})

	return result, nil
}

// CreateInterview stores a new interview record
func (s *MemoryStore) CreateInterview(ctx context.Context, interview *models.Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if interview.ID == "" {
		interview.ID = utils.GenerateRecordID()
	}
	interview.CreatedAt = time.Now()

	s.interviews[interview.ID] = cloneInterview(interview)
	s.byCandidate[interview.CandidateID] = interview.ID
	return nil
}

// GetInterview returns the interview or a NotFound error
func (s *MemoryStore) GetInterview(ctx context.Context, id string) (*models.Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	interview, exists := s.interviews[id]
	if !exists {
		return nil, utils.NewNotFoundError("interview " + id)
	}
	return cloneInterview(interview), nil
}

// GetInterviewByCandidate returns the candidate's active interview
func (s *MemoryStore) GetInterviewByCandidate(ctx context.Context, candidateID string) (*models.Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byCandidate[candidateID]
	if !exists {
		return nil, utils.NewNotFoundError("interview for candidate " + candidateID)
	}
	return cloneInterview(s.interviews[id]), nil
}

// UpdateInterview replaces the stored interview record
func (s *MemoryStore) UpdateInterview(ctx context.Context, interview *models.Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.interviews[interview.ID]; !exists {
		return utils.NewNotFoundError("interview " + interview.ID)
	}
	s.interviews[interview.ID] = cloneInterview(interview)
	return nil
}

// CreateEvaluation stores the evaluation for a candidate
func (s *MemoryStore) CreateEvaluation(ctx context.Context, evaluation *models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if evaluation.ID == "" {
		evaluation.ID = utils.GenerateRecordID()
	}
	evaluation.CreatedAt = time.Now()

	copied := *evaluation
	s.evaluations[evaluation.CandidateID] = &copied
	return nil
}

// GetEvaluationByCandidate returns the candidate's evaluation
func (s *MemoryStore) GetEvaluationByCandidate(ctx context.Context, candidateID string) (*models.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evaluation, exists := s.evaluations[candidateID]
	if !exists {
		return nil, utils.NewNotFoundError("evaluation for candidate " + candidateID)
	}
	copied := *evaluation
	return &copied, nil
}

// CreateDecision stores the terminal decision for a candidate
func (s *MemoryStore) CreateDecision(ctx context.Context, decision *models.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if decision.ID == "" {
		decision.ID = utils.GenerateRecordID()
	}
	decision.CreatedAt = time.Now()

	copied := *decision
	s.decisions[decision.CandidateID] = &copied
	return nil
}

// GetDecisionByCandidate returns the candidate's decision
func (s *MemoryStore) GetDecisionByCandidate(ctx context.Context, candidateID string) (*models.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decision, exists := s.decisions[candidateID]
	if !exists {
		return nil, utils.NewNotFoundError("decision for candidate " + candidateID)
	}
	copied := *decision
	return &copied, nil
}

// Ping always succeeds for the in-memory store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}

// stampStatus sets the timestamp field matching the new status
func stampStatus(candidate *models.Candidate, status models.CandidateStatus, now time.Time) {
	switch status {
	case models.StatusInvited:
		candidate.InvitedAt = &now
	case models.StatusScheduled:
		candidate.ScheduledAt = &now
	case models.StatusInterviewDone:
		candidate.InterviewDoneAt = &now
	case models.StatusEvaluated:
		candidate.EvaluatedAt = &now
	case models.StatusDecided, models.StatusMarketplace:
		candidate.DecidedAt = &now
	}
}

func cloneCandidate(c *models.Candidate) *models.Candidate {
	copied := *c
	if c.WhyMatch != nil {
		copied.WhyMatch = append([]string(nil), c.WhyMatch...)
	}
	return &copied
}

func cloneInterview(i *models.Interview) *models.Interview {
	copied := *i
	return &copied
}

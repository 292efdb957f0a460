package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"talentloop/internal/config"
	"talentloop/internal/logging"
	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

// maxTxRetries bounds optimistic retry on contended status updates
const maxTxRetries = 5

// RedisStore implements Store on top of Redis. Records are stored as JSON
// values; per-job candidate ordering is kept in a list so insertion order
// survives restarts.
type RedisStore struct {
	client *redis.Client
	logger logging.Logger
}

// NewRedisStore creates a new Redis-backed store
func NewRedisStore(cfg *config.Config) *RedisStore {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		// Fallback to default configuration
		opts = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	opts.DB = cfg.Redis.DB

	opts.DialTimeout = cfg.Redis.Timeout
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	return &RedisStore{
		client: redis.NewClient(opts),
		logger: logging.GetGlobalLogger(),
	}
}

func candidateKey(id string) string         { return "candidate:" + id }
func jobIndexKey(jobReference string) string { return "candidates:job:" + jobReference }
func interviewKey(id string) string         { return "interview:" + id }
func interviewIndexKey(candidateID string) string {
	return "interview:candidate:" + candidateID
}
func evaluationKey(candidateID string) string { return "evaluation:candidate:" + candidateID }
func decisionKey(candidateID string) string   { return "decision:candidate:" + candidateID }

// CreateCandidate assigns a new identity and initial status "scored"
func (s *RedisStore) CreateCandidate(ctx context.Context, candidate *models.Candidate) error {
	if candidate.ID == "" {
		candidate.ID = utils.GenerateRecordID()
	}
	candidate.Status = models.StatusScored
	candidate.CreatedAt = time.Now()

	data, err := json.Marshal(candidate)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, candidateKey(candidate.ID), data, 0)
	pipe.RPush(ctx, jobIndexKey(candidate.JobReference), candidate.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// GetCandidate returns the record or a NotFound error
func (s *RedisStore) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	data, err := s.client.Get(ctx, candidateKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, utils.NewNotFoundError("candidate " + id)
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	var candidate models.Candidate
	if err := json.Unmarshal([]byte(data), &candidate); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidate: %w", err)
	}
	return &candidate, nil
}

// UpdateCandidateStatus applies a validated transition with an optimistic
// WATCH transaction so concurrent updates to the same id never interleave
func (s *RedisStore) UpdateCandidateStatus(ctx context.Context, id string, newStatus models.CandidateStatus) (*models.Candidate, error) {
	if !newStatus.IsValid() {
		return nil, utils.NewValidationError("unknown status " + string(newStatus))
	}

	key := candidateKey(id)
	var updated *models.Candidate

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				return utils.NewNotFoundError("candidate " + id)
			}
			return fmt.Errorf("failed to get candidate: %w", err)
		}

		var candidate models.Candidate
		if err := json.Unmarshal([]byte(data), &candidate); err != nil {
			return fmt.Errorf("failed to unmarshal candidate: %w", err)
		}

		if !models.CanTransition(candidate.Status, newStatus) {
			return utils.NewInvalidTransitionError(candidate.Status.String(), newStatus.String())
		}

		candidate.Status = newStatus
		stampStatus(&candidate, newStatus, time.Now())

		payload, err := json.Marshal(&candidate)
		if err != nil {
			return fmt.Errorf("failed to marshal candidate: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = &candidate
		return nil
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return updated, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("status update for candidate %s aborted after %d contended attempts", id, maxTxRetries)
}

// ListCandidatesByJob returns candidates for a job, score descending, ties
// broken by insertion order of the job index list
func (s *RedisStore) ListCandidatesByJob(ctx context.Context, jobReference string) ([]*models.Candidate, error) {
	ids, err := s.client.LRange(ctx, jobIndexKey(jobReference), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list job candidates: %w", err)
	}

	result := make([]*models.Candidate, 0, len(ids))
	for _, id := range ids {
		candidate, err := s.GetCandidate(ctx, id)
		if err != nil {
			if utils.IsKind(err, utils.KindNotFound) {
				continue
			}
			return nil, err
		}
		result = append(result, candidate)
	}

	// Index order is insertion order; a stable sort on score preserves it
	// as the tie break
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	return result, nil
}

// CreateInterview stores a new interview record
func (s *RedisStore) CreateInterview(ctx context.Context, interview *models.Interview) error {
	if interview.ID == "" {
		interview.ID = utils.GenerateRecordID()
	}
	interview.CreatedAt = time.Now()

	data, err := json.Marshal(interview)
	if err != nil {
		return fmt.Errorf("failed to marshal interview: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, interviewKey(interview.ID), data, 0)
	pipe.Set(ctx, interviewIndexKey(interview.CandidateID), interview.ID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

// GetInterview returns the interview or a NotFound error
func (s *RedisStore) GetInterview(ctx context.Context, id string) (*models.Interview, error) {
	data, err := s.client.Get(ctx, interviewKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, utils.NewNotFoundError("interview " + id)
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	var interview models.Interview
	if err := json.Unmarshal([]byte(data), &interview); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interview: %w", err)
	}
	return &interview, nil
}

// GetInterviewByCandidate returns the candidate's active interview
func (s *RedisStore) GetInterviewByCandidate(ctx context.Context, candidateID string) (*models.Interview, error) {
	id, err := s.client.Get(ctx, interviewIndexKey(candidateID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, utils.NewNotFoundError("interview for candidate " + candidateID)
		}
		return nil, fmt.Errorf("failed to resolve interview index: %w", err)
	}
	return s.GetInterview(ctx, id)
}

// UpdateInterview replaces the stored interview record
func (s *RedisStore) UpdateInterview(ctx context.Context, interview *models.Interview) error {
	exists, err := s.client.Exists(ctx, interviewKey(interview.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check interview: %w", err)
	}
	if exists == 0 {
		return utils.NewNotFoundError("interview " + interview.ID)
	}

	data, err := json.Marshal(interview)
	if err != nil {
		return fmt.Errorf("failed to marshal interview: %w", err)
	}
	return s.client.Set(ctx, interviewKey(interview.ID), data, 0).Err()
}

// CreateEvaluation stores the evaluation for a candidate
func (s *RedisStore) CreateEvaluation(ctx context.Context, evaluation *models.Evaluation) error {
	if evaluation.ID == "" {
		evaluation.ID = utils.GenerateRecordID()
	}
	evaluation.CreatedAt = time.Now()

	data, err := json.Marshal(evaluation)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}
	return s.client.Set(ctx, evaluationKey(evaluation.CandidateID), data, 0).Err()
}

// GetEvaluationByCandidate returns the candidate's evaluation
func (s *RedisStore) GetEvaluationByCandidate(ctx context.Context, candidateID string) (*models.Evaluation, error) {
	data, err := s.client.Get(ctx, evaluationKey(candidateID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, utils.NewNotFoundError("evaluation for candidate " + candidateID)
		}
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}

	var evaluation models.Evaluation
	if err := json.Unmarshal([]byte(data), &evaluation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
	}
	return &evaluation, nil
}

// CreateDecision stores the terminal decision for a candidate
func (s *RedisStore) CreateDecision(ctx context.Context, decision *models.Decision) error {
	if decision.ID == "" {
		decision.ID = utils.GenerateRecordID()
	}
	decision.CreatedAt = time.Now()

	data, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}
	return s.client.Set(ctx, decisionKey(decision.CandidateID), data, 0).Err()
}

// GetDecisionByCandidate returns the candidate's decision
func (s *RedisStore) GetDecisionByCandidate(ctx context.Context, candidateID string) (*models.Decision, error) {
	data, err := s.client.Get(ctx, decisionKey(candidateID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, utils.NewNotFoundError("decision for candidate " + candidateID)
		}
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}

	var decision models.Decision
	if err := json.Unmarshal([]byte(data), &decision); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decision: %w", err)
	}
	return &decision, nil
}

// Ping tests the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

package rematch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentloop/internal/config"
	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

// fakeScoringClient serves canned jobs and per-pair scores
type fakeScoringClient struct {
	jobs     []*models.JobOpening
	scores   map[string]float64 // job reference -> score for the profile
	jobsErr  error
	scoreErr error
}

func (f *fakeScoringClient) GetJob(ctx context.Context, jobReference string) (*models.JobOpening, error) {
	for _, job := range f.jobs {
		if job.Reference == jobReference {
			return job, nil
		}
	}
	return nil, utils.NewNotFoundError("job " + jobReference)
}

func (f *fakeScoringClient) ListJobs(ctx context.Context) ([]*models.JobOpening, error) {
	if f.jobsErr != nil {
		return nil, f.jobsErr
	}
	return f.jobs, nil
}

func (f *fakeScoringClient) ScoreProfiles(ctx context.Context, jobReference string, topK int, threshold float64) ([]*models.ScoredProfile, error) {
	return nil, errors.New("not used")
}

func (f *fakeScoringClient) ScoreProfileForJob(ctx context.Context, profileReference, jobReference string) (*models.ScoredProfile, error) {
	if f.scoreErr != nil {
		return nil, f.scoreErr
	}
	score, ok := f.scores[jobReference]
	if !ok {
		return nil, utils.NewNotFoundError(fmt.Sprintf("score for profile %s against job %s", profileReference, jobReference))
	}
	return &models.ScoredProfile{Reference: profileReference, Score: score}, nil
}

func testConfig(maxSuggestions int) *config.Config {
	cfg := &config.Config{}
	cfg.Rematch.MaxSuggestions = maxSuggestions
	return cfg
}

func job(reference, name string) *models.JobOpening {
	return &models.JobOpening{Reference: reference, Name: name}
}

func TestSuggest_OrdersByMatchDescending(t *testing.T) {
	client := &fakeScoringClient{
		jobs: []*models.JobOpening{
			job("job-a", "Backend Engineer"),
			job("job-b", "Platform Engineer"),
			job("job-c", "SRE"),
		},
		scores: map[string]float64{
			"job-a": 0.61,
			"job-b": 0.72,
			"job-c": 0.68,
		},
	}
	resolver := NewResolver(testConfig(3), client)

	candidate := &models.Candidate{ID: "c1", JobReference: "job-x", ProfileReference: "p1"}
	suggestions, err := resolver.Suggest(context.Background(), candidate)
	require.NoError(t, err)
	require.Len(t, suggestions, 3)

	assert.Equal(t, 72, suggestions[0].MatchPercentage)
	assert.Equal(t, 68, suggestions[1].MatchPercentage)
	assert.Equal(t, 61, suggestions[2].MatchPercentage)
	assert.Equal(t, "job-b", suggestions[0].JobReference)
	assert.Equal(t, "Platform Engineer", suggestions[0].JobTitle)
}

func TestSuggest_ExcludesCurrentJob(t *testing.T) {
	client := &fakeScoringClient{
		jobs: []*models.JobOpening{
			job("job-a", "Backend Engineer"),
			job("job-b", "Platform Engineer"),
		},
		scores: map[string]float64{
			"job-a": 0.9,
			"job-b": 0.8,
		},
	}
	resolver := NewResolver(testConfig(3), client)

	candidate := &models.Candidate{ID: "c1", JobReference: "job-a", ProfileReference: "p1"}
	suggestions, err := resolver.Suggest(context.Background(), candidate)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "job-b", suggestions[0].JobReference)
}

func TestSuggest_CapsAtMaxSuggestions(t *testing.T) {
	client := &fakeScoringClient{
		jobs: []*models.JobOpening{
			job("job-a", "A"), job("job-b", "B"), job("job-c", "C"),
			job("job-d", "D"), job("job-e", "E"),
		},
		scores: map[string]float64{
			"job-a": 0.5, "job-b": 0.6, "job-c": 0.7, "job-d": 0.8, "job-e": 0.9,
		},
	}
	resolver := NewResolver(testConfig(3), client)

	suggestions, err := resolver.Suggest(context.Background(), &models.Candidate{JobReference: "job-x", ProfileReference: "p1"})
	require.NoError(t, err)
	require.Len(t, suggestions, 3)
	assert.Equal(t, 90, suggestions[0].MatchPercentage)
	assert.Equal(t, 70, suggestions[2].MatchPercentage)
}

func TestSuggest_SkipsUnscoredPairs(t *testing.T) {
	client := &fakeScoringClient{
		jobs: []*models.JobOpening{
			job("job-a", "A"),
			job("job-b", "B"),
		},
		scores: map[string]float64{
			"job-b": 0.8,
		},
	}
	resolver := NewResolver(testConfig(3), client)

	suggestions, err := resolver.Suggest(context.Background(), &models.Candidate{JobReference: "job-x", ProfileReference: "p1"})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "job-b", suggestions[0].JobReference)
}

func TestSuggest_EmptyResultIsValid(t *testing.T) {
	client := &fakeScoringClient{
		jobs:   []*models.JobOpening{job("job-a", "A")},
		scores: map[string]float64{"job-a": 0.9},
	}
	resolver := NewResolver(testConfig(3), client)

	// The only open job is the one the candidate was rejected from
	suggestions, err := resolver.Suggest(context.Background(), &models.Candidate{JobReference: "job-a", ProfileReference: "p1"})
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggest_ListJobsFailurePropagates(t *testing.T) {
	client := &fakeScoringClient{jobsErr: errors.New("board unavailable")}
	resolver := NewResolver(testConfig(3), client)

	_, err := resolver.Suggest(context.Background(), &models.Candidate{JobReference: "job-x", ProfileReference: "p1"})
	require.Error(t, err)
}

func TestScoreToPercentage(t *testing.T) {
	assert.Equal(t, 72, scoreToPercentage(0.72))
	assert.Equal(t, 100, scoreToPercentage(1.0))
	assert.Equal(t, 0, scoreToPercentage(0))
	assert.Equal(t, 73, scoreToPercentage(73))
	assert.Equal(t, 100, scoreToPercentage(150))
}

func TestExplain_PrefersSkillOverlap(t *testing.T) {
	opening := &models.JobOpening{
		Name:   "Backend Engineer",
		Skills: []models.JobSkill{{Name: "Go"}, {Name: "PostgreSQL"}},
	}
	profile := &models.ScoredProfile{
		Skills: []models.JobSkill{{Name: "Python"}, {Name: "Go"}},
	}

	assert.Contains(t, explain(opening, profile), `"Go"`)
	assert.Contains(t, explain(opening, &models.ScoredProfile{}), "ranked this profile highly")
}

package rematch

import (
	"context"
	"fmt"
	"math"
	"sort"

	"talentloop/internal/config"
	"talentloop/internal/logging"
	"talentloop/internal/scoring"
	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

// Resolver finds alternative openings for a rejected candidate by scoring the
// candidate's profile against every other open job. Suggestions come entirely
// from the scoring collaborator; no score is ever invented here.
type Resolver struct {
	cfg     *config.Config
	scoring scoring.Client
	logger  logging.Logger
}

// NewResolver creates a new rematch resolver
func NewResolver(cfg *config.Config, scoringClient scoring.Client) *Resolver {
	return &Resolver{
		cfg:     cfg,
		scoring: scoringClient,
		logger:  logging.GetGlobalLogger().WithField("component", "rematch_resolver"),
	}
}

// Suggest returns up to the configured number of alternative openings, best
// match first, excluding the job the candidate was rejected from. An empty
// result is a valid outcome, not an error. A job the collaborator cannot
// score for this profile is skipped rather than failing the whole resolve.
func (r *Resolver) Suggest(ctx context.Context, candidate *models.Candidate) ([]models.RematchSuggestion, error) {
	jobs, err := r.scoring.ListJobs(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := make([]models.RematchSuggestion, 0, len(jobs))
	for _, job := range jobs {
		if job.Reference == "" || job.Reference == candidate.JobReference {
			continue
		}

		profile, err := r.scoring.ScoreProfileForJob(ctx, candidate.ProfileReference, job.Reference)
		if err != nil {
			if utils.IsKind(err, utils.KindNotFound) {
				continue
			}
			return nil, err
		}

		suggestions = append(suggestions, models.RematchSuggestion{
			JobReference:    job.Reference,
			JobTitle:        job.Name,
			MatchPercentage: scoreToPercentage(profile.Score),
			Explanation:     explain(job, profile),
		})
	}

	// Best match first; the collaborator's job order breaks ties
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].MatchPercentage > suggestions[j].MatchPercentage
	})

	max := r.cfg.Rematch.MaxSuggestions
	if max > 0 && len(suggestions) > max {
		suggestions = suggestions[:max]
	}

	r.logger.Info("Rematch resolved", map[string]interface{}{
		"candidate_id": candidate.ID,
		"jobs_checked": len(jobs),
		"suggestions":  len(suggestions),
	})
	return suggestions, nil
}

// scoreToPercentage converts a collaborator score in [0,1] to a clamped
// integer percentage. Scores already on a 0-100 scale pass through unchanged.
func scoreToPercentage(score float64) int {
	if score <= 1.0 {
		score = score * 100
	}
	return utils.ClampPercentage(int(math.Round(score)))
}

// explain builds a short explanation from the facts the collaborator returned
func explain(job *models.JobOpening, profile *models.ScoredProfile) string {
	for _, jobSkill := range job.Skills {
		for _, profileSkill := range profile.Skills {
			if jobSkill.Name != "" && jobSkill.Name == profileSkill.Name {
				return fmt.Sprintf("Profile skill %q matches a required skill for %s", jobSkill.Name, job.Name)
			}
		}
	}
	return fmt.Sprintf("Scoring ranked this profile highly for %s", job.Name)
}

package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"talentloop/internal/collab"
	"talentloop/internal/config"
	"talentloop/internal/logging"
	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

// Client scores candidate profiles against job openings. Scores are produced
// entirely by the collaborator; this service treats them as opaque inputs.
type Client interface {
	// GetJob fetches a job opening by its board reference
	GetJob(ctx context.Context, jobReference string) (*models.JobOpening, error)

	// ListJobs returns all job openings on the configured board
	ListJobs(ctx context.Context) ([]*models.JobOpening, error)

	// ScoreProfiles returns the top profiles for a job, best first, already
	// filtered by the score threshold
	ScoreProfiles(ctx context.Context, jobReference string, topK int, threshold float64) ([]*models.ScoredProfile, error)

	// ScoreProfileForJob scores a single known profile against a job. Returns
	// a NotFound error when the collaborator has no score for the pair.
	ScoreProfileForJob(ctx context.Context, profileReference, jobReference string) (*models.ScoredProfile, error)
}

// HRFlowClient implements Client against the HRFlow scoring API
type HRFlowClient struct {
	cfg    *config.Config
	client *http.Client
	guard  *collab.Guard
	host   string
	logger logging.Logger
}

// NewHRFlowClient creates a new HRFlow scoring client
func NewHRFlowClient(cfg *config.Config, guard *collab.Guard) *HRFlowClient {
	host := "api.hrflow.ai"
	if parsed, err := url.Parse(cfg.HRFlow.APIURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}

	return &HRFlowClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.HRFlow.Timeout,
		},
		guard:  guard,
		host:   host,
		logger: logging.GetGlobalLogger().WithField("component", "hrflow_client"),
	}
}

// envelope is the wrapper HRFlow puts around every response payload
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// GetJob fetches a job opening by its board reference
func (c *HRFlowClient) GetJob(ctx context.Context, jobReference string) (*models.JobOpening, error) {
	params := url.Values{}
	params.Set("board_key", c.cfg.HRFlow.BoardKey)
	params.Set("reference", jobReference)

	var job models.JobOpening
	if err := c.get(ctx, "/job/indexing", params, &job); err != nil {
		return nil, err
	}
	if job.Reference == "" {
		return nil, utils.NewNotFoundError("job " + jobReference)
	}
	return &job, nil
}

// ListJobs returns all job openings on the configured board
func (c *HRFlowClient) ListJobs(ctx context.Context) ([]*models.JobOpening, error) {
	params := url.Values{}
	params.Set("board_keys", fmt.Sprintf("[%q]", c.cfg.HRFlow.BoardKey))
	params.Set("sort_by", "created_at")
	params.Set("order_by", "desc")

	var payload struct {
		Jobs []*models.JobOpening `json:"jobs"`
	}
	if err := c.get(ctx, "/jobs/searching", params, &payload); err != nil {
		return nil, err
	}
	return payload.Jobs, nil
}

// ScoreProfiles returns the top profiles for a job, best first
func (c *HRFlowClient) ScoreProfiles(ctx context.Context, jobReference string, topK int, threshold float64) ([]*models.ScoredProfile, error) {
	if topK <= 0 {
		topK = c.cfg.HRFlow.TopK
	}

	params := c.scoringParams(jobReference)
	params.Set("limit", strconv.Itoa(topK))

	profiles, err := c.scoring(ctx, params)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.ScoredProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.Score >= threshold {
			filtered = append(filtered, p)
		}
	}

	c.logger.Info("Scored profiles for job", map[string]interface{}{
		"job_reference": jobReference,
		"returned":      len(profiles),
		"kept":          len(filtered),
		"threshold":     threshold,
	})
	return filtered, nil
}

// ScoreProfileForJob scores a single known profile against a job
func (c *HRFlowClient) ScoreProfileForJob(ctx context.Context, profileReference, jobReference string) (*models.ScoredProfile, error) {
	params := c.scoringParams(jobReference)
	params.Set("profile_reference", profileReference)
	params.Set("limit", "1")

	profiles, err := c.scoring(ctx, params)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if p.Reference == profileReference {
			return p, nil
		}
	}
	return nil, utils.NewNotFoundError(fmt.Sprintf("score for profile %s against job %s", profileReference, jobReference))
}

// scoringParams builds the common query for the profiles/scoring endpoint
func (c *HRFlowClient) scoringParams(jobReference string) url.Values {
	params := url.Values{}
	params.Set("board_key", c.cfg.HRFlow.BoardKey)
	params.Set("source_keys", fmt.Sprintf("[%q]", c.cfg.HRFlow.SourceKey))
	params.Set("job_reference", jobReference)
	params.Set("use_algorithm_key", c.cfg.HRFlow.AlgorithmKey)
	params.Set("sort_by", "scoring")
	params.Set("order_by", "desc")
	return params
}

// scoring calls the profiles/scoring endpoint and decodes the profile list
func (c *HRFlowClient) scoring(ctx context.Context, params url.Values) ([]*models.ScoredProfile, error) {
	var payload struct {
		Profiles    []*models.ScoredProfile `json:"profiles"`
		Predictions [][]float64             `json:"predictions"`
	}
	if err := c.get(ctx, "/profiles/scoring", params, &payload); err != nil {
		return nil, err
	}

	// Some deployments return scores in a parallel predictions array rather
	// than inline on each profile
	for i, p := range payload.Profiles {
		if p.Score == 0 && i < len(payload.Predictions) && len(payload.Predictions[i]) > 0 {
			p.Score = payload.Predictions[i][len(payload.Predictions[i])-1]
		}
	}
	return payload.Profiles, nil
}

// get performs an authenticated GET and decodes the envelope data into out
func (c *HRFlowClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.guard.Allow(c.host); err != nil {
		return utils.NewCollaboratorError("scoring", err)
	}

	endpoint := c.cfg.HRFlow.APIURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build scoring request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.cfg.HRFlow.APIKey)
	req.Header.Set("X-USER-EMAIL", c.cfg.HRFlow.UserEmail)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.guard.RecordFailure(c.host, err)
		return utils.NewCollaboratorError("scoring", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.guard.RecordFailure(c.host, err)
		return utils.NewCollaboratorError("scoring", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("scoring API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
		c.guard.RecordFailure(c.host, err)
		return utils.NewCollaboratorError("scoring", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.guard.RecordFailure(c.host, err)
		return utils.NewCollaboratorError("scoring", fmt.Errorf("malformed scoring response: %w", err))
	}

	if len(env.Data) > 0 && out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			c.guard.RecordFailure(c.host, err)
			return utils.NewCollaboratorError("scoring", fmt.Errorf("malformed scoring payload: %w", err))
		}
	}

	c.guard.RecordSuccess(c.host)
	c.logger.Debug("Scoring API call completed", map[string]interface{}{
		"path":     path,
		"duration": time.Since(start).String(),
	})
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ProfileToCandidate converts a scored profile into a new candidate record.
// The why_match lines are assembled from the profile facts the collaborator
// returned, never invented.
func ProfileToCandidate(profile *models.ScoredProfile, jobReference string) *models.Candidate {
	name := profile.Info.FullName
	if name == "" {
		name = utils.GetStringOrDefault(strings.TrimSpace(profile.Info.FirstName+" "+profile.Info.LastName), "Unknown")
	}

	var whyMatch []string
	if len(profile.Skills) > 0 {
		skills := make([]string, 0, 3)
		for _, s := range profile.Skills {
			skills = append(skills, s.Name)
			if len(skills) == 3 {
				break
			}
		}
		whyMatch = append(whyMatch, "Relevant skills: "+strings.Join(skills, ", "))
	}
	for i, exp := range profile.Experiences {
		if i == 2 {
			break
		}
		if exp.Title != "" && exp.Company != "" {
			whyMatch = append(whyMatch, fmt.Sprintf("Experience as %s at %s", exp.Title, exp.Company))
		}
	}
	if len(profile.Educations) > 0 {
		edu := profile.Educations[0]
		if edu.Title != "" {
			whyMatch = append(whyMatch, "Education: "+edu.Title)
		}
	}

	return &models.Candidate{
		JobReference:     jobReference,
		ProfileReference: profile.Reference,
		Name:             name,
		Email:            profile.Info.Email,
		Phone:            profile.Info.Phone,
		Score:            profile.Score,
		WhyMatch:         whyMatch,
	}
}

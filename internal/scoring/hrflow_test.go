package scoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentloop/internal/collab"
	"talentloop/internal/config"
	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

func hrflowTestClient(t *testing.T, handler http.HandlerFunc) *HRFlowClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.HRFlow.APIURL = server.URL
	cfg.HRFlow.APIKey = "test-api-key"
	cfg.HRFlow.UserEmail = "recruiter@example.com"
	cfg.HRFlow.BoardKey = "board-1"
	cfg.HRFlow.SourceKey = "source-1"
	cfg.HRFlow.AlgorithmKey = "algo-1"
	cfg.HRFlow.Timeout = 5 * time.Second
	cfg.HRFlow.TopK = 10

	return NewHRFlowClient(cfg, collab.NewGuard(6000))
}

func TestGetJob_SendsAuthHeadersAndDecodesEnvelope(t *testing.T) {
	client := hrflowTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/job/indexing", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "recruiter@example.com", r.Header.Get("X-USER-EMAIL"))
		assert.Equal(t, "board-1", r.URL.Query().Get("board_key"))
		assert.Equal(t, "job-1", r.URL.Query().Get("reference"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": 200, "message": "ok", "data": {"reference": "job-1", "name": "Backend Engineer", "summary": "Build Go services"}}`))
	})

	job, err := client.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.Reference)
	assert.Equal(t, "Backend Engineer", job.Name)
}

func TestGetJob_EmptyReferenceIsNotFound(t *testing.T) {
	client := hrflowTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 200, "message": "ok", "data": {}}`))
	})

	_, err := client.GetJob(context.Background(), "job-missing")
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestGetJob_ServerErrorIsCollaboratorError(t *testing.T) {
	client := hrflowTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code": 500, "message": "boom"}`))
	})

	_, err := client.GetJob(context.Background(), "job-1")
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindCollaborator))
}

func TestScoreProfiles_FiltersByThreshold(t *testing.T) {
	client := hrflowTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/profiles/scoring", r.URL.Path)
		assert.Equal(t, "job-1", r.URL.Query().Get("job_reference"))
		assert.Equal(t, "scoring", r.URL.Query().Get("sort_by"))
		assert.Equal(t, "algo-1", r.URL.Query().Get("use_algorithm_key"))

		w.Write([]byte(`{"code": 200, "message": "ok", "data": {"profiles": [
			{"reference": "p1", "score": 0.82, "info": {"full_name": "Ada Lovelace"}},
			{"reference": "p2", "score": 0.41, "info": {"full_name": "Bob"}}
		]}}`))
	})

	profiles, err := client.ScoreProfiles(context.Background(), "job-1", 10, 0.5)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "p1", profiles[0].Reference)
}

func TestScoreProfiles_PredictionsArrayFallback(t *testing.T) {
	client := hrflowTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 200, "message": "ok", "data": {
			"profiles": [{"reference": "p1", "info": {"full_name": "Ada"}}],
			"predictions": [[0.12, 0.77]]
		}}`))
	})

	profiles, err := client.ScoreProfiles(context.Background(), "job-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.InDelta(t, 0.77, profiles[0].Score, 0.0001)
}

func TestScoreProfileForJob_NotFoundWhenPairUnscored(t *testing.T) {
	client := hrflowTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 200, "message": "ok", "data": {"profiles": []}}`))
	})

	_, err := client.ScoreProfileForJob(context.Background(), "p1", "job-1")
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestProfileToCandidate_AssemblesWhyMatch(t *testing.T) {
	profile := &models.ScoredProfile{
		Reference: "p1",
		Info: models.ProfileInfo{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Phone:    "+44123",
		},
		Score: 0.82,
		Skills: []models.JobSkill{
			{Name: "Go"}, {Name: "PostgreSQL"}, {Name: "Kubernetes"}, {Name: "Redis"},
		},
		Experiences: []models.ProfileExperience{
			{Title: "Senior Engineer", Company: "Acme"},
			{Title: "Engineer", Company: "Initech"},
			{Title: "Junior Engineer", Company: "Globex"},
		},
		Educations: []models.ProfileEducation{
			{Title: "BSc Mathematics", School: "Cambridge"},
		},
	}

	candidate := ProfileToCandidate(profile, "job-1")

	assert.Equal(t, "job-1", candidate.JobReference)
	assert.Equal(t, "p1", candidate.ProfileReference)
	assert.Equal(t, "Ada Lovelace", candidate.Name)
	assert.Equal(t, "ada@example.com", candidate.Email)
	assert.InDelta(t, 0.82, candidate.Score, 0.0001)

	// Skills capped at three, experiences at two, first education only
	require.Len(t, candidate.WhyMatch, 4)
	assert.Equal(t, "Relevant skills: Go, PostgreSQL, Kubernetes", candidate.WhyMatch[0])
	assert.Equal(t, "Experience as Senior Engineer at Acme", candidate.WhyMatch[1])
	assert.Equal(t, "Experience as Engineer at Initech", candidate.WhyMatch[2])
	assert.Equal(t, "Education: BSc Mathematics", candidate.WhyMatch[3])
}

func TestProfileToCandidate_FallbackName(t *testing.T) {
	candidate := ProfileToCandidate(&models.ScoredProfile{
		Reference: "p1",
		Info:      models.ProfileInfo{FirstName: "Ada", LastName: "Lovelace"},
	}, "job-1")
	assert.Equal(t, "Ada Lovelace", candidate.Name)
}

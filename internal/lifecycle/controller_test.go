package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentloop/internal/config"
	"talentloop/internal/llm"
	"talentloop/internal/rematch"
	"talentloop/internal/store"
	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

// fakeScoring serves canned jobs and scored profiles
type fakeScoring struct {
	jobs       map[string]*models.JobOpening
	profiles   []*models.ScoredProfile
	pairScores map[string]float64 // job reference -> score for rematch
	listErr    error
}

func (f *fakeScoring) GetJob(ctx context.Context, jobReference string) (*models.JobOpening, error) {
	job, ok := f.jobs[jobReference]
	if !ok {
		return nil, utils.NewNotFoundError("job " + jobReference)
	}
	return job, nil
}

func (f *fakeScoring) ListJobs(ctx context.Context) ([]*models.JobOpening, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.JobOpening
	for _, job := range f.jobs {
		out = append(out, job)
	}
	return out, nil
}

func (f *fakeScoring) ScoreProfiles(ctx context.Context, jobReference string, topK int, threshold float64) ([]*models.ScoredProfile, error) {
	kept := make([]*models.ScoredProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		if p.Score >= threshold {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

func (f *fakeScoring) ScoreProfileForJob(ctx context.Context, profileReference, jobReference string) (*models.ScoredProfile, error) {
	score, ok := f.pairScores[jobReference]
	if !ok {
		return nil, utils.NewNotFoundError("score for " + profileReference)
	}
	return &models.ScoredProfile{Reference: profileReference, Score: score}, nil
}

// fakeBots fabricates bot ids and replays a fixed status and transcript
type fakeBots struct {
	nextBotID  string
	status     models.InterviewStatus
	rawCode    string
	transcript []models.TranscriptSegment
	createErr  error
}

func (f *fakeBots) CreateBot(ctx context.Context, meetingURL string, joinAt *time.Time) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	if f.nextBotID == "" {
		return "bot-1", nil
	}
	return f.nextBotID, nil
}

func (f *fakeBots) BotStatus(ctx context.Context, botID string) (models.InterviewStatus, string, error) {
	return f.status, f.rawCode, nil
}

func (f *fakeBots) Transcript(ctx context.Context, botID string) ([]models.TranscriptSegment, error) {
	return f.transcript, nil
}

// fakeMailer records sends and can fail any of them
type fakeMailer struct {
	invites       int
	confirmations int
	acceptances   int
	rejections    int
	lastReason    string
	failInvite    error
	failAccept    error
}

func (f *fakeMailer) SendInvite(ctx context.Context, candidate *models.Candidate, jobTitle string) error {
	if f.failInvite != nil {
		return f.failInvite
	}
	f.invites++
	return nil
}

func (f *fakeMailer) SendConfirmation(ctx context.Context, candidate *models.Candidate, interview *models.Interview, jobTitle string) error {
	f.confirmations++
	return nil
}

func (f *fakeMailer) SendAcceptance(ctx context.Context, candidate *models.Candidate, jobTitle string) error {
	if f.failAccept != nil {
		return f.failAccept
	}
	f.acceptances++
	return nil
}

func (f *fakeMailer) SendRejection(ctx context.Context, candidate *models.Candidate, jobTitle, reason string) error {
	f.rejections++
	f.lastReason = reason
	return nil
}

// fakeCompleter replays a canned provider response
type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

type fixture struct {
	controller *Controller
	store      *store.MemoryStore
	scoring    *fakeScoring
	bots       *fakeBots
	mailer     *fakeMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.HRFlow.TopK = 10
	cfg.Rematch.MaxSuggestions = 3

	scoringClient := &fakeScoring{
		jobs: map[string]*models.JobOpening{
			"job-1": {Reference: "job-1", Name: "Backend Engineer", Summary: "Build Go services"},
			"job-2": {Reference: "job-2", Name: "Platform Engineer"},
			"job-3": {Reference: "job-3", Name: "SRE"},
		},
		profiles: []*models.ScoredProfile{
			{
				Reference: "p1",
				Info:      models.ProfileInfo{FullName: "Ada Lovelace", Email: "ada@example.com"},
				Score:     0.82,
				Skills:    []models.JobSkill{{Name: "Go"}},
			},
		},
		pairScores: map[string]float64{"job-2": 0.72, "job-3": 0.61},
	}
	bots := &fakeBots{
		status:  models.InterviewScheduled,
		rawCode: "ready",
		transcript: []models.TranscriptSegment{
			{Speaker: "Interviewer", Text: "Walk me through your background."},
			{Speaker: "Ada Lovelace", Text: "I have built Go services for six years."},
		},
	}
	mailer := &fakeMailer{}
	completer := &fakeCompleter{response: `{
		"summary": "Strong interview with detailed technical answers.",
		"green_flags": ["Deep Go experience"],
		"yellow_flags": [],
		"red_flags": [],
		"match_percentage": 84,
		"match_explanation": "Profile covers the core requirements."
	}`}

	st := store.NewMemoryStore()
	controller := NewController(
		cfg,
		st,
		scoringClient,
		bots,
		llm.NewEvaluator(completer),
		mailer,
		rematch.NewResolver(cfg, scoringClient),
	)
	return &fixture{controller: controller, store: st, scoring: scoringClient, bots: bots, mailer: mailer}
}

func (f *fixture) scoredCandidate(t *testing.T) *models.Candidate {
	t.Helper()
	created, err := f.controller.RunScoring(context.Background(), &models.ScoringRunRequest{JobReference: "job-1"})
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func TestFullLifecycle_ScoreToAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	candidate := f.scoredCandidate(t)
	assert.Equal(t, models.StatusScored, candidate.Status)
	assert.Equal(t, "Ada Lovelace", candidate.Name)

	// Invite
	candidate, err := f.controller.Invite(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvited, candidate.Status)
	assert.NotNil(t, candidate.InvitedAt)
	assert.Equal(t, 1, f.mailer.invites)

	// Schedule
	when := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	candidate, interview, err := f.controller.Schedule(ctx, candidate.ID, &models.ScheduleRequest{
		MeetingURL:  "https://meet.example.com/abc",
		ScheduledAt: when,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, candidate.Status)
	assert.Equal(t, models.InterviewScheduled, interview.Status)
	assert.Equal(t, "bot-1", interview.BotID)
	assert.Equal(t, 1, f.mailer.confirmations)

	// Bot finishes the call
	interview, err = f.controller.CompleteInterview(ctx, interview.ID, models.InterviewCompleted, "done")
	require.NoError(t, err)
	assert.Equal(t, models.InterviewCompleted, interview.Status)
	assert.NotNil(t, interview.EndedAt)

	candidate, err = f.store.GetCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterviewDone, candidate.Status)

	// Evaluate
	evaluation, err := f.controller.RecordEvaluation(ctx, candidate.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 84, evaluation.MatchPercentage)
	assert.Equal(t, candidate.ID, evaluation.CandidateID)

	candidate, err = f.store.GetCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEvaluated, candidate.Status)

	// Accept
	decision, candidate, err := f.controller.Decide(ctx, candidate.ID, &models.DecideRequest{Choice: models.ChoiceAccept})
	require.NoError(t, err)
	assert.Equal(t, models.ChoiceAccept, decision.Choice)
	assert.Equal(t, evaluation.ID, decision.EvaluationID)
	assert.NotNil(t, decision.EmailSentAt)
	assert.Equal(t, 1, f.mailer.acceptances)
	assert.Equal(t, models.StatusDecided, candidate.Status)
	assert.NotNil(t, candidate.DecidedAt)
}

func TestRunScoring_RerunSkipsExistingCandidates(t *testing.T) {
	f := newFixture(t)

	first := f.scoredCandidate(t)

	again, err := f.controller.RunScoring(context.Background(), &models.ScoringRunRequest{JobReference: "job-1"})
	require.NoError(t, err)
	assert.Empty(t, again)

	listed, err := f.store.ListCandidatesByJob(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, first.ID, listed[0].ID)
}

func TestRunScoring_UnknownJob(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.RunScoring(context.Background(), &models.ScoringRunRequest{JobReference: "job-missing"})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestInvite_TwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	candidate := f.scoredCandidate(t)
	_, err := f.controller.Invite(ctx, candidate.ID)
	require.NoError(t, err)

	_, err = f.controller.Invite(ctx, candidate.ID)
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindInvalidTransition))
	assert.Equal(t, 1, f.mailer.invites)
}

func TestInvite_EmailFailureLeavesCandidateScored(t *testing.T) {
	f := newFixture(t)
	f.mailer.failInvite = errors.New("email API down")

	candidate := f.scoredCandidate(t)
	_, err := f.controller.Invite(context.Background(), candidate.ID)
	require.Error(t, err)

	loaded, err := f.store.GetCandidate(context.Background(), candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScored, loaded.Status)
	assert.Nil(t, loaded.InvitedAt)
}

func TestSchedule_RejectsBadTimestamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	candidate := f.scoredCandidate(t)
	_, err := f.controller.Invite(ctx, candidate.ID)
	require.NoError(t, err)

	_, _, err = f.controller.Schedule(ctx, candidate.ID, &models.ScheduleRequest{
		MeetingURL:  "https://meet.example.com/abc",
		ScheduledAt: "tomorrow at noon",
	})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	loaded, err := f.store.GetCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvited, loaded.Status)
}

func TestSchedule_BotFailureLeavesCandidateInvited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.bots.createErr = utils.NewCollaboratorError("meetingbot", errors.New("region down"))

	candidate := f.scoredCandidate(t)
	_, err := f.controller.Invite(ctx, candidate.ID)
	require.NoError(t, err)

	_, _, err = f.controller.Schedule(ctx, candidate.ID, &models.ScheduleRequest{
		MeetingURL:  "https://meet.example.com/abc",
		ScheduledAt: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindCollaborator))

	loaded, err := f.store.GetCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvited, loaded.Status)
	assert.Equal(t, 0, f.mailer.confirmations)
}

func TestCompleteInterview_IdempotentOnTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	interview := scheduleInterview(t, f)

	first, err := f.controller.CompleteInterview(ctx, interview.ID, models.InterviewCompleted, "done")
	require.NoError(t, err)

	second, err := f.controller.CompleteInterview(ctx, interview.ID, models.InterviewFailed, "fatal")
	require.NoError(t, err)
	assert.Equal(t, models.InterviewCompleted, second.Status)
	assert.Equal(t, first.EndedAt, second.EndedAt)
}

func TestCompleteInterview_RequiresTerminalStatus(t *testing.T) {
	f := newFixture(t)

	interview := scheduleInterview(t, f)

	_, err := f.controller.CompleteInterview(context.Background(), interview.ID, models.InterviewInProgress, "in_call_recording")
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestPollInterview_AdvancesToInProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	interview := scheduleInterview(t, f)
	f.bots.status = models.InterviewInProgress
	f.bots.rawCode = "in_call_recording"

	polled, err := f.controller.PollInterview(ctx, interview.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewInProgress, polled.Status)
	assert.NotNil(t, polled.StartedAt)

	// Candidate stays scheduled until the bot completes
	candidate, err := f.store.GetCandidate(ctx, polled.CandidateID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, candidate.Status)
}

func TestPollInterview_UnknownCodeDoesNotRegress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	interview := scheduleInterview(t, f)
	f.bots.status = models.InterviewInProgress
	f.bots.rawCode = "in_call_recording"

	polled, err := f.controller.PollInterview(ctx, interview.ID)
	require.NoError(t, err)
	require.Equal(t, models.InterviewInProgress, polled.Status)

	// An unrecognized bot code maps to scheduled; the interview must not
	// move backward because of it
	f.bots.status = models.InterviewScheduled
	f.bots.rawCode = "recording_permission_denied"

	polled, err = f.controller.PollInterview(ctx, interview.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewInProgress, polled.Status)
	assert.NotNil(t, polled.StartedAt)
}

func TestRecordEvaluation_NeedsCompletedInterview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	interview := scheduleInterview(t, f)

	// Force the candidate forward while the interview is still scheduled
	_, err := f.store.UpdateCandidateStatus(ctx, interview.CandidateID, models.StatusInterviewDone)
	require.NoError(t, err)

	_, err = f.controller.RecordEvaluation(ctx, interview.CandidateID, "")
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestRecordEvaluation_WrongCandidateStage(t *testing.T) {
	f := newFixture(t)

	candidate := f.scoredCandidate(t)
	_, err := f.controller.RecordEvaluation(context.Background(), candidate.ID, "")
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindInvalidTransition))
}

func TestDecide_RejectRequiresReasonCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	candidateID := evaluatedCandidate(t, f)

	_, _, err := f.controller.Decide(ctx, candidateID, &models.DecideRequest{Choice: models.ChoiceReject})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	loaded, err := f.store.GetCandidate(ctx, candidateID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEvaluated, loaded.Status)
}

func TestDecide_RejectCategoryOtherRequiresReason(t *testing.T) {
	f := newFixture(t)

	candidateID := evaluatedCandidate(t, f)

	_, _, err := f.controller.Decide(context.Background(), candidateID, &models.DecideRequest{
		Choice:         models.ChoiceReject,
		ReasonCategory: "other",
	})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestDecide_RejectForksToMarketplaceWithSuggestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	candidateID := evaluatedCandidate(t, f)

	decision, candidate, err := f.controller.Decide(ctx, candidateID, &models.DecideRequest{
		Choice:         models.ChoiceReject,
		ReasonCategory: "experience_mismatch",
		Reason:         "We need deeper infrastructure experience.",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusMarketplace, candidate.Status)
	assert.NotNil(t, candidate.DecidedAt)
	assert.True(t, decision.AddedToMarketplace)
	assert.Equal(t, 1, f.mailer.rejections)
	assert.Equal(t, "We need deeper infrastructure experience.", f.mailer.lastReason)

	// Suggestions come back best match first: job-2 at 72, job-3 at 61
	require.Len(t, decision.RematchSuggestions, 2)
	assert.Equal(t, "job-2", decision.RematchSuggestions[0].JobReference)
	assert.Equal(t, 72, decision.RematchSuggestions[0].MatchPercentage)
	assert.Equal(t, 61, decision.RematchSuggestions[1].MatchPercentage)
}

func TestDecide_RejectSurvivesRematchFailure(t *testing.T) {
	f := newFixture(t)

	candidateID := evaluatedCandidate(t, f)
	f.scoring.listErr = utils.NewCollaboratorError("scoring", errors.New("upstream down"))

	decision, candidate, err := f.controller.Decide(context.Background(), candidateID, &models.DecideRequest{
		Choice:         models.ChoiceReject,
		ReasonCategory: "experience_mismatch",
	})
	require.NoError(t, err)

	// The rejection still lands in full; only the suggestions degrade
	assert.Equal(t, models.StatusMarketplace, candidate.Status)
	assert.True(t, decision.AddedToMarketplace)
	assert.Empty(t, decision.RematchSuggestions)
	assert.Equal(t, 1, f.mailer.rejections)
}

func TestDecide_RejectFromInterviewDone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	interview := scheduleInterview(t, f)
	_, err := f.controller.CompleteInterview(ctx, interview.ID, models.InterviewCompleted, "done")
	require.NoError(t, err)

	// Reject straight from interview_done, skipping the evaluation
	decision, candidate, err := f.controller.Decide(ctx, interview.CandidateID, &models.DecideRequest{
		Choice:         models.ChoiceReject,
		ReasonCategory: "culture_fit",
		SuppressEmail:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusMarketplace, candidate.Status)
	assert.True(t, decision.AddedToMarketplace)
	assert.Empty(t, decision.EvaluationID)
}

func TestDecide_SuppressEmailSkipsSend(t *testing.T) {
	f := newFixture(t)

	candidateID := evaluatedCandidate(t, f)

	decision, _, err := f.controller.Decide(context.Background(), candidateID, &models.DecideRequest{
		Choice:        models.ChoiceAccept,
		SuppressEmail: true,
	})
	require.NoError(t, err)
	assert.Nil(t, decision.EmailSentAt)
	assert.Equal(t, 0, f.mailer.acceptances)
}

func TestDecide_AcceptEmailFailureLeavesCandidateEvaluated(t *testing.T) {
	f := newFixture(t)
	f.mailer.failAccept = errors.New("email API down")

	candidateID := evaluatedCandidate(t, f)

	_, _, err := f.controller.Decide(context.Background(), candidateID, &models.DecideRequest{Choice: models.ChoiceAccept})
	require.Error(t, err)

	loaded, err := f.store.GetCandidate(context.Background(), candidateID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEvaluated, loaded.Status)

	_, err = f.store.GetDecisionByCandidate(context.Background(), candidateID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestDecide_BeforeInterviewFails(t *testing.T) {
	f := newFixture(t)

	candidate := f.scoredCandidate(t)
	_, _, err := f.controller.Decide(context.Background(), candidate.ID, &models.DecideRequest{Choice: models.ChoiceAccept})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindInvalidTransition))
}

func TestRematch_PreviewWithoutDecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	candidate := f.scoredCandidate(t)
	suggestions, err := f.controller.Rematch(ctx, candidate.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	// Preview records nothing and moves nothing
	loaded, err := f.store.GetCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScored, loaded.Status)
}

// scheduleInterview walks a fresh candidate to scheduled and returns the interview
func scheduleInterview(t *testing.T, f *fixture) *models.Interview {
	t.Helper()
	ctx := context.Background()

	candidate := f.scoredCandidate(t)
	_, err := f.controller.Invite(ctx, candidate.ID)
	require.NoError(t, err)

	_, interview, err := f.controller.Schedule(ctx, candidate.ID, &models.ScheduleRequest{
		MeetingURL:  "https://meet.example.com/abc",
		ScheduledAt: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	return interview
}

// evaluatedCandidate walks a fresh candidate all the way to evaluated
func evaluatedCandidate(t *testing.T, f *fixture) string {
	t.Helper()
	ctx := context.Background()

	interview := scheduleInterview(t, f)
	_, err := f.controller.CompleteInterview(ctx, interview.ID, models.InterviewCompleted, "done")
	require.NoError(t, err)

	_, err = f.controller.RecordEvaluation(ctx, interview.CandidateID, "Senior Go engineer role")
	require.NoError(t, err)
	return interview.CandidateID
}

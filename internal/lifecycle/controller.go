package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talentloop/internal/config"
	"talentloop/internal/llm"
	"talentloop/internal/logging"
	"talentloop/internal/meetingbot"
	"talentloop/internal/notify"
	"talentloop/internal/rematch"
	"talentloop/internal/scoring"
	"talentloop/internal/store"
	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

// Controller drives candidates through the hiring lifecycle. Every operation
// follows the same shape: load and pre-validate the transition, perform the
// collaborator side effects, then commit the status transition as the last
// write. A failed side effect leaves the candidate's status untouched.
type Controller struct {
	cfg       *config.Config
	store     store.Store
	scoring   scoring.Client
	bots      meetingbot.Client
	evaluator *llm.Evaluator
	mailer    notify.Mailer
	rematcher *rematch.Resolver
	logger    logging.Logger
}

// NewController creates a lifecycle controller wired to its collaborators
func NewController(cfg *config.Config, st store.Store, scoringClient scoring.Client, bots meetingbot.Client, evaluator *llm.Evaluator, mailer notify.Mailer, rematcher *rematch.Resolver) *Controller {
	return &Controller{
		cfg:       cfg,
		store:     st,
		scoring:   scoringClient,
		bots:      bots,
		evaluator: evaluator,
		mailer:    mailer,
		rematcher: rematcher,
		logger:    logging.GetGlobalLogger().WithField("component", "lifecycle"),
	}
}

// RunScoring scores the collaborator's profiles against a job and creates a
// candidate record for each profile above the threshold. Profiles that are
// already candidates for the job are skipped, so reruns are safe.
func (c *Controller) RunScoring(ctx context.Context, req *models.ScoringRunRequest) ([]*models.Candidate, error) {
	job, err := c.scoring.GetJob(ctx, req.JobReference)
	if err != nil {
		return nil, err
	}

	threshold := c.cfg.HRFlow.ScoreThreshold
	if req.ScoreThreshold > 0 {
		threshold = req.ScoreThreshold
	}

	profiles, err := c.scoring.ScoreProfiles(ctx, job.Reference, req.TopK, threshold)
	if err != nil {
		return nil, err
	}

	existing, err := c.store.ListCandidatesByJob(ctx, job.Reference)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, cand := range existing {
		known[cand.ProfileReference] = true
	}

	created := make([]*models.Candidate, 0, len(profiles))
	for _, profile := range profiles {
		if known[profile.Reference] {
			continue
		}
		candidate := scoring.ProfileToCandidate(profile, job.Reference)
		if err := c.store.CreateCandidate(ctx, candidate); err != nil {
			return created, err
		}
		created = append(created, candidate)
	}

	c.logger.Info("Scoring run completed", map[string]interface{}{
		"job_reference": job.Reference,
		"scored":        len(profiles),
		"created":       len(created),
	})
	return created, nil
}

// Invite moves a scored candidate to invited and sends the invitation email.
// A failed send aborts the invite with the candidate still in scored.
func (c *Controller) Invite(ctx context.Context, candidateID string) (*models.Candidate, error) {
	candidate, err := c.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(candidate.Status, models.StatusInvited) {
		return nil, utils.NewInvalidTransitionError(candidate.Status.String(), models.StatusInvited.String())
	}

	if err := c.mailer.SendInvite(ctx, candidate, c.jobTitle(ctx, candidate.JobReference)); err != nil {
		return nil, err
	}

	return c.store.UpdateCandidateStatus(ctx, candidateID, models.StatusInvited)
}

// Schedule books the interview: it dispatches a meeting bot, records the
// interview, commits the scheduled transition and sends the confirmation
// email. The confirmation is best-effort once the transition is committed.
func (c *Controller) Schedule(ctx context.Context, candidateID string, req *models.ScheduleRequest) (*models.Candidate, *models.Interview, error) {
	candidate, err := c.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, nil, err
	}
	if !models.CanTransition(candidate.Status, models.StatusScheduled) {
		return nil, nil, utils.NewInvalidTransitionError(candidate.Status.String(), models.StatusScheduled.String())
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, nil, utils.NewValidationError("scheduled_at must be an RFC3339 timestamp")
	}

	var joinAt *time.Time
	if scheduledAt.After(time.Now()) {
		joinAt = &scheduledAt
	}

	botID, err := c.bots.CreateBot(ctx, req.MeetingURL, joinAt)
	if err != nil {
		return nil, nil, err
	}

	interview := &models.Interview{
		CandidateID:  candidate.ID,
		JobReference: candidate.JobReference,
		MeetingURL:   req.MeetingURL,
		ScheduledAt:  scheduledAt,
		BotID:        botID,
		Status:       models.InterviewScheduled,
	}
	if err := c.store.CreateInterview(ctx, interview); err != nil {
		return nil, nil, err
	}

	updated, err := c.store.UpdateCandidateStatus(ctx, candidateID, models.StatusScheduled)
	if err != nil {
		return nil, nil, err
	}

	if err := c.mailer.SendConfirmation(ctx, updated, interview, c.jobTitle(ctx, candidate.JobReference)); err != nil {
		c.logger.Warn("Confirmation email failed after scheduling", map[string]interface{}{
			"candidate_id": candidateID,
			"interview_id": interview.ID,
			"error":        err.Error(),
		})
	}

	return updated, interview, nil
}

// PollInterview performs one status poll against the bot and applies the
// result to the interview record. When the bot reaches completed, the
// candidate is moved to interview_done.
func (c *Controller) PollInterview(ctx context.Context, interviewID string) (*models.Interview, error) {
	interview, err := c.store.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview.Status.IsTerminal() {
		return interview, nil
	}

	status, code, err := c.bots.BotStatus(ctx, interview.BotID)
	if err != nil {
		return nil, err
	}
	return c.applyBotStatus(ctx, interview, status, code)
}

// CompleteInterview finalizes the interview with the given terminal status.
// Used by the background watcher when the bot finishes or the watch runs out.
func (c *Controller) CompleteInterview(ctx context.Context, interviewID string, final models.InterviewStatus, rawCode string) (*models.Interview, error) {
	if !final.IsTerminal() {
		return nil, utils.NewValidationError("interview completion requires a terminal status, got " + final.String())
	}
	interview, err := c.store.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview.Status.IsTerminal() {
		return interview, nil
	}
	return c.applyBotStatus(ctx, interview, final, rawCode)
}

// botStatusRank orders the interview sub-states along their forward path.
// Both terminal states share the top rank.
func botStatusRank(s models.InterviewStatus) int {
	switch s {
	case models.InterviewInProgress:
		return 1
	case models.InterviewCompleted, models.InterviewFailed:
		return 2
	default:
		return 0
	}
}

// applyBotStatus writes the mapped status onto the interview and, for a
// completed interview, advances the candidate to interview_done. The sub-state
// machine only moves forward: an unknown bot code maps to scheduled, and that
// must never undo an observed in_progress.
func (c *Controller) applyBotStatus(ctx context.Context, interview *models.Interview, status models.InterviewStatus, rawCode string) (*models.Interview, error) {
	if botStatusRank(status) <= botStatusRank(interview.Status) {
		return interview, nil
	}

	now := time.Now()
	switch status {
	case models.InterviewInProgress:
		if interview.StartedAt == nil {
			interview.StartedAt = &now
		}
	case models.InterviewCompleted, models.InterviewFailed:
		if interview.EndedAt == nil {
			interview.EndedAt = &now
		}
	}
	interview.Status = status

	if err := c.store.UpdateInterview(ctx, interview); err != nil {
		return nil, err
	}

	c.logger.Info("Interview status updated", map[string]interface{}{
		"interview_id": interview.ID,
		"status":       status.String(),
		"raw_code":     rawCode,
	})

	if status == models.InterviewCompleted {
		if _, err := c.store.UpdateCandidateStatus(ctx, interview.CandidateID, models.StatusInterviewDone); err != nil {
			// A repeated completion signal is harmless; anything else is not
			if !utils.IsKind(err, utils.KindInvalidTransition) {
				return nil, err
			}
		}
	}
	return interview, nil
}

// Transcript fetches the normalized transcript for an interview
func (c *Controller) Transcript(ctx context.Context, interviewID string) (*models.Interview, []models.TranscriptSegment, error) {
	interview, err := c.store.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, nil, err
	}
	segments, err := c.bots.Transcript(ctx, interview.BotID)
	if err != nil {
		return nil, nil, err
	}
	return interview, segments, nil
}

// RecordEvaluation runs the evaluation over the completed interview and moves
// the candidate to evaluated. The evaluation record is written before the
// transition commits.
func (c *Controller) RecordEvaluation(ctx context.Context, candidateID, jobDescription string) (*models.Evaluation, error) {
	candidate, err := c.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(candidate.Status, models.StatusEvaluated) {
		return nil, utils.NewInvalidTransitionError(candidate.Status.String(), models.StatusEvaluated.String())
	}

	interview, err := c.store.GetInterviewByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if interview.Status != models.InterviewCompleted {
		return nil, utils.NewValidationError(fmt.Sprintf("interview %s is %s, evaluation needs a completed interview", interview.ID, interview.Status))
	}

	transcript, err := c.bots.Transcript(ctx, interview.BotID)
	if err != nil {
		return nil, err
	}

	if jobDescription == "" {
		if job, jobErr := c.scoring.GetJob(ctx, candidate.JobReference); jobErr == nil {
			jobDescription = job.Summary
		}
	}

	evaluation, err := c.evaluator.EvaluateInterview(ctx, candidate, interview, transcript, jobDescription)
	if err != nil {
		return nil, err
	}

	if err := c.store.CreateEvaluation(ctx, evaluation); err != nil {
		return nil, err
	}
	if _, err := c.store.UpdateCandidateStatus(ctx, candidateID, models.StatusEvaluated); err != nil {
		return nil, err
	}
	return evaluation, nil
}

// Decide records the terminal accept or reject decision. Accept moves the
// candidate to decided and sends the acceptance email. Reject resolves the
// rematch suggestions, attaches them to the decision, sends the rejection
// email unless suppressed, and forks the candidate to the marketplace.
func (c *Controller) Decide(ctx context.Context, candidateID string, req *models.DecideRequest) (*models.Decision, *models.Candidate, error) {
	candidate, err := c.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, nil, err
	}

	choice := req.Choice
	target := models.StatusDecided
	if choice == models.ChoiceReject {
		target = models.StatusMarketplace
	}
	if !models.CanTransition(candidate.Status, target) {
		return nil, nil, utils.NewInvalidTransitionError(candidate.Status.String(), target.String())
	}

	decision := &models.Decision{
		CandidateID:    candidate.ID,
		Choice:         choice,
		Reason:         strings.TrimSpace(req.Reason),
		ReasonCategory: strings.TrimSpace(req.ReasonCategory),
	}
	if evaluation, evalErr := c.store.GetEvaluationByCandidate(ctx, candidateID); evalErr == nil {
		decision.EvaluationID = evaluation.ID
	}

	jobTitle := c.jobTitle(ctx, candidate.JobReference)

	switch choice {
	case models.ChoiceAccept:
		if !req.SuppressEmail {
			if err := c.mailer.SendAcceptance(ctx, candidate, jobTitle); err != nil {
				return nil, nil, err
			}
			now := time.Now()
			decision.EmailSentAt = &now
		}

	case models.ChoiceReject:
		if decision.ReasonCategory == "" {
			return nil, nil, utils.NewValidationError("reject requires a reason_category")
		}
		if decision.ReasonCategory == "other" && decision.Reason == "" {
			return nil, nil, utils.NewValidationError("reason_category \"other\" requires a written reason")
		}

		// Suggestions are attached before the decision is finalized; a
		// rematch failure degrades to an empty list rather than blocking
		// the rejection
		suggestions, rematchErr := c.rematcher.Suggest(ctx, candidate)
		if rematchErr != nil {
			c.logger.Warn("Rematch resolution failed, rejecting without suggestions", map[string]interface{}{
				"candidate_id": candidateID,
				"error":        rematchErr.Error(),
			})
			suggestions = []models.RematchSuggestion{}
		}
		decision.RematchSuggestions = suggestions
		decision.AddedToMarketplace = true

		if !req.SuppressEmail {
			if err := c.mailer.SendRejection(ctx, candidate, jobTitle, decision.Reason); err != nil {
				return nil, nil, err
			}
			now := time.Now()
			decision.EmailSentAt = &now
		}

	default:
		return nil, nil, utils.NewValidationError("decision choice must be accept or reject")
	}

	if err := c.store.CreateDecision(ctx, decision); err != nil {
		return nil, nil, err
	}
	updated, err := c.store.UpdateCandidateStatus(ctx, candidateID, target)
	if err != nil {
		return nil, nil, err
	}

	c.logger.Info("Decision recorded", map[string]interface{}{
		"candidate_id": candidateID,
		"choice":       string(choice),
		"status":       updated.Status.String(),
	})
	return decision, updated, nil
}

// Rematch resolves alternative openings for a candidate without recording a
// decision. Used to preview suggestions before a reject.
func (c *Controller) Rematch(ctx context.Context, candidateID string) ([]models.RematchSuggestion, error) {
	candidate, err := c.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	return c.rematcher.Suggest(ctx, candidate)
}

// jobTitle looks up the job's display name, falling back to the reference
// when the scoring collaborator cannot resolve it
func (c *Controller) jobTitle(ctx context.Context, jobReference string) string {
	job, err := c.scoring.GetJob(ctx, jobReference)
	if err != nil || job.Name == "" {
		return jobReference
	}
	return job.Name
}

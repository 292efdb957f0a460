package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"talentloop/internal/collab"
	"talentloop/internal/config"
	"talentloop/internal/logging"
	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

// Mailer sends lifecycle emails to candidates. Implementations must treat a
// send as best-effort from the caller's perspective: the lifecycle decides
// whether a failed send aborts the operation.
type Mailer interface {
	SendInvite(ctx context.Context, candidate *models.Candidate, jobTitle string) error
	SendConfirmation(ctx context.Context, candidate *models.Candidate, interview *models.Interview, jobTitle string) error
	SendAcceptance(ctx context.Context, candidate *models.Candidate, jobTitle string) error
	SendRejection(ctx context.Context, candidate *models.Candidate, jobTitle, reason string) error
}

// ResendMailer implements Mailer against the Resend email API
type ResendMailer struct {
	cfg    *config.Config
	client *http.Client
	guard  *collab.Guard
	host   string
	logger logging.Logger
}

// NewResendMailer creates a new Resend mailer
func NewResendMailer(cfg *config.Config, guard *collab.Guard) *ResendMailer {
	host := "api.resend.com"
	if parsed, err := url.Parse(cfg.Email.APIURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}

	return &ResendMailer{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Email.Timeout,
		},
		guard:  guard,
		host:   host,
		logger: logging.GetGlobalLogger().WithField("component", "resend_mailer"),
	}
}

// baseVars assembles the placeholder values shared by all templates
func (m *ResendMailer) baseVars(candidate *models.Candidate, jobTitle string) map[string]string {
	return map[string]string{
		"candidate_name": utils.GetStringOrDefault(candidate.Name, "there"),
		"job_title":      utils.GetStringOrDefault(jobTitle, candidate.JobReference),
		"company_name":   m.cfg.Email.CompanyName,
		"recruiter_name": m.cfg.Email.RecruiterName,
	}
}

// SendInvite sends the interview invitation email
func (m *ResendMailer) SendInvite(ctx context.Context, candidate *models.Candidate, jobTitle string) error {
	vars := m.baseVars(candidate, jobTitle)
	return m.send(ctx, candidate.Email, renderTemplate(inviteSubject, vars), renderTemplate(inviteBody, vars))
}

// SendConfirmation sends the interview confirmation email
func (m *ResendMailer) SendConfirmation(ctx context.Context, candidate *models.Candidate, interview *models.Interview, jobTitle string) error {
	vars := m.baseVars(candidate, jobTitle)
	vars["scheduled_at"] = interview.ScheduledAt.Format("Monday, 2 January 2006 at 15:04 MST")
	vars["meeting_url"] = interview.MeetingURL
	return m.send(ctx, candidate.Email, renderTemplate(confirmationSubject, vars), renderTemplate(confirmationBody, vars))
}

// SendAcceptance sends the acceptance email
func (m *ResendMailer) SendAcceptance(ctx context.Context, candidate *models.Candidate, jobTitle string) error {
	vars := m.baseVars(candidate, jobTitle)
	return m.send(ctx, candidate.Email, renderTemplate(acceptanceSubject, vars), renderTemplate(acceptanceBody, vars))
}

// SendRejection sends the rejection email. The reason is included only when
// non-empty; an empty reason drops the whole block from the body.
func (m *ResendMailer) SendRejection(ctx context.Context, candidate *models.Candidate, jobTitle, reason string) error {
	vars := m.baseVars(candidate, jobTitle)
	return m.send(ctx, candidate.Email, renderTemplate(rejectionSubject, vars), renderRejection(vars, reason))
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// send delivers one email through the Resend API
func (m *ResendMailer) send(ctx context.Context, to, subject, html string) error {
	if !m.cfg.Email.Enabled {
		m.logger.Debug("Email delivery disabled, skipping send", map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return nil
	}
	if to == "" {
		return utils.NewValidationError("candidate has no email address")
	}

	if err := m.guard.Allow(m.host); err != nil {
		return utils.NewCollaboratorError("email", err)
	}

	payload, err := json.Marshal(sendRequest{
		From:    m.cfg.Email.From,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Email.APIURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.Email.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := m.client.Do(req)
	if err != nil {
		m.guard.RecordFailure(m.host, err)
		return utils.NewCollaboratorError("email", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("email API returned %d: %s", resp.StatusCode, string(body))
		m.guard.RecordFailure(m.host, err)
		return utils.NewCollaboratorError("email", err)
	}

	m.guard.RecordSuccess(m.host)
	m.logger.Info("Email sent", map[string]interface{}{
		"to":       to,
		"subject":  subject,
		"duration": time.Since(start).String(),
	})
	return nil
}

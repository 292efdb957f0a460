package meetingbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"talentloop/internal/collab"
	"talentloop/internal/config"
	"talentloop/internal/logging"
	"talentloop/pkg/models"
	"talentloop/pkg/utils"
)

// Client drives the meeting bot collaborator: dispatching a bot into a video
// call, polling its status and pulling the transcript once the call ends.
type Client interface {
	// CreateBot dispatches a notetaker bot to the meeting URL and returns the
	// collaborator's bot id
	CreateBot(ctx context.Context, meetingURL string, joinAt *time.Time) (string, error)

	// BotStatus returns the interview status mapped from the bot's latest
	// status change, plus the raw collaborator code
	BotStatus(ctx context.Context, botID string) (models.InterviewStatus, string, error)

	// Transcript fetches and normalizes the bot's transcript
	Transcript(ctx context.Context, botID string) ([]models.TranscriptSegment, error)
}

// RecallClient implements Client against the Recall.ai bot API
type RecallClient struct {
	cfg    *config.Config
	client *http.Client
	guard  *collab.Guard
	host   string
	logger logging.Logger
}

// NewRecallClient creates a new Recall meeting bot client
func NewRecallClient(cfg *config.Config, guard *collab.Guard) *RecallClient {
	host := fmt.Sprintf("%s.recall.ai", cfg.Recall.Region)
	return &RecallClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Recall.Timeout,
		},
		guard:  guard,
		host:   host,
		logger: logging.GetGlobalLogger().WithField("component", "recall_client"),
	}
}

func (c *RecallClient) baseURL() string {
	return fmt.Sprintf("https://%s/api/v1", c.host)
}

type createBotRequest struct {
	MeetingURL string     `json:"meeting_url"`
	BotName    string     `json:"bot_name"`
	JoinAt     *time.Time `json:"join_at,omitempty"`

	TranscriptionOptions struct {
		Provider string `json:"provider"`
	} `json:"transcription_options"`
}

type botResponse struct {
	ID            string `json:"id"`
	StatusChanges []struct {
		Code      string `json:"code"`
		CreatedAt string `json:"created_at"`
	} `json:"status_changes"`
}

// CreateBot dispatches a notetaker bot to the meeting URL
func (c *RecallClient) CreateBot(ctx context.Context, meetingURL string, joinAt *time.Time) (string, error) {
	payload := createBotRequest{
		MeetingURL: meetingURL,
		BotName:    c.cfg.Recall.BotName,
		JoinAt:     joinAt,
	}
	payload.TranscriptionOptions.Provider = "meeting_captions"

	var bot botResponse
	if err := c.do(ctx, http.MethodPost, "/bot", payload, &bot); err != nil {
		return "", err
	}
	if bot.ID == "" {
		return "", utils.NewCollaboratorError("meetingbot", fmt.Errorf("bot created without an id"))
	}

	c.logger.Info("Meeting bot dispatched", map[string]interface{}{
		"bot_id":      bot.ID,
		"meeting_url": meetingURL,
	})
	return bot.ID, nil
}

// BotStatus returns the mapped interview status for the bot's latest change
func (c *RecallClient) BotStatus(ctx context.Context, botID string) (models.InterviewStatus, string, error) {
	var bot botResponse
	if err := c.do(ctx, http.MethodGet, "/bot/"+botID, nil, &bot); err != nil {
		return "", "", err
	}

	code := ""
	if len(bot.StatusChanges) > 0 {
		code = bot.StatusChanges[len(bot.StatusChanges)-1].Code
	}
	return MapBotStatus(code), code, nil
}

// MapBotStatus maps a collaborator bot status code onto the interview
// sub-state machine. Unknown codes keep the interview scheduled.
func MapBotStatus(code string) models.InterviewStatus {
	switch code {
	case "ready", "joining_call", "in_waiting_room":
		return models.InterviewScheduled
	case "in_call_not_recording", "in_call_recording":
		return models.InterviewInProgress
	case "call_ended", "done", "recording_done", "analysis_done":
		return models.InterviewCompleted
	case "fatal", "analysis_failed", "media_expired":
		return models.InterviewFailed
	default:
		return models.InterviewScheduled
	}
}

// transcriptEntry accepts both transcript shapes the collaborator emits: the
// legacy realtime one with a flat speaker string and the download one with a
// participant object.
type transcriptEntry struct {
	Speaker     string `json:"speaker"`
	SpeakerID   *int   `json:"speaker_id"`
	Participant *struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"participant"`
	Words []transcriptWord `json:"words"`
}

// transcriptWord carries both word timestamp shapes: the download format nests
// {relative, absolute} objects under start_timestamp/end_timestamp, the
// realtime format has flat start_time/end_time seconds plus a confidence.
type transcriptWord struct {
	Text           string         `json:"text"`
	StartTimestamp *wordTimestamp `json:"start_timestamp"`
	EndTimestamp   *wordTimestamp `json:"end_timestamp"`
	StartTime      *float64       `json:"start_time"`
	EndTime        *float64       `json:"end_time"`
	Confidence     *float64       `json:"confidence"`
}

type wordTimestamp struct {
	Relative float64 `json:"relative"`
	Absolute string  `json:"absolute"`
}

// Transcript fetches and normalizes the bot's transcript. Entries with no
// words are dropped; an empty transcript is a valid result, not an error.
func (c *RecallClient) Transcript(ctx context.Context, botID string) ([]models.TranscriptSegment, error) {
	var entries []transcriptEntry
	if err := c.do(ctx, http.MethodGet, "/bot/"+botID+"/transcript", nil, &entries); err != nil {
		return nil, err
	}
	return normalizeTranscript(entries), nil
}

// normalizeTranscript flattens collaborator transcript entries into uniform
// segments with millisecond offsets
func normalizeTranscript(entries []transcriptEntry) []models.TranscriptSegment {
	segments := make([]models.TranscriptSegment, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Words) == 0 {
			continue
		}

		text := ""
		var confSum float64
		for i, w := range entry.Words {
			if i > 0 {
				text += " "
			}
			text += w.Text
			// The download format carries no confidence; count a word
			// without one as fully confident
			if w.Confidence != nil {
				confSum += *w.Confidence
			} else {
				confSum += 1.0
			}
		}

		segments = append(segments, models.TranscriptSegment{
			Speaker:    entrySpeaker(entry),
			Text:       text,
			StartMs:    wordStartMs(entry.Words[0]),
			EndMs:      wordEndMs(entry.Words[len(entry.Words)-1]),
			Confidence: confSum / float64(len(entry.Words)),
		})
	}
	return segments
}

// entrySpeaker resolves the speaker name across both entry shapes
func entrySpeaker(entry transcriptEntry) string {
	if entry.Participant != nil {
		if entry.Participant.Name != "" {
			return entry.Participant.Name
		}
		return fmt.Sprintf("Participant %d", entry.Participant.ID)
	}
	if entry.Speaker != "" {
		return entry.Speaker
	}
	if entry.SpeakerID != nil {
		return fmt.Sprintf("Speaker %d", *entry.SpeakerID)
	}
	return "Unknown"
}

// wordStartMs converts a word's start offset in seconds to milliseconds,
// whichever shape carried it
func wordStartMs(w transcriptWord) int {
	if w.StartTimestamp != nil {
		return secondsToMs(w.StartTimestamp.Relative)
	}
	if w.StartTime != nil {
		return secondsToMs(*w.StartTime)
	}
	return 0
}

func wordEndMs(w transcriptWord) int {
	if w.EndTimestamp != nil {
		return secondsToMs(w.EndTimestamp.Relative)
	}
	if w.EndTime != nil {
		return secondsToMs(*w.EndTime)
	}
	return 0
}

func secondsToMs(seconds float64) int {
	return int(math.Round(seconds * 1000))
}

// do performs an authenticated API call and decodes the response into out
func (c *RecallClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	if err := c.guard.Allow(c.host); err != nil {
		return utils.NewCollaboratorError("meetingbot", err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal bot request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL()+path, body)
	if err != nil {
		return fmt.Errorf("failed to build bot request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.cfg.Recall.APIKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.guard.RecordFailure(c.host, err)
		return utils.NewCollaboratorError("meetingbot", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.guard.RecordFailure(c.host, err)
		return utils.NewCollaboratorError("meetingbot", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		c.guard.RecordSuccess(c.host)
		return utils.NewNotFoundError("bot record at " + path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("bot API returned %d: %s", resp.StatusCode, truncate(string(data), 200))
		c.guard.RecordFailure(c.host, err)
		return utils.NewCollaboratorError("meetingbot", err)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			c.guard.RecordFailure(c.host, err)
			return utils.NewCollaboratorError("meetingbot", fmt.Errorf("malformed bot response: %w", err))
		}
	}

	c.guard.RecordSuccess(c.host)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package meetingbot

import (
	"context"
	"time"

	"talentloop/internal/config"
	"talentloop/internal/logging"
	"talentloop/pkg/models"
)

// RetryPolicy bounds a bot status watch. The watch always terminates: either
// the bot reaches a terminal status or the attempts run out.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultRetryPolicy builds the watch policy from configuration
func DefaultRetryPolicy(cfg *config.Config) RetryPolicy {
	policy := RetryPolicy{
		MaxAttempts: cfg.Recall.Watch.MaxAttempts,
		Interval:    cfg.Recall.Watch.Interval,
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 20
	}
	if policy.Interval <= 0 {
		policy.Interval = 15 * time.Second
	}
	return policy
}

// WatchResult is the outcome of a completed watch
type WatchResult struct {
	FinalStatus models.InterviewStatus
	RawCode     string
	Attempts    int
	Exhausted   bool
}

// Watcher polls a bot until it reaches a terminal status
type Watcher struct {
	client Client
	policy RetryPolicy
	logger logging.Logger
}

// NewWatcher creates a watcher over the given bot client
func NewWatcher(client Client, policy RetryPolicy) *Watcher {
	return &Watcher{
		client: client,
		policy: policy,
		logger: logging.GetGlobalLogger().WithField("component", "bot_watcher"),
	}
}

// Watch polls the bot status until it is terminal, attempts are exhausted, or
// the context is cancelled. Cancellation is honored between attempts; an
// in-flight status call is never interrupted mid-request. A transient status
// error consumes an attempt rather than aborting the watch.
func (w *Watcher) Watch(ctx context.Context, botID string) (*WatchResult, error) {
	result := &WatchResult{FinalStatus: models.InterviewScheduled}

	for attempt := 1; attempt <= w.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result.Attempts = attempt
		status, code, err := w.client.BotStatus(ctx, botID)
		if err != nil {
			w.logger.Warn("Bot status poll failed", map[string]interface{}{
				"bot_id":  botID,
				"attempt": attempt,
				"error":   err.Error(),
			})
		} else {
			result.FinalStatus = status
			result.RawCode = code
			if status.IsTerminal() {
				w.logger.Info("Bot reached terminal status", map[string]interface{}{
					"bot_id":   botID,
					"status":   status.String(),
					"raw_code": code,
					"attempts": attempt,
				})
				return result, nil
			}
		}

		if attempt == w.policy.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(w.policy.Interval):
		}
	}

	// Out of attempts with the bot still not terminal: report failed so the
	// interview never hangs in a non-terminal state forever
	result.Exhausted = true
	result.FinalStatus = models.InterviewFailed
	w.logger.Warn("Bot watch exhausted without terminal status", map[string]interface{}{
		"bot_id":   botID,
		"attempts": result.Attempts,
		"raw_code": result.RawCode,
	})
	return result, nil
}

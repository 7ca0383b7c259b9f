package events

import (
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// PublishWithRetry attempts to publish an event with retry logic.
// It makes up to maxRetries attempts with exponential backoff starting at 50ms.
// Returns the error from the final attempt if all retries fail.
//
// Live updates are best effort: callers log the error and move on.
func PublishWithRetry(client EventPublisher, event Event, maxRetries int) error {
	if client == nil {
		return nil
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return client.SendEvent(event)
	}, backoff.WithMaxRetries(b, uint64(maxRetries-1)), func(err error, delay time.Duration) {
		slog.Debug("event publish failed, retrying",
			"attempt", attempt,
			"max_retries", maxRetries,
			"retry_delay", delay,
			"error", err)
	})
	if err == nil {
		if attempt > 1 {
			slog.Debug("event published after retry",
				"attempt", attempt,
				"event_type", event.Type,
				"project_id", event.ProjectID)
		}
		return nil
	}

	// warn: this affects live updates
	slog.Warn("event publish failed after all retries",
		"attempts", attempt,
		"event_type", event.Type,
		"project_id", event.ProjectID,
		"error", err)

	return err
}

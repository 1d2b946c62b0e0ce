// Package llmretry is the shared retry-with-backoff helper the three
// OpenAI-backed adapters (QA, note, and title generation) wrap their calls
// in, so a transient 5xx or rate-limit response doesn't fail a whole
// request cycle.
package llmretry

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Do calls fn up to maxAttempts times, waiting attempt*backoffBase between
// retryable failures. It gives up immediately on a non-retryable error or
// on context cancellation.
func Do(ctx context.Context, maxAttempts int, backoffBase time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == maxAttempts {
			break
		}

		backoff := time.Duration(attempt) * backoffBase
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}

	return lastErr
}

// isRetryable matches the same transient-failure substrings the teacher's
// title-generation client retried on.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	patterns := []string{
		"timeout", "timed out", "connection refused", "connection reset",
		"no such host", "EOF", "503", "502", "504", "429", "500",
	}
	for _, p := range patterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

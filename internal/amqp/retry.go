package amqp

import (
	"context"
	"fmt"
	"time"

	"fjacquet/expense-categorizer/internal/logging"
)

const maxBackoff = 30 * time.Second

// exponentialBackoff returns 1s, 2s, 4s, ... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// DialWithRetry calls NewClient until it succeeds, ctx is done or
// maxAttempts is reached. maxAttempts <= 0 retries forever.
func DialWithRetry(ctx context.Context, url, exchangeName, queueName string, maxAttempts int, logger logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	var lastErr error
	for attempt := 0; maxAttempts <= 0 || attempt < maxAttempts; attempt++ {
		client, err := NewClient(url, exchangeName, queueName, logger)
		if err == nil {
			return client, nil
		}
		lastErr = err

		wait := exponentialBackoff(attempt)
		logger.WithError(err).WithFields(
			logging.Field{Key: "attempt", Value: attempt + 1},
			logging.Field{Key: "retry_in", Value: wait.String()},
		).Warn("Failed to connect to AMQP broker")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("connect to AMQP broker after %d attempts: %w", maxAttempts, lastErr)
}

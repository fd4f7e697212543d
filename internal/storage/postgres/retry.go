package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// pingWithRetry waits for the database to accept connections, doubling the
// delay after every failed attempt.
func pingWithRetry(ctx context.Context, ping func(context.Context) error, maxAttempts int, backoff time.Duration, logger *zap.Logger) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	delay := backoff
	for attempt := 1; ; attempt++ {
		err := ping(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxAttempts {
			return err
		}
		logger.Warn("postgres not ready", zap.Error(err), zap.Int("attempt", attempt), zap.Duration("retry_in", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

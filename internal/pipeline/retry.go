package pipeline

import (
	"context"
	"time"

	"ContentCurator/internal/domain"
)

const (
	maxFetchAttempts = 3
	fetchBackoffBase = 2 * time.Second
)

// backoffDelay doubles the base per prior attempt: attempt 1 waits the
// base, attempt 2 twice that. Kept pure so tests can cover the curve
// without sleeping.
func backoffDelay(attempt int, base time.Duration) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// fetchWithRetry runs fn up to maxFetchAttempts times, sleeping the
// backoff delay between attempts. Only transient fetch failures are
// retried; permanent ones and context cancellation return immediately.
func fetchWithRetry(ctx context.Context, fn func(context.Context) ([]domain.RawItem, error)) ([]domain.RawItem, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		items, err := fn(ctx)
		if err == nil {
			return items, nil
		}
		lastErr = err

		if !domain.IsTransientFetch(err) || attempt == maxFetchAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoffDelay(attempt, fetchBackoffBase)):
		}
	}
	return nil, lastErr
}

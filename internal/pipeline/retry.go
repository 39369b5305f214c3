package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/linkorg/internal/store"
)

// IsRetryable checks if an index write failed only because another process
// held the database lock.
func IsRetryable(err error) bool {
	return store.IsBusy(err)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * 250 * time.Millisecond
	if base > 5*time.Second {
		base = 5 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// Swapped in tests.
var (
	retryable = IsRetryable
	backoff   = Backoff
)

// withRetry runs fn until it succeeds, fails permanently or MaxRetries is
// reached. It does not wait after the last attempt.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := range MaxRetries {
		err = fn()
		if err == nil || !retryable(err) || attempt == MaxRetries-1 {
			return err
		}
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

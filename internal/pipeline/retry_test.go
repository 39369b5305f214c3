package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRetry(t *testing.T, isRetryable func(error) bool) *[]int {
	t.Helper()
	var waits []int
	oldRetryable, oldBackoff := retryable, backoff
	retryable = isRetryable
	backoff = func(attempt int) time.Duration {
		waits = append(waits, attempt)
		return time.Millisecond
	}
	t.Cleanup(func() { retryable, backoff = oldRetryable, oldBackoff })
	return &waits
}

func TestWithRetry_NoWaitAfterLastAttempt(t *testing.T) {
	waits := stubRetry(t, func(error) bool { return true })
	busy := errors.New("database is locked")

	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		return busy
	})
	require.ErrorIs(t, err, busy)
	assert.Equal(t, MaxRetries, calls)
	assert.Equal(t, []int{0, 1}, *waits)
}

func TestWithRetry_SucceedsAfterBusy(t *testing.T) {
	waits := stubRetry(t, func(error) bool { return true })

	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int{0}, *waits)
}

func TestWithRetry_PermanentError(t *testing.T) {
	waits := stubRetry(t, func(error) bool { return false })
	bad := errors.New("constraint failed")

	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		return bad
	})
	require.ErrorIs(t, err, bad)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *waits)
}

package cli

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy controls how interactive commands wait for an unreachable
// model server.
type RetryPolicy struct {
	// Delay is the fixed wait between attempts.
	Delay time.Duration

	// MaxRetries limits the retries after the first attempt. Zero retries
	// forever.
	MaxRetries int
}

// Retry calls fn until it succeeds, returns an error retryable rejects, or
// the policy is exhausted. onRetry, if set, is called before each wait.
// Exhaustion returns a *RetryError wrapping the last error.
func Retry(ctx context.Context, policy RetryPolicy, retryable func(error) bool, onRetry func(attempt int, err error), fn func() error) error {
	attempt := 0

	opts := []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewConstantBackOff(policy.Delay)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, _ time.Duration) {
			if onRetry != nil {
				onRetry(attempt, err)
			}
		}),
	}
	if policy.MaxRetries > 0 {
		opts = append(opts, backoff.WithMaxTries(uint(policy.MaxRetries+1)))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := fn()
		if err != nil && (retryable == nil || !retryable(err)) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, opts...)

	if err == nil || ctx.Err() != nil || retryable == nil || !retryable(err) {
		return err
	}
	return &RetryError{Attempts: attempt, Err: err}
}

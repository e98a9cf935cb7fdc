package api

import (
	"context"
	"encoding/json"
	"time"
)

// CallFunc is any session client network call.
type CallFunc func(ctx context.Context) (json.RawMessage, error)

// retryableStatuses are the only HTTP statuses worth a second attempt:
// transient server-side failures and rate limiting.
var retryableStatuses = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// RetryPolicy wraps calls with bounded exponential backoff. Only *Error
// values with a retryable status are retried; every other error, including
// transport errors, propagates on first occurrence.
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase float64 // seconds; delay is BackoffBase * 1.5^attempt

	// sleep is swappable in tests.
	sleep func(time.Duration)
}

// NewRetryPolicy builds a policy with the given attempt cap and backoff
// base in seconds.
func NewRetryPolicy(maxAttempts int, backoffBase float64) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: maxAttempts,
		BackoffBase: backoffBase,
		sleep:       time.Sleep,
	}
}

// Retryable reports whether err qualifies for another attempt.
func Retryable(err error) bool {
	apiErr, ok := AsError(err)
	return ok && retryableStatuses[apiErr.StatusCode]
}

// Wrap composes the retry behavior around fn.
func (p *RetryPolicy) Wrap(fn CallFunc) CallFunc {
	return func(ctx context.Context) (json.RawMessage, error) {
		return p.Do(ctx, fn)
	}
}

// Do runs fn up to MaxAttempts times, sleeping between attempts. The last
// error is returned after exhaustion, never swallowed.
func (p *RetryPolicy) Do(ctx context.Context, fn CallFunc) (json.RawMessage, error) {
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			sleep(p.backoff(attempt))
		}

		raw, err := fn(ctx)
		if err == nil {
			return raw, nil
		}
		if !Retryable(err) {
			return nil, err
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (p *RetryPolicy) backoff(attempt int) time.Duration {
	delay := p.BackoffBase
	for i := 0; i < attempt; i++ {
		delay *= 1.5
	}
	return time.Duration(delay * float64(time.Second))
}
